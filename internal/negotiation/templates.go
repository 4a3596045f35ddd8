package negotiation

import (
	"fmt"

	"github.com/osteele/liquid"

	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
)

// Template names.
const (
	tmplAccept         = "accept"
	tmplCounter        = "counter"
	tmplClarifyUsage   = "clarify_usage"
	tmplClarifyDetails = "clarify_details"
	tmplClarifyRate    = "clarify_rate"
	tmplClarifyGeneric = "clarify_generic"
)

// Draft templates, Liquid syntax. Kept deliberately short and plain; tone
// polish belongs to the campaign operator, not this service.
var templateSources = map[string]string{
	tmplAccept: `Hi {{ name }}! {{ rate }} works on our side{% if terms != "" %} for {{ terms }}{% endif %}. ` +
		`Happy to lock that in — I'll send the agreement and brief over shortly.`,

	tmplCounter: `Hi {{ name }}! Thanks for sending your rate. {{ asked }} is a bit past where we can land on this one — ` +
		`our budget for this placement is {{ rate }}{% if terms != "" %} covering {{ terms }}{% endif %}. ` +
		`Would that work for you?`,

	tmplClarifyUsage: `Hi {{ name }}! Thanks for the rate. Quick question before we confirm numbers: ` +
		`does that cover organic posting only, or also paid usage of the content? ` +
		`Want to make sure we're comparing the same thing.`,

	tmplClarifyDetails: `Hi {{ name }}! Happy to share more. This is for {{ brand }}'s "{{ campaign }}" campaign — ` +
		`one dedicated post plus a story, creative brief provided, flexible on timing. ` +
		`What would your rate be for something like that?`,

	tmplClarifyRate: `Hi {{ name }}! Great to hear you're interested. ` +
		`What's your usual rate for one dedicated post plus a story?`,

	tmplClarifyGeneric: `Hi {{ name }}! Just making sure my last note reached you — ` +
		`still very interested in working together. Anything I can clarify?`,
}

type bindings map[string]interface{}

// drafter holds the parsed templates. Parsing happens once in newDrafter;
// rendering is read-only.
type drafter struct {
	templates map[string]*liquid.Template
}

func newDrafter() (*drafter, error) {
	engine := liquid.NewEngine()
	templates := make(map[string]*liquid.Template, len(templateSources))
	for name, src := range templateSources {
		tmpl, err := engine.ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &drafter{templates: templates}, nil
}

// render produces a draft for the named template. A render failure is logged
// and yields an empty draft; the decision itself still stands and the empty
// draft simply suppresses auto-send.
func (d *drafter) render(name, leadName string, b bindings) string {
	vars := liquid.Bindings{"name": leadName, "terms": ""}
	for k, v := range b {
		vars[k] = v
	}
	out, err := d.templates[name].Render(vars)
	if err != nil {
		logger.Error("draft render failed", "template", name, "error", err.Error())
		return ""
	}
	return string(out)
}
