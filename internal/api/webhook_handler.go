package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
	"github.com/outreachlabs/dealpilot/internal/webhook"
)

// maxWebhookBody bounds the raw payload; mailbox events are small and a
// larger body is either a provider bug or abuse.
const maxWebhookBody = 1 << 20 // 1 MB

// HandleMailboxWebhook receives one signed event from the mailbox provider.
//
// Response contract: 204 for anything that should not be retried (processed,
// duplicate, irrelevant kind, unknown lead), 400 for a malformed envelope,
// 401 for a bad signature, 500 for internal failures the provider should
// retry. The body must be read raw — verification runs over the exact bytes
// on the wire.
func (h *Handlers) HandleMailboxWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	result, err := h.gateway.Handle(r.Context(), r.Header, body)
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrMalformedRequest):
			writeError(w, http.StatusBadRequest, "malformed request")
		case errors.Is(err, webhook.ErrInvalidSignature):
			writeError(w, http.StatusUnauthorized, "invalid signature")
		default:
			// Includes dedupe-required outages and persistence failures;
			// 500 tells the provider to redeliver.
			logger.Error("webhook processing failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if result.DispatchErr != nil {
		// The decision stood and is persisted; the failed send is an
		// outbound concern, not a reason for the provider to redeliver.
		logger.Warn("processed with failed dispatch", "event_id", result.Event.EventID)
	}
	w.WriteHeader(http.StatusNoContent)
}
