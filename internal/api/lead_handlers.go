package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/outreachlabs/dealpilot/internal/domain"
	"github.com/outreachlabs/dealpilot/internal/pkg/logger"
	"github.com/outreachlabs/dealpilot/internal/repository/postgres"
)

// GetLead returns one lead by id.
func (h *Handlers) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// ListLeads returns a status-filterable page of leads.
func (h *Handlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	leads, total, err := h.leads.List(r.Context(), postgres.ListFilter{
		Status: q.Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leads": leads,
		"total": total,
	})
}

// ResetLead is the operator's re-engagement door: it moves a terminal lead
// back to replied so a fresh inbound message can drive it again. This is the
// only sanctioned exit from won/lost/escalated and it is deliberately manual.
func (h *Handlers) ResetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lead, err := h.leads.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !lead.Status.Terminal() {
		writeError(w, http.StatusConflict, "lead is not in a terminal state")
		return
	}

	previous := lead.Status
	lead.Status = domain.LeadReplied
	if err := h.leads.Update(r.Context(), lead); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	logger.Info("lead reset by operator", "lead", lead.ID, "previous", string(previous))
	writeJSON(w, http.StatusOK, lead)
}
