package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	apiContext "leadflow/internal/api/context"
	"leadflow/internal/engine/leads"
	"leadflow/internal/pkg/errors"
)

const defaultListLimit = 200

type LeadHandler struct {
	repo    *leads.Repository
	service *leads.Service
	events  *leads.EventRepository
}

func NewLeadHandler(repo *leads.Repository, service *leads.Service, events *leads.EventRepository) *LeadHandler {
	return &LeadHandler{repo: repo, service: service, events: events}
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	list, err := h.repo.List(limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	if list == nil {
		list = []*leads.Lead{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		OK    bool          `json:"ok"`
		Leads []*leads.Lead `json:"leads"`
	}{OK: true, Leads: list})
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := paramFromContext(r, "lead_id")

	lead, err := h.repo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Lead not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Data *leads.Lead `json:"data"`
	}{Data: lead})
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := paramFromContext(r, "lead_id")

	if err := h.repo.Delete(id); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Success bool `json:"success"`
	}{Success: true})
}

// Create is the landing-form intake endpoint.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form leads.FormLead
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	lead, err := h.service.CreateFromForm(&form)
	if err != nil {
		var vErr *leads.ValidationError
		if stderrors.As(err, &vErr) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, vErr.Error(), nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		OK   bool        `json:"ok"`
		Lead *leads.Lead `json:"lead"`
	}{OK: true, Lead: lead})
}

func (h *LeadHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	id := paramFromContext(r, "lead_id")

	var req struct {
		ToStage   string   `json:"to_stage"`
		Outcome   string   `json:"outcome"`
		Note      string   `json:"note"`
		DealValue *float64 `json:"deal_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	lead, err := h.service.ChangeStage(id, &leads.StageChange{
		ToStage:   req.ToStage,
		Outcome:   req.Outcome,
		Note:      req.Note,
		DealValue: req.DealValue,
	})
	if err != nil {
		if stderrors.Is(err, leads.ErrNotFound) {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Lead not found", nil)
			return
		}
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		OK   bool        `json:"ok"`
		Lead *leads.Lead `json:"lead"`
	}{OK: true, Lead: lead})
}

func (h *LeadHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id := paramFromContext(r, "lead_id")

	events, err := h.events.ListByLead(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, err.Error(), nil)
		return
	}
	if events == nil {
		events = []*leads.LeadEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		OK     bool               `json:"ok"`
		Events []*leads.LeadEvent `json:"events"`
	}{OK: true, Events: events})
}

func paramFromContext(r *http.Request, name string) string {
	params, ok := r.Context().Value(apiContext.Params).(httprouter.Params)
	if !ok {
		return ""
	}
	return params.ByName(name)
}
