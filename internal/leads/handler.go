package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// Handler serves the admin lead endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListLeads handles GET /admin/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r, 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

// ExportCSV handles GET /admin/leads/export.csv; filters apply but paging does not.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromRequest(r, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit, filter.Offset = 0, 0

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to export leads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export leads")
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteCSV(w, leads); err != nil {
		h.logger.Error("failed to write csv", "error", err)
	}
}

// GetLead handles GET /admin/leads/{leadID}
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.repo.Get(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		h.writeRepoError(w, err, "failed to load lead")
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /admin/leads/{leadID}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "leadID")
	lead, err := h.repo.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.writeRepoError(w, err, "failed to update lead")
		return
	}
	h.logger.Info("lead status updated", "lead_id", id, "status", status)
	writeJSON(w, http.StatusOK, lead)
}

// DeleteLead handles DELETE /admin/leads/{leadID}
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadID")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeRepoError(w, err, "failed to delete lead")
		return
	}
	h.logger.Info("lead deleted", "lead_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ErrLeadNotFound) {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func filterFromRequest(r *http.Request, defaultLimit int) (Filter, error) {
	q := r.URL.Query()
	filter := Filter{Limit: defaultLimit, Search: q.Get("search")}

	if v := q.Get("type"); v != "" {
		t := Type(v)
		if !t.Valid() {
			return filter, ErrInvalidType
		}
		filter.Type = t
	}
	if v := q.Get("status"); v != "" {
		st, err := ParseStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 500 {
			filter.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
