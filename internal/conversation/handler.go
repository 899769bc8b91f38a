package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/truck-repair-platform/internal/leads"
	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// Handler exposes the engine over HTTP for the widget.
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

// NewHandler creates a chat session handler.
func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// Routes mounts the session endpoints under the caller's prefix.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sessions", h.StartSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/messages", h.SendMessage)
		r.Post("/options", h.SelectOption)
		r.Post("/lead", h.SubmitLead)
		r.Get("/faq", h.ShowFAQ)
	})
}

// StartSession handles POST /api/chat/sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	reply, err := h.engine.Start(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

// GetSession handles GET /api/chat/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type textRequest struct {
	Message string `json:"message"`
}

// SendMessage handles POST /api/chat/sessions/{sessionID}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, err := h.engine.SendText(r.Context(), chi.URLParam(r, "sessionID"), req.Message)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type optionRequest struct {
	Option Option `json:"option"`
}

// SelectOption handles POST /api/chat/sessions/{sessionID}/options
func (h *Handler) SelectOption(w http.ResponseWriter, r *http.Request) {
	var req optionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, err := h.engine.SelectOption(r.Context(), chi.URLParam(r, "sessionID"), req.Option)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// SubmitLead handles POST /api/chat/sessions/{sessionID}/lead
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var form leads.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, err := h.engine.SubmitLead(r.Context(), chi.URLParam(r, "sessionID"), form)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

// ShowFAQ handles GET /api/chat/sessions/{sessionID}/faq
func (h *Handler) ShowFAQ(w http.ResponseWriter, r *http.Request) {
	reply, err := h.engine.FAQ(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	var verr *leads.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   verr.Error(),
			"missing": verr.Missing,
			"invalid": verr.Invalid,
		})
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, ErrCompleted):
		writeError(w, http.StatusConflict, "conversation already completed")
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrUnknownOption):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDispatchFailed):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "could not submit request",
			"message": "Sorry, something went wrong sending your request. Please call us directly.",
		})
	default:
		h.logger.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
