package chatbot

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

var tracer = otel.Tracer("truckshop.internal.chatbot")

// MessageRecorder counts classified messages.
type MessageRecorder interface {
	ObserveMessage(category string)
}

// Request is the body of POST /api/chatbot-ai.
type Request struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context,omitempty"`
}

// Response is returned by POST /api/chatbot-ai.
type Response struct {
	Response       string   `json:"response"`
	Category       Category `json:"category"`
	ShouldShowForm bool     `json:"shouldShowForm"`
}

// Handler serves the stateless classifier endpoint and the FAQ list.
type Handler struct {
	selector *Selector
	faq      []FAQ
	metrics  MessageRecorder
	logger   *logging.Logger
}

// NewHandler creates a chatbot handler.
func NewHandler(selector *Selector, faq []FAQ, metrics MessageRecorder, logger *logging.Logger) *Handler {
	if selector == nil {
		selector = NewSelector(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{selector: selector, faq: faq, metrics: metrics, logger: logger}
}

// Reply classifies message and picks a canned response for it.
func (h *Handler) Reply(message string) Response {
	category := Classify(message)
	if h.metrics != nil {
		h.metrics.ObserveMessage(string(category))
	}
	return Response{
		Response:       h.selector.Select(category),
		Category:       category,
		ShouldShowForm: category.NeedsForm(),
	}
}

// HandleChatbot handles POST /api/chatbot-ai.
func (h *Handler) HandleChatbot(w http.ResponseWriter, r *http.Request) {
	_, span := tracer.Start(r.Context(), "chatbot.classify")
	defer span.End()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp := h.Reply(req.Message)
	span.SetAttributes(attribute.String("chatbot.category", string(resp.Category)))
	h.logger.Debug("chatbot reply", "category", resp.Category, "show_form", resp.ShouldShowForm, "has_context", len(req.Context) > 0)

	writeJSON(w, http.StatusOK, resp)
}

// HandleFAQ handles GET /api/chat/faq.
func (h *Handler) HandleFAQ(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"faq":  h.faq,
		"text": FormatFAQ(h.faq),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
