// Package webchat carries the chat widget over a WebSocket. It drives the same
// conversation engine as the JSON endpoints.
package webchat

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/wolfman30/truck-repair-platform/internal/conversation"
	"github.com/wolfman30/truck-repair-platform/internal/leads"
	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

// Engine is the part of conversation.Engine the socket needs.
type Engine interface {
	Start(ctx context.Context) (*conversation.Reply, error)
	Get(ctx context.Context, id string) (*conversation.Session, error)
	SendText(ctx context.Context, id, text string) (*conversation.Reply, error)
	SelectOption(ctx context.Context, id string, option conversation.Option) (*conversation.Reply, error)
	SubmitLead(ctx context.Context, id string, form leads.Form) (*conversation.Reply, error)
	FAQ(ctx context.Context, id string) (*conversation.Reply, error)
}

// Frame types.
const (
	FrameStart   = "start"
	FrameMessage = "message"
	FrameOption  = "option"
	FrameLead    = "lead"
	FrameFAQ     = "faq"
	FramePing    = "ping"

	FrameSession = "session"
	FrameReply   = "reply"
	FrameError   = "error"
	FramePong    = "pong"
)

// InboundFrame is what the widget sends.
type InboundFrame struct {
	Type   string              `json:"type"`
	Text   string              `json:"text,omitempty"`
	Option conversation.Option `json:"option,omitempty"`
	Lead   *leads.Form         `json:"lead,omitempty"`
}

// OutboundFrame is what the server sends back.
type OutboundFrame struct {
	Type      string                `json:"type"`
	SessionID string                `json:"sessionId,omitempty"`
	Session   *conversation.Session `json:"session,omitempty"`
	Reply     *conversation.Reply   `json:"reply,omitempty"`
	Error     string                `json:"error,omitempty"`
	Missing   []string              `json:"missing,omitempty"`
	Invalid   map[string]string     `json:"invalid,omitempty"`
}

// Handler manages widget sockets.
type Handler struct {
	engine Engine
	hub    *hub
	logger *logging.Logger
}

// NewHandler creates a web chat handler.
func NewHandler(engine Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, hub: newHub(), logger: logger}
}

// HandleWebSocket upgrades GET /chat/ws. A ?session=<id> query resumes an
// existing session; otherwise the widget sends a start frame first.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	var sessionID string
	defer func() {
		if sessionID != "" {
			h.hub.unregister(sessionID, conn)
		}
	}()

	if resume := r.URL.Query().Get("session"); resume != "" {
		session, err := h.engine.Get(ctx, resume)
		switch {
		case err == nil:
			sessionID = session.ID
			h.hub.register(sessionID, conn)
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: FrameSession, SessionID: sessionID, Session: session})
		case errors.Is(err, conversation.ErrSessionNotFound):
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: FrameError, Error: "session expired"})
		default:
			h.logger.Error("webchat: failed to resume session", "session_id", resume, "error", err)
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: FrameError, Error: "internal error"})
		}
	}

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var frame InboundFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if frame.Type == FramePing {
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: FramePong})
			continue
		}

		if frame.Type == FrameStart {
			reply, err := h.engine.Start(ctx)
			if err != nil {
				h.sendError(conn, err)
				continue
			}
			if sessionID != "" {
				h.hub.unregister(sessionID, conn)
			}
			sessionID = reply.Session.ID
			h.hub.register(sessionID, conn)
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: FrameReply, SessionID: sessionID, Reply: reply})
			continue
		}

		if sessionID == "" {
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: FrameError, Error: "no session, send a start frame first"})
			continue
		}

		reply, err := h.apply(ctx, sessionID, frame)
		if err != nil {
			h.sendError(conn, err)
			continue
		}
		h.hub.broadcast(sessionID, OutboundFrame{Type: FrameReply, SessionID: sessionID, Reply: reply})
	}
}

func (h *Handler) apply(ctx context.Context, sessionID string, frame InboundFrame) (*conversation.Reply, error) {
	switch frame.Type {
	case FrameMessage:
		return h.engine.SendText(ctx, sessionID, frame.Text)
	case FrameOption:
		return h.engine.SelectOption(ctx, sessionID, frame.Option)
	case FrameFAQ:
		return h.engine.FAQ(ctx, sessionID)
	case FrameLead:
		if frame.Lead == nil {
			return nil, errMissingLead
		}
		return h.engine.SubmitLead(ctx, sessionID, *frame.Lead)
	}
	return nil, errUnknownFrame
}

var (
	errMissingLead  = errors.New("lead frame has no form")
	errUnknownFrame = errors.New("unknown frame type")
)

func (h *Handler) sendError(conn *websocket.Conn, err error) {
	frame := OutboundFrame{Type: FrameError}
	var verr *leads.ValidationError
	switch {
	case errors.As(err, &verr):
		frame.Error = verr.Error()
		frame.Missing = verr.Missing
		frame.Invalid = verr.Invalid
	case errors.Is(err, errMissingLead), errors.Is(err, errUnknownFrame),
		errors.Is(err, conversation.ErrEmptyMessage), errors.Is(err, conversation.ErrUnknownOption):
		frame.Error = err.Error()
	case errors.Is(err, conversation.ErrSessionNotFound):
		frame.Error = "session expired"
	case errors.Is(err, conversation.ErrCompleted):
		frame.Error = "conversation already completed"
	case errors.Is(err, conversation.ErrDispatchFailed):
		frame.Error = "Sorry, something went wrong sending your request. Please call us directly."
	default:
		h.logger.Error("webchat: request failed", "error", err)
		frame.Error = "internal error"
	}
	_ = websocket.JSON.Send(conn, frame)
}
