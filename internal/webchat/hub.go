package webchat

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

const defaultWriteTimeout = 5 * time.Second

// socket is the write side of a *websocket.Conn. Write sends one text frame.
type socket interface {
	io.Writer
	SetWriteDeadline(t time.Time) error
	Close() error
}

// hub tracks the open sockets for each chat session so a reply reaches every
// tab the visitor has open on that session.
type hub struct {
	mu           sync.RWMutex
	conns        map[string]map[socket]struct{}
	writeTimeout time.Duration
}

func newHub() *hub {
	return &hub{
		conns:        make(map[string]map[socket]struct{}),
		writeTimeout: defaultWriteTimeout,
	}
}

func (h *hub) register(sessionID string, conn socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[sessionID]
	if !ok {
		set = make(map[socket]struct{})
		h.conns[sessionID] = set
	}
	set[conn] = struct{}{}
}

func (h *hub) unregister(sessionID string, conn socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[sessionID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.conns, sessionID)
	}
}

func (h *hub) count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// broadcast writes frame to every socket on the session in parallel, each
// under a write deadline. A socket that misses the deadline is closed; its
// read loop then fails and unregisters it.
func (h *hub) broadcast(sessionID string, frame OutboundFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]socket, 0, len(h.conns[sessionID]))
	for c := range h.conns[sessionID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, c := range targets {
		wg.Add(1)
		go func(c socket) {
			defer wg.Done()
			_ = c.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if _, err := c.Write(data); err != nil {
				_ = c.Close()
				return
			}
			_ = c.SetWriteDeadline(time.Time{})
		}(c)
	}
	wg.Wait()
}
