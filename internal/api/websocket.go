package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/katalvlaran/lvgrid/internal/analysis"
)

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 64
)

// Event is one message sent to a WebSocket client.
type Event struct {
	Event string `json:"event"` // "progress", "result" or "error"
	Data  any    `json:"data"`
}

// ProgressData is the payload of a progress event.
type ProgressData struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// wsSession streams the events of one analysis to one client.
type wsSession struct {
	conn *websocket.Conn
	send chan []byte
}

// handleWebSocket reads one request, streams progress while the analysis
// runs and finishes with a result or error event. Closing the socket
// cancels the analysis.
func (h *handlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if originAllowed(r.Header.Get("Origin"), h.origins) {
				return true
			}
			log.Printf("api: websocket origin rejected: %s", r.Header.Get("Origin"))
			h.metrics.rejected.WithLabelValues("origin").Inc()
			return false
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already answered
	}
	h.metrics.wsActive.Inc()
	defer h.metrics.wsActive.Dec()
	defer conn.Close()

	conn.SetReadLimit(h.limits.MaxBodyBytes)
	var req analysis.Request
	if err = conn.ReadJSON(&req); err != nil {
		s := &wsSession{conn: conn}
		s.writeNow(Event{Event: "error", Data: ErrorData{Error: "invalid request: " + err.Error(), Status: http.StatusBadRequest}})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	s := &wsSession{conn: conn, send: make(chan []byte, wsSendBuffer)}
	written := make(chan struct{})
	go func() {
		defer close(written)
		s.writePump()
	}()
	go s.watchClose(cancel)

	req.Progress = func(done, total int) {
		s.offer(Event{Event: "progress", Data: ProgressData{Done: done, Total: total}})
	}
	res, status, err := h.run(ctx, &req)
	final := Event{Event: "result", Data: res}
	if err != nil {
		final = Event{Event: "error", Data: ErrorData{Error: err.Error(), Status: status}}
	}
	if b, err := json.Marshal(final); err == nil {
		s.send <- b
	}
	close(s.send)
	<-written
}

// offer queues ev unless the buffer is full; progress is lossy.
func (s *wsSession) offer(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case s.send <- b:
	default:
	}
}

// writePump is the only writer on the connection until send is closed.
func (s *wsSession) writePump() {
	for msg := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// keep draining so the producer never blocks
			for range s.send {
			}
			return
		}
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}

// writeNow sends a single event outside the pump.
func (s *wsSession) writeNow(ev Event) {
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := s.conn.WriteJSON(ev); err != nil {
		return
	}
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// watchClose cancels the analysis once the client stops reading.
func (s *wsSession) watchClose(cancel context.CancelFunc) {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("api: websocket read: %v", err)
			}
			cancel()
			return
		}
	}
}

// originAllowed accepts an empty Origin (non-browser clients) or one that
// matches a pattern; a single '*' in a pattern matches any run of characters.
func originAllowed(origin string, patterns []string) bool {
	if origin == "" {
		return true
	}
	for _, p := range patterns {
		if p == "*" || p == origin {
			return true
		}
		if pre, suf, ok := strings.Cut(p, "*"); ok &&
			len(origin) >= len(pre)+len(suf) &&
			strings.HasPrefix(origin, pre) && strings.HasSuffix(origin, suf) {
			return true
		}
	}
	return false
}
