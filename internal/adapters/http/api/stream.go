package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/crowdguess/pkg/logger"
	"github.com/okian/crowdguess/pkg/metrics"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleStream handles GET /sessions/{id}/ws. It upgrades to a WebSocket
// and writes a JSON snapshot after every session transition.
func (h *SessionsHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream_session"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snaps, cancel, err := h.deps.Subscribe(r.PathValue("id"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.RecordErrorByEndpoint("ws", r.Method, "upgrade_failed")
		return
	}
	defer conn.Close()
	metrics.RecordHTTPRequest("ws", r.Method, "101")

	ctx := r.Context()
	h.logger.Debug(ctx, "stream opened", logger.String("session_id", r.PathValue("id")))

	// The read loop only services control frames; it ends when the client goes away.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				h.logger.Debug(ctx, "stream write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
