package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"brochure/internal/domain/session"
)

// Session socket timings
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// upgrader accepts same-origin upgrades only (the default CheckOrigin).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
}

// handleSessionSocket streams this browser's flag changes to one tab (GET /ws/session).
// The first message is the current state; each later message is a full state
// after a login or logout in any tab.
// POST: returns when the tab disconnects or the hub shuts down
func (s *server) handleSessionSocket(w http.ResponseWriter, r *http.Request) {
	b := s.browser(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("ws_upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	changes, cancel := s.Flags.Subscribe(b.ID)
	defer cancel()

	initial := session.Change{Flags: s.Flags.Read(r.Context(), b.ID), At: time.Now()}
	if err := writeChange(conn, initial); err != nil {
		return
	}

	// Tabs never send data; the read loop only services control frames and
	// notices the disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case c, ok := <-changes:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if err := writeChange(conn, c); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeChange(conn *websocket.Conn, c session.Change) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(c)
}
