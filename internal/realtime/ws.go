package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/pkg/logger"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 60 * time.Second
	// sendBuffer bounds how far a slow client may fall behind before it
	// starts missing events.
	sendBuffer = 32
)

// Serve upgrades the request to a websocket, registers the connection as a
// subscriber and pushes change events until the client disconnects. The
// client never sends application messages; the read loop only detects
// disconnects and answers pings.
func Serve(h *Hub) http.HandlerFunc {
	upgr := &websocket.Upgrader{
		// the API is already CORS-open; the socket follows the same policy
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return func(w http.ResponseWriter, r *http.Request) {
		wc, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnf("ws upgrade failed: %v", err)
			return
		}
		sub := h.Subscribe(sendBuffer)
		go writePump(wc, sub)
		readLoop(wc)
		h.Unsubscribe(sub)
	}
}

// writePump serializes events to the socket and keeps the connection alive
// with periodic pings. It exits when the subscriber channel is closed or a
// write fails.
func writePump(wc *websocket.Conn, sub *Subscriber) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer wc.Close()
	for {
		select {
		case evt, ok := <-sub.C():
			if !ok {
				wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				wc.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wc.WriteJSON(evt); err != nil {
				return
			}
		case <-t.C:
			wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wc.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func readLoop(wc *websocket.Conn) {
	for {
		if _, _, err := wc.ReadMessage(); err != nil {
			return
		}
	}
}

// compile-time check: the hub is the record service's publisher
var _ records.Publisher = (*Hub)(nil)
