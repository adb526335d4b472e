package realtime

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/internal/store"
)

func dialTest(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(Serve(h))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return wc, func() {
		wc.Close()
		srv.Close()
	}
}

func waitForSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, have %d", n, h.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServeDeliversEventsAsJSON(t *testing.T) {
	h := NewHub()
	wc, done := dialTest(t, h)
	defer done()
	waitForSubscribers(t, h, 1)

	h.Publish(records.Event{
		Type:    records.EventEmployeeUpdate,
		Payload: store.Record{"id": "e1", "name": "A"},
	})

	wc.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := wc.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg["event"] != "employee_update" {
		t.Fatalf("event = %v, want employee_update", msg["event"])
	}
	data, ok := msg["data"].(map[string]any)
	if !ok || data["id"] != "e1" || data["name"] != "A" {
		t.Fatalf("unexpected payload: %v", msg["data"])
	}
}

func TestServeUnregistersOnDisconnect(t *testing.T) {
	h := NewHub()
	wc, done := dialTest(t, h)
	defer done()
	waitForSubscribers(t, h, 1)

	wc.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not removed after disconnect, have %d", h.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// publishing into an empty hub must not panic or block
	h.Publish(records.Event{Type: records.EventNotification, Payload: store.Record{"id": "n1"}})
}
