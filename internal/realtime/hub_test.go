package realtime

import (
	"testing"
	"time"

	"github.com/staffdesk/staffdesk/internal/records"
	"github.com/staffdesk/staffdesk/internal/store"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(4)
	b := h.Subscribe(4)
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	evt := records.Event{Type: records.EventEmployeeUpdate, Payload: store.Record{"id": "e1"}}
	h.Publish(evt)

	for _, sub := range []*Subscriber{a, b} {
		select {
		case got := <-sub.C():
			if got.Type != records.EventEmployeeUpdate {
				t.Fatalf("unexpected event: %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(4)
	h.Unsubscribe(sub)

	if h.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", h.Len())
	}
	// channel closed: receive returns immediately with ok=false
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	// double unsubscribe must not panic
	h.Unsubscribe(sub)

	// publishing to an empty registry is a no-op
	h.Publish(records.Event{Type: records.EventNotification})
}

func TestHubSaturatedSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1)
	defer h.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		// second publish overflows the buffer; it must drop, not block
		h.Publish(records.Event{Type: records.EventNotification, Payload: store.Record{"id": "n1"}})
		h.Publish(records.Event{Type: records.EventNotification, Payload: store.Record{"id": "n2"}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a saturated subscriber")
	}

	got := <-sub.C()
	payload := got.Payload.(store.Record)
	if payload["id"] != "n1" {
		t.Fatalf("expected first event retained, got %v", payload["id"])
	}
	select {
	case extra := <-sub.C():
		t.Fatalf("expected overflow event to be dropped, got %+v", extra)
	default:
	}
}

func TestLateSubscriberMissesEarlierEvents(t *testing.T) {
	h := NewHub()
	h.Publish(records.Event{Type: records.EventLeaveCreated})

	sub := h.Subscribe(4)
	defer h.Unsubscribe(sub)
	select {
	case evt := <-sub.C():
		t.Fatalf("late subscriber received replayed event: %+v", evt)
	default:
	}
}
