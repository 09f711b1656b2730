package server

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPublishSkipsStalledClient(t *testing.T) {
	h := NewHub()
	stalled := &client{send: make(chan []byte, 1)}
	stalled.send <- []byte("backlog")
	live := &client{send: make(chan []byte, sendBuffer)}
	h.register(stalled)
	h.register(live)

	done := make(chan struct{})
	go func() {
		h.Publish("ticker", map[string]int{"n": 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stalled client")
	}

	if n := h.Clients(); n != 1 {
		t.Errorf("Clients() = %d, want the stalled client dropped", n)
	}
	var m Message
	if err := json.Unmarshal(<-live.send, &m); err != nil || m.Type != "ticker" {
		t.Errorf("live client got %+v, %v", m, err)
	}

	h.unregister(stalled)
	h.unregister(live)
	if _, ok := <-live.send; ok {
		t.Error("unregister left the queue open")
	}
}
