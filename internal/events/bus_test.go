package events

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(nil)
	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelA()
	defer cancelB()

	bus.Publish(Event{Source: "extension"})

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case e := <-ch:
			if e.Type != TypeUpdated || e.Source != "extension" || e.At.IsZero() {
				t.Fatalf("%s got %+v", name, e)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: no event", name)
		}
	}
}

func TestBus_CancelUnsubscribes(t *testing.T) {
	bus := NewBus(nil)
	ch, cancel := bus.Subscribe()
	if bus.Subscribers() != 1 {
		t.Fatalf("subscribers = %d", bus.Subscribers())
	}

	cancel()
	cancel()

	if bus.Subscribers() != 0 {
		t.Fatalf("subscribers = %d after cancel", bus.Subscribers())
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	bus.Publish(Event{})
}

func TestBus_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewBus(nil)
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Event{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestStreamHandler_DeliversNotify(t *testing.T) {
	bus := NewBus(nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", StreamHandler(bus, nil))
	mux.HandleFunc("POST /api/events", NotifyHandler(bus))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer res.Body.Close()

	reader := bufio.NewReader(res.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("first line = %q, err = %v", line, err)
	}

	notify, err := http.Post(srv.URL+"/api/events", "application/json", strings.NewReader(`{"source":"extension"}`))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	notify.Body.Close()
	if notify.StatusCode != http.StatusAccepted {
		t.Fatalf("notify status = %d", notify.StatusCode)
	}

	var eventLine, dataLine string
	for eventLine == "" || dataLine == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		switch {
		case strings.HasPrefix(line, "event: "):
			eventLine = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			dataLine = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}

	if eventLine != TypeUpdated {
		t.Fatalf("event = %q", eventLine)
	}
	var e Event
	if err := json.Unmarshal([]byte(dataLine), &e); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if e.Source != "extension" || e.Reason != "client_notify" {
		t.Fatalf("event = %+v", e)
	}
}

func TestBus_CloseEndsSubscriptions(t *testing.T) {
	bus := NewBus(nil)
	ch, cancel := bus.Subscribe()

	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	cancel()

	late, _ := bus.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("subscription after close should be closed")
	}
	bus.Publish(Event{})
}
