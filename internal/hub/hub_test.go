package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storeplan/internal/service"
)

func readLines(t *testing.T, resp *http.Response) <-chan string {
	t.Helper()
	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

func waitFor(t *testing.T, lines <-chan string, prefix string) string {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before %q", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", prefix)
		}
	}
}

func TestHubSkipsOwnSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?session=s1")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	lines := readLines(t, resp)
	waitFor(t, lines, ": connected")

	if got := h.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}

	h.Broadcast(service.Event{Type: service.EventEntityUpdated, Origin: "s1"})
	h.Broadcast(service.Event{Type: service.EventElementDeleted, Origin: "s2"})

	line := waitFor(t, lines, "event:")
	if line != "event: element_deleted" {
		t.Errorf("first event = %q, want element_deleted", line)
	}
	data := waitFor(t, lines, "data:")
	if !strings.Contains(data, `"origin":"s2"`) {
		t.Errorf("data = %q", data)
	}
}

func TestHubForward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New()
	go h.Run(ctx)

	bus := service.NewEventBus()
	go h.Forward(ctx, bus)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	lines := readLines(t, resp)
	waitFor(t, lines, ": connected")

	// Forward subscribes asynchronously; publish until the event arrives
	deadline := time.Now().Add(2 * time.Second)
	for {
		bus.Publish(service.Event{Type: service.EventLayoutReloaded})
		select {
		case line := <-lines:
			if line == "event: layout_reloaded" {
				return
			}
		case <-time.After(20 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("event was not forwarded")
		}
	}
}
