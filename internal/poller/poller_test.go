package poller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/treasureakintoye/ambradio-dashboard/internal/config"
	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/icecast"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.EventType
}

func (rb *recordingBus) Publish(eventType events.EventType, _ events.Payload) {
	rb.mu.Lock()
	rb.events = append(rb.events, eventType)
	rb.mu.Unlock()
}

func (rb *recordingBus) seen(eventType events.EventType) bool {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for _, e := range rb.events {
		if e == eventType {
			return true
		}
	}
	return false
}

const statsXML = `<?xml version="1.0"?>
<icestats>
  <admin><host>radio.example.com</host><ic_version>2.4.4</ic_version></admin>
  <source mount="/stream">
    <listener_current>4</listener_current>
    <title>Queen - Bohemian Rhapsody</title>
  </source>
</icestats>`

func newTestPoller(t *testing.T, server *httptest.Server, bus Publisher, interval time.Duration) *Poller {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())
	client := icecast.NewClient(config.Icecast{
		Hostname:       u.Hostname(),
		Port:           port,
		MountPoint:     "/stream",
		SourcePassword: "pw",
	}, zerolog.Nop())
	return New(client, bus, nil, nil, interval, zerolog.Nop())
}

func TestSnapshotBeforeFirstPollIsOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	p := newTestPoller(t, server, &recordingBus{}, time.Hour)
	status := p.Snapshot()
	if status == nil {
		t.Fatal("expected non-nil snapshot before start")
	}
	if status.Online() {
		t.Error("expected offline snapshot before first poll")
	}
}

func TestPollUpdatesSnapshotAndPublishes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statsXML))
	}))
	defer server.Close()

	bus := &recordingBus{}
	p := newTestPoller(t, server, bus, time.Hour)

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Snapshot().Online() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	status := p.Snapshot()
	if !status.Online() {
		t.Fatal("snapshot never went online")
	}
	if status.Stats.TotalListeners != 4 {
		t.Errorf("expected 4 listeners, got %d", status.Stats.TotalListeners)
	}
	if !bus.seen(events.EventStatusUpdate) {
		t.Error("expected status_update event")
	}
	if !bus.seen(events.EventNowPlaying) {
		t.Error("expected now_playing event for new title")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statsXML))
	}))
	defer server.Close()

	p := newTestPoller(t, server, &recordingBus{}, 10*time.Millisecond)

	p.Stop() // before start, no-op

	p.Start(context.Background())
	p.Start(context.Background()) // second start, no-op

	time.Sleep(50 * time.Millisecond)
	p.Stop()
	p.Stop() // second stop, no-op
}
