/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package poller keeps a fresh server status snapshot in memory so API
// reads never block on the remote admin endpoint.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/cache"
	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/icecast"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
	"github.com/treasureakintoye/ambradio-dashboard/internal/telemetry"
)

// Publisher is the event bus surface the poller needs.
type Publisher interface {
	Publish(events.EventType, events.Payload)
}

// Poller fetches the admin status document on a fixed interval and
// fans the snapshot out to the cache, the event bus, metrics and the
// listener history table.
type Poller struct {
	client   *icecast.Client
	bus      Publisher
	cache    *cache.Cache
	db       *gorm.DB
	logger   zerolog.Logger
	interval time.Duration

	snapshot atomic.Pointer[icecast.Status]

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool

	lastTitle string
}

// New creates a poller. The cache and db may be nil; sampling and
// write-through are skipped when they are.
func New(client *icecast.Client, bus Publisher, statusCache *cache.Cache, db *gorm.DB, interval time.Duration, logger zerolog.Logger) *Poller {
	p := &Poller{
		client:   client,
		bus:      bus,
		cache:    statusCache,
		db:       db,
		logger:   logger.With().Str("component", "poller").Logger(),
		interval: interval,
	}
	// Snapshot reads before the first poll see an offline server, not
	// a nil pointer.
	p.snapshot.Store(client.OfflineStatus())
	return p
}

// Snapshot returns the most recent status. Never nil.
func (p *Poller) Snapshot() *icecast.Status {
	return p.snapshot.Load()
}

// Start launches the poll loop. The first poll runs immediately.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(loopCtx)
	p.logger.Info().Dur("interval", p.interval).Msg("status poller started")
}

// Stop halts the loop and waits for the in-flight poll to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.cancel()
	<-p.done
	p.started = false
	p.logger.Info().Msg("status poller stopped")
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	start := time.Now()
	status := p.client.FetchStatus(ctx)
	telemetry.PollDuration.Observe(time.Since(start).Seconds())

	p.snapshot.Store(status)
	p.publishStatus(status)
	p.updateMetrics(status)

	if p.cache != nil {
		p.cache.SetStatus(ctx, status)
	}

	if status.Online() {
		telemetry.PollCyclesTotal.WithLabelValues("online").Inc()
		p.recordSamples(ctx, status)
	} else {
		telemetry.PollCyclesTotal.WithLabelValues("offline").Inc()
	}
}

func (p *Poller) publishStatus(status *icecast.Status) {
	p.bus.Publish(events.EventStatusUpdate, events.Payload{
		"online":          status.Online(),
		"total_listeners": status.Stats.TotalListeners,
		"sources":         len(status.Sources),
	})

	title := currentTitle(status, p.client.Mount())
	if title != p.lastTitle {
		p.lastTitle = title
		if title != "" {
			p.bus.Publish(events.EventNowPlaying, events.Payload{"title": title})
		}
	}
}

func (p *Poller) updateMetrics(status *icecast.Status) {
	if status.Online() {
		telemetry.IcecastUp.Set(1)
	} else {
		telemetry.IcecastUp.Set(0)
	}
	telemetry.IcecastTotalListeners.Set(float64(status.Stats.TotalListeners))
	telemetry.IcecastSources.Set(float64(len(status.Sources)))
}

// recordSamples appends one listener history row per source. Failures
// are logged and skipped; history is best effort.
func (p *Poller) recordSamples(ctx context.Context, status *icecast.Status) {
	if p.db == nil {
		return
	}

	now := time.Now().UTC()
	for _, source := range status.Sources {
		sample := models.ListenerSample{
			ID:        uuid.NewString(),
			Mount:     source.Mount,
			Listeners: source.Listeners,
			Peak:      source.PeakListeners,
			Title:     source.Title,
			SampledAt: now,
		}
		if err := p.db.WithContext(ctx).Create(&sample).Error; err != nil {
			p.logger.Warn().Err(err).Str("mount", source.Mount).Msg("listener sample write failed")
		}
	}
}

// currentTitle picks the configured mount's title, falling back to the
// first source.
func currentTitle(status *icecast.Status, mount string) string {
	if len(status.Sources) == 0 {
		return ""
	}
	for _, source := range status.Sources {
		if source.Mount == mount {
			return source.Title
		}
	}
	return status.Sources[0].Title
}
