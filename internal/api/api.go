/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the dashboard HTTP surface.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/analytics"
	"github.com/treasureakintoye/ambradio-dashboard/internal/auth"
	"github.com/treasureakintoye/ambradio-dashboard/internal/cache"
	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/icecast"
	"github.com/treasureakintoye/ambradio-dashboard/internal/logbuffer"
	"github.com/treasureakintoye/ambradio-dashboard/internal/media"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
	"github.com/treasureakintoye/ambradio-dashboard/internal/poller"
	"github.com/treasureakintoye/ambradio-dashboard/internal/version"
)

// Bus is the event bus surface the API needs. Satisfied by both the
// in-process bus and the NATS-backed bus.
type Bus interface {
	Publish(events.EventType, events.Payload)
	SubscribeMany(...events.EventType) events.Subscriber
	Unsubscribe(events.Subscriber)
}

// API exposes HTTP handlers.
type API struct {
	db          *gorm.DB
	jwtSecret   []byte
	icecast     *icecast.Client
	poller      *poller.Poller
	statusCache *cache.Cache
	bus         Bus
	media       *media.Service
	analytics   *analytics.Service
	logBuffer   *logbuffer.Buffer
	maxUpload   int64
	logger      zerolog.Logger

	versionChecker *version.Checker
}

// New creates the API router wrapper.
func New(db *gorm.DB, jwtSecret []byte, icecastClient *icecast.Client, statusPoller *poller.Poller, statusCache *cache.Cache, bus Bus, mediaSvc *media.Service, analyticsSvc *analytics.Service, logBuf *logbuffer.Buffer, maxUpload int64, logger zerolog.Logger) *API {
	return &API{
		db:          db,
		jwtSecret:   jwtSecret,
		icecast:     icecastClient,
		poller:      statusPoller,
		statusCache: statusCache,
		bus:         bus,
		media:       mediaSvc,
		analytics:   analyticsSvc,
		logBuffer:   logBuf,
		maxUpload:   maxUpload,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts API routes on the provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		// Public endpoints (no auth required)
		r.Post("/auth/login", a.handleLogin)
		r.Get("/stream", a.handleStream)
		r.Get("/now-playing", a.handleNowPlaying)

		// Icecast: the status snapshot is public, control is not.
		r.Route("/icecast", func(r chi.Router) {
			r.Get("/status", a.handleIcecastStatus)
			r.With(a.authMiddleware(), a.requireRoles(models.RoleAdmin, models.RoleOperator)).Post("/control", a.handleIcecastControl)
		})

		// Song requests: creation is public, moderation is not.
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", a.handleRequestCreate)
			r.With(a.authMiddleware()).Get("/", a.handleRequestsList)
			r.With(a.authMiddleware(), a.requireRoles(models.RoleAdmin, models.RoleOperator)).Patch("/{requestID}", a.handleRequestUpdate)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware())

			pr.Route("/stations", func(r chi.Router) {
				r.Get("/", a.handleStationsList)
				r.With(a.requireRoles(models.RoleAdmin, models.RoleOperator)).Post("/", a.handleStationsCreate)
				r.Route("/{stationID}", func(r chi.Router) {
					r.Get("/", a.handleStationsGet)
					r.With(a.requireRoles(models.RoleAdmin, models.RoleOperator)).Put("/", a.handleStationsUpdate)
					r.With(a.requireRoles(models.RoleAdmin)).Delete("/", a.handleStationsDelete)
				})
			})

			pr.Route("/media", func(r chi.Router) {
				r.Get("/", a.handleMediaList)
				r.With(a.requireRoles(models.RoleAdmin, models.RoleOperator)).Post("/upload", a.handleMediaUpload)
				r.Route("/{mediaID}", func(r chi.Router) {
					r.Get("/", a.handleMediaGet)
					r.With(a.requireRoles(models.RoleAdmin, models.RoleOperator)).Delete("/", a.handleMediaDelete)
				})
			})

			pr.Route("/playlists", func(r chi.Router) {
				r.Get("/", a.handlePlaylistsList)
				r.With(a.requireRoles(models.RoleAdmin, models.RoleOperator)).Post("/", a.handlePlaylistsCreate)
				r.Route("/{playlistID}", func(r chi.Router) {
					r.Get("/", a.handlePlaylistsGet)
					r.With(a.requireRoles(models.RoleAdmin, models.RoleOperator)).Put("/items", a.handlePlaylistsSetItems)
					r.With(a.requireRoles(models.RoleAdmin, models.RoleOperator)).Delete("/", a.handlePlaylistsDelete)
				})
			})

			pr.Route("/streamers", func(r chi.Router) {
				r.Use(a.requireRoles(models.RoleAdmin))
				r.Get("/", a.handleStreamersList)
				r.Post("/", a.handleStreamersCreate)
				r.Route("/{streamerID}", func(r chi.Router) {
					r.Put("/", a.handleStreamersUpdate)
					r.Delete("/", a.handleStreamersDelete)
				})
			})

			pr.Route("/analytics", func(r chi.Router) {
				r.Get("/listeners", a.handleAnalyticsListeners)
				r.Get("/mounts", a.handleAnalyticsMounts)
			})

			// System logs (admin only)
			pr.Route("/system", func(r chi.Router) {
				r.Use(a.requireRoles(models.RoleAdmin))
				r.Get("/logs", a.handleSystemLogs)
				r.Delete("/logs", a.handleClearLogs)
				r.Get("/version", a.handleSystemVersion)
			})

			pr.Get("/events", a.handleEvents)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) authMiddleware() func(http.Handler) http.Handler {
	return auth.Middleware(a.jwtSecret)
}

func (a *API) requireRoles(allowed ...models.RoleName) func(http.Handler) http.Handler {
	roles := make([]string, len(allowed))
	for i, role := range allowed {
		roles[i] = string(role)
	}
	return auth.RequireRoles(roles...)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// auditContext extracts user and request info for audit events.
func (a *API) auditContext(r *http.Request) events.Payload {
	payload := events.Payload{
		"ip_address": r.RemoteAddr,
		"user_agent": r.UserAgent(),
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		payload["user_id"] = claims.UserID
	}
	return payload
}
