/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires the HTTP surface and background services.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/analytics"
	"github.com/treasureakintoye/ambradio-dashboard/internal/api"
	"github.com/treasureakintoye/ambradio-dashboard/internal/cache"
	"github.com/treasureakintoye/ambradio-dashboard/internal/config"
	"github.com/treasureakintoye/ambradio-dashboard/internal/db"
	"github.com/treasureakintoye/ambradio-dashboard/internal/eventbus"
	"github.com/treasureakintoye/ambradio-dashboard/internal/icecast"
	"github.com/treasureakintoye/ambradio-dashboard/internal/logbuffer"
	"github.com/treasureakintoye/ambradio-dashboard/internal/media"
	"github.com/treasureakintoye/ambradio-dashboard/internal/poller"
	"github.com/treasureakintoye/ambradio-dashboard/internal/telemetry"
	"github.com/treasureakintoye/ambradio-dashboard/internal/version"
)

// analyticsPruneInterval controls how often old listener samples are
// removed. Retention itself lives in the analytics service.
const analyticsPruneInterval = 6 * time.Hour

// Server bundles HTTP and supporting services.
type Server struct {
	cfg           *config.Config
	logger        zerolog.Logger
	router        chi.Router
	httpServer    *http.Server
	metricsServer *http.Server
	closers       []func() error

	db             *gorm.DB
	cache          *cache.Cache
	bus            *eventbus.NATSBus
	logBuffer      *logbuffer.Buffer
	api            *api.API
	icecast        *icecast.Client
	poller         *poller.Poller
	analyticsSvc   *analytics.Service
	versionChecker *version.Checker

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logBuf *logbuffer.Buffer, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("ambradio-dashboard-api"))
	router.Use(telemetry.MetricsMiddleware)
	// Skip timeout for WebSocket and upload connections
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			if r.URL.Path == "/api/v1/media/upload" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		router:    router,
		logBuffer: logBuf,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:    addr,
		Handler: srv.router,
		// Keep header deadline to protect against slowloris, but do not
		// enforce a full-body read deadline so large uploads survive.
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       0,
		// WriteTimeout 0 for the WebSocket event feed; the middleware
		// timeout covers everything else.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	if err := os.MkdirAll(s.cfg.MediaRoot, 0755); err != nil {
		return fmt.Errorf("create media directory %s: %w", s.cfg.MediaRoot, err)
	}
	s.logger.Info().Str("path", s.cfg.MediaRoot).Msg("media directory ready")

	// Redis cache for Icecast status and station lists
	if s.cfg.RedisAddr != "" {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		statusCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = statusCache
			s.DeferClose(func() error { return s.cache.Close() })
		}
	}

	// Event bus, NATS-bridged when configured
	bus, err := eventbus.NewNATSBus(s.cfg.NATSURL, s.logger)
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	s.bus = bus
	s.DeferClose(func() error { return s.bus.Close() })

	s.icecast = icecast.NewClient(s.cfg.Icecast, s.logger)
	s.poller = poller.New(s.icecast, s.bus, s.cache, s.db, s.cfg.PollInterval, s.logger)

	mediaService, err := media.NewService(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("initialize media service: %w", err)
	}
	if err := mediaService.CheckStorageAccess(); err != nil {
		s.logger.Warn().Err(err).Msg("media storage access check failed")
	}

	s.analyticsSvc = analytics.NewService(s.db, s.logger)
	s.versionChecker = version.NewChecker(s.logger)

	apiMaxUploadBytes := int64(128 << 20)
	if s.cfg.MaxUploadSizeMB > 0 {
		apiMaxUploadBytes = s.cfg.MaxUploadSizeBytes()
	}
	s.api = api.New(
		s.db,
		[]byte(s.cfg.JWTSigningKey),
		s.icecast,
		s.poller,
		s.cache,
		s.bus,
		mediaService,
		s.analyticsSvc,
		s.logBuffer,
		apiMaxUploadBytes,
		s.logger,
	)
	s.api.SetVersionChecker(s.versionChecker)

	return nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// LogBuffer returns the server's log buffer for attaching to zerolog.
func (s *Server) LogBuffer() *logbuffer.Buffer {
	return s.logBuffer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.poller.Start(ctx)

	// Prune old listener history on a slow cadence.
	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		ticker := time.NewTicker(analyticsPruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.analyticsSvc.Prune(ctx)
			}
		}
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.versionChecker.Start(ctx)
	}()

	// Prometheus scrapes hit a dedicated bind so the metrics surface is
	// never exposed on the public listener.
	if s.cfg.MetricsBind != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		s.metricsServer = &http.Server{
			Addr:              s.cfg.MetricsBind,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.logger.Info().Str("addr", s.cfg.MetricsBind).Msg("metrics server listening")
			if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.poller.Stop()
	if s.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.metricsServer.Shutdown(shutdownCtx)
		cancel()
	}
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.api.Routes(s.router)
}
