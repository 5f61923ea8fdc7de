package api

import (
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/treasureakintoye/ambradio-dashboard/internal/analytics"
	"github.com/treasureakintoye/ambradio-dashboard/internal/auth"
	"github.com/treasureakintoye/ambradio-dashboard/internal/config"
	"github.com/treasureakintoye/ambradio-dashboard/internal/db"
	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/icecast"
	"github.com/treasureakintoye/ambradio-dashboard/internal/logbuffer"
	"github.com/treasureakintoye/ambradio-dashboard/internal/media"
)

var testSecret = []byte("test-secret")

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

// newTestAPI builds a full router backed by an in-memory database and
// an icecast client pointed at the given upstream.
func newTestAPI(t *testing.T, upstream *httptest.Server) (*API, chi.Router) {
	t.Helper()

	var icecastCfg config.Icecast
	if upstream != nil {
		u, err := url.Parse(upstream.URL)
		if err != nil {
			t.Fatalf("parse upstream URL: %v", err)
		}
		port, _ := strconv.Atoi(u.Port())
		icecastCfg = config.Icecast{
			Hostname:       u.Hostname(),
			Port:           port,
			MountPoint:     "/stream",
			SourcePassword: "pw",
		}
	} else {
		// Unroutable but well-formed; only reached by tests that expect
		// connection failure.
		icecastCfg = config.Icecast{
			Hostname:       "127.0.0.1",
			Port:           1,
			MountPoint:     "/stream",
			SourcePassword: "pw",
		}
	}

	database := testDB(t)
	client := icecast.NewClient(icecastCfg, zerolog.Nop())

	mediaSvc, err := media.NewService(&config.Config{MediaRoot: t.TempDir()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("media service: %v", err)
	}

	api := New(
		database,
		testSecret,
		client,
		nil, // no poller: status handler fetches live
		nil, // no redis in tests
		events.NewBus(),
		mediaSvc,
		analytics.NewService(database, zerolog.Nop()),
		logbuffer.New(100),
		0,
		zerolog.Nop(),
	)

	router := chi.NewRouter()
	api.Routes(router)
	return api, router
}

func bearer(t *testing.T, roles ...string) string {
	t.Helper()
	token, err := auth.Issue(testSecret, auth.Claims{UserID: "u1", Roles: roles}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}
