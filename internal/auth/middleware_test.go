package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func issueTestToken(t *testing.T, secret []byte, roles ...string) string {
	t.Helper()
	token, err := Issue(secret, Claims{UserID: "u1", Roles: roles}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func okHandler(t *testing.T, wantClaims bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantClaims {
			if _, ok := ClaimsFromContext(r.Context()); !ok {
				t.Fatal("expected claims in context")
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_AcceptsBearerToken(t *testing.T) {
	secret := []byte("test-secret")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, secret, "admin"))
	rr := httptest.NewRecorder()

	Middleware(secret)(okHandler(t, true)).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMiddleware_RejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations", nil)
	rr := httptest.NewRecorder()

	Middleware([]byte("test-secret"))(okHandler(t, false)).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestMiddleware_RejectsQueryTokenOutsideEvents(t *testing.T) {
	secret := []byte("test-secret")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations?token="+issueTestToken(t, secret, "admin"), nil)
	rr := httptest.NewRecorder()

	Middleware(secret)(okHandler(t, false)).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for query token auth, got %d", rr.Code)
	}
}

func TestMiddleware_AcceptsQueryTokenForEventsWebSocketUpgrade(t *testing.T) {
	secret := []byte("test-secret")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?token="+issueTestToken(t, secret, "operator"), nil)
	req.Header.Set("Upgrade", "websocket")
	rr := httptest.NewRecorder()

	Middleware(secret)(okHandler(t, true)).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for websocket query token auth, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRequireRoles(t *testing.T) {
	secret := []byte("test-secret")
	handler := Middleware(secret)(RequireRoles("admin")(okHandler(t, true)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/streamers", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, secret, "admin"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/streamers", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, secret, "streamer"))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for streamer, got %d", rr.Code)
	}
}
