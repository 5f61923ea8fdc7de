package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const upstreamStatsXML = `<?xml version="1.0"?>
<icestats>
  <admin><host>radio.example.com</host><ic_version>2.4.4</ic_version></admin>
  <source mount="/stream">
    <listener_current>5</listener_current>
    <title>Queen - Bohemian Rhapsody</title>
  </source>
  <source mount="/b">
    <listener_current>3</listener_current>
  </source>
</icestats>`

func icecastUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/stats.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(upstreamStatsXML))
	})
	mux.HandleFunc("/admin/metadata", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Metadata update successful"))
	})
	mux.HandleFunc("/status-json.xsl", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"icestats":{"source":{"mount":"/stream","listeners":5,"title":"Queen - Bohemian Rhapsody","bitrate":128}}}`))
	})
	return httptest.NewServer(mux)
}

func TestHealthIsPublic(t *testing.T) {
	_, router := newTestAPI(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestIcecastStatusIsPublic(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/icecast/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 without credentials, got %d", rr.Code)
	}
}

func TestControlRequiresAuth(t *testing.T) {
	_, router := newTestAPI(t, nil)

	rr := postControl(t, router, "", `{"action":"skip_track"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestIcecastStatusOnline(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/icecast/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var status struct {
		Server struct {
			Status string `json:"status"`
		} `json:"server"`
		Stats struct {
			TotalListeners int `json:"total_listeners"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Server.Status != "online" {
		t.Errorf("expected online, got %q", status.Server.Status)
	}
	if status.Stats.TotalListeners != 8 {
		t.Errorf("expected total_listeners 8, got %d", status.Stats.TotalListeners)
	}
}

func TestIcecastStatusUnreachableStill200(t *testing.T) {
	_, router := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/icecast/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with offline snapshot, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"offline"`) {
		t.Errorf("expected offline snapshot, got %s", rr.Body.String())
	}
}

func postControl(t *testing.T, router http.Handler, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/icecast/control", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestControlSkipTrack(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "operator"), `{"action":"skip_track"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp controlResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Message != "Track skipped" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestControlAdvisoryStart(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "admin"), `{"action":"start_source","mount":"/live"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp controlResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if !resp.Success {
		t.Errorf("expected success, got %+v", resp)
	}
	if resp.Message != "Source /live start requested. Connect a streaming client." {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestControlReloadRefused(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "admin"), `{"action":"reload_config"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp controlResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Success {
		t.Error("reload must report success=false")
	}
	if resp.Message != "Reload requires admin password" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestControlUnknownAction(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "admin"), `{"action":"restart"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "unknown_action") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestControlMissingAction(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "admin"), `{"mount":"/stream"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "action_required") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestControlInvalidJSON(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "admin"), `{"action":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid_json") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestControlRemoteFailureIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "operator"), `{"action":"skip_track"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp controlResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Success || resp.Error == "" {
		t.Errorf("expected failure with error text, got %+v", resp)
	}
}

func TestControlForbiddenForStreamerRole(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := postControl(t, router, bearer(t, "streamer"), `{"action":"skip_track"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestStreamSummaryPublic(t *testing.T) {
	upstream := icecastUpstream(t)
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var summary struct {
		Online      bool `json:"online"`
		Listeners   int  `json:"listeners"`
		CurrentSong *struct {
			Title  string `json:"title"`
			Artist string `json:"artist"`
		} `json:"currentSong"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !summary.Online || summary.Listeners != 5 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.CurrentSong == nil || summary.CurrentSong.Artist != "Queen" {
		t.Errorf("unexpected current song: %+v", summary.CurrentSong)
	}
}

func TestStreamSummaryOffline(t *testing.T) {
	_, router := newTestAPI(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "stream_offline") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestStreamSummaryMountNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"icestats":{"source":[{"mount":"/other","listeners":1}]}}`))
	}))
	defer upstream.Close()
	_, router := newTestAPI(t, upstream)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stream", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "stream_not_found") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestNowPlayingOfflineIsStill200(t *testing.T) {
	_, router := newTestAPI(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/now-playing", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Online bool `json:"online"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Online {
		t.Error("expected online=false")
	}
}
