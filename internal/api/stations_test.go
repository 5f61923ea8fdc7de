package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

func TestStationCRUD(t *testing.T) {
	_, router := newTestAPI(t, nil)
	admin := bearer(t, "admin")

	// Create
	body := `{"name":"AmbRadio One","genre":"Ambient","mount_point":"live"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stations/", strings.NewReader(body))
	req.Header.Set("Authorization", admin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var created models.Station
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.Name != "AmbRadio One" {
		t.Fatalf("unexpected station: %+v", created)
	}
	if created.MountPoint != "/live" {
		t.Errorf("expected normalized mount /live, got %q", created.MountPoint)
	}

	// List
	req = httptest.NewRequest(http.MethodGet, "/api/v1/stations/", nil)
	req.Header.Set("Authorization", bearer(t, "streamer"))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var list []models.Station
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 station, got %d", len(list))
	}

	// Update
	body = `{"name":"AmbRadio Prime","genre":"Downtempo","mount_point":"/live"}`
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/stations/%s/", created.ID), strings.NewReader(body))
	req.Header.Set("Authorization", admin)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Get
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/stations/%s/", created.ID), nil)
	req.Header.Set("Authorization", admin)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	var fetched models.Station
	json.Unmarshal(rr.Body.Bytes(), &fetched)
	if fetched.Name != "AmbRadio Prime" {
		t.Errorf("expected updated name, got %q", fetched.Name)
	}

	// Delete (admin only)
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/stations/%s/", created.ID), nil)
	req.Header.Set("Authorization", bearer(t, "operator"))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("delete as operator: expected 403, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/stations/%s/", created.ID), nil)
	req.Header.Set("Authorization", admin)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rr.Code)
	}

	// Get after delete
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/stations/%s/", created.ID), nil)
	req.Header.Set("Authorization", admin)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rr.Code)
	}
}

func TestStationCreateRequiresName(t *testing.T) {
	_, router := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stations/", strings.NewReader(`{"genre":"Ambient"}`))
	req.Header.Set("Authorization", bearer(t, "admin"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "name_required") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestStationWriteForbiddenForStreamer(t *testing.T) {
	_, router := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stations/", strings.NewReader(`{"name":"X"}`))
	req.Header.Set("Authorization", bearer(t, "streamer"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
