/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

const maxOpenRequestsPerStation = 100

type songRequestBody struct {
	StationID     string `json:"station_id"`
	RequesterName string `json:"requester_name"`
	SongTitle     string `json:"song_title"`
	SongArtist    string `json:"song_artist"`
	Message       string `json:"message"`
}

// handleRequestCreate accepts a listener song request. Public, so the
// pending queue is capped per station.
func (a *API) handleRequestCreate(w http.ResponseWriter, r *http.Request) {
	var req songRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.SongTitle == "" {
		writeError(w, http.StatusBadRequest, "song_title_required")
		return
	}

	var pending int64
	err := a.db.WithContext(r.Context()).
		Model(&models.SongRequest{}).
		Where("station_id = ? AND status = ?", req.StationID, models.RequestPending).
		Count(&pending).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if pending >= maxOpenRequestsPerStation {
		writeError(w, http.StatusTooManyRequests, "request_queue_full")
		return
	}

	request := models.SongRequest{
		ID:            uuid.NewString(),
		StationID:     req.StationID,
		RequesterName: req.RequesterName,
		SongTitle:     req.SongTitle,
		SongArtist:    req.SongArtist,
		Message:       req.Message,
		Status:        models.RequestPending,
	}
	if err := a.db.WithContext(r.Context()).Create(&request).Error; err != nil {
		a.logger.Error().Err(err).Msg("create song request failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

func (a *API) handleRequestsList(w http.ResponseWriter, r *http.Request) {
	query := a.db.WithContext(r.Context()).Order("created_at desc")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if stationID := r.URL.Query().Get("station_id"); stationID != "" {
		query = query.Where("station_id = ?", stationID)
	}

	var requests []models.SongRequest
	if err := query.Find(&requests).Error; err != nil {
		a.logger.Error().Err(err).Msg("list song requests failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

type requestStatusBody struct {
	Status string `json:"status"`
}

// handleRequestUpdate moves a request through its lifecycle. Only the
// status can change.
func (a *API) handleRequestUpdate(w http.ResponseWriter, r *http.Request) {
	var body requestStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	status := models.RequestStatus(body.Status)
	switch status {
	case models.RequestPending, models.RequestPlayed, models.RequestRejected:
	default:
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	var request models.SongRequest
	err := a.db.WithContext(r.Context()).First(&request, "id = ?", chi.URLParam(r, "requestID")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "request_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	request.Status = status
	if err := a.db.WithContext(r.Context()).Save(&request).Error; err != nil {
		a.logger.Error().Err(err).Msg("update song request failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, request)
}
