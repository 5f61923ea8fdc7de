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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

type streamerRequest struct {
	StationID   string `json:"station_id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Active      *bool  `json:"active"`
}

// streamerView never exposes the password hash.
type streamerView struct {
	ID          string `json:"id"`
	StationID   string `json:"station_id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	Active      bool   `json:"active"`
}

func toStreamerView(s models.Streamer) streamerView {
	return streamerView{
		ID:          s.ID,
		StationID:   s.StationID,
		DisplayName: s.DisplayName,
		Username:    s.Username,
		Active:      s.Active,
	}
}

func (a *API) handleStreamersList(w http.ResponseWriter, r *http.Request) {
	var streamers []models.Streamer
	if err := a.db.WithContext(r.Context()).Order("username asc").Find(&streamers).Error; err != nil {
		a.logger.Error().Err(err).Msg("list streamers failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	views := make([]streamerView, len(streamers))
	for i, s := range streamers {
		views[i] = toStreamerView(s)
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleStreamersCreate(w http.ResponseWriter, r *http.Request) {
	var req streamerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "credentials_required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash_error")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	streamer := models.Streamer{
		ID:          uuid.NewString(),
		StationID:   req.StationID,
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Password:    string(hash),
		Active:      active,
	}
	if err := a.db.WithContext(r.Context()).Create(&streamer).Error; err != nil {
		a.logger.Error().Err(err).Msg("create streamer failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	audit := a.auditContext(r)
	audit["streamer_id"] = streamer.ID
	audit["username"] = streamer.Username
	a.bus.Publish(events.EventAuditStreamerCreate, audit)

	writeJSON(w, http.StatusCreated, toStreamerView(streamer))
}

func (a *API) handleStreamersUpdate(w http.ResponseWriter, r *http.Request) {
	var streamer models.Streamer
	err := a.db.WithContext(r.Context()).First(&streamer, "id = ?", chi.URLParam(r, "streamerID")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "streamer_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req streamerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.DisplayName != "" {
		streamer.DisplayName = req.DisplayName
	}
	if req.Username != "" {
		streamer.Username = req.Username
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "hash_error")
			return
		}
		streamer.Password = string(hash)
	}
	if req.Active != nil {
		streamer.Active = *req.Active
	}

	if err := a.db.WithContext(r.Context()).Save(&streamer).Error; err != nil {
		a.logger.Error().Err(err).Msg("update streamer failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, toStreamerView(streamer))
}

func (a *API) handleStreamersDelete(w http.ResponseWriter, r *http.Request) {
	streamerID := chi.URLParam(r, "streamerID")

	result := a.db.WithContext(r.Context()).Delete(&models.Streamer{}, "id = ?", streamerID)
	if result.Error != nil {
		a.logger.Error().Err(result.Error).Msg("delete streamer failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "streamer_not_found")
		return
	}

	audit := a.auditContext(r)
	audit["streamer_id"] = streamerID
	a.bus.Publish(events.EventAuditStreamerDelete, audit)

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
