/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

type stationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	MountPoint  string `json:"mount_point"`
	Website     string `json:"website"`
}

func (a *API) handleStationsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if a.statusCache != nil {
		if stations, ok := a.statusCache.GetStationList(ctx); ok {
			writeJSON(w, http.StatusOK, stations)
			return
		}
	}

	var stations []models.Station
	if err := a.db.WithContext(ctx).Order("name asc").Find(&stations).Error; err != nil {
		a.logger.Error().Err(err).Msg("list stations failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if a.statusCache != nil {
		a.statusCache.SetStationList(ctx, stations)
	}
	writeJSON(w, http.StatusOK, stations)
}

func (a *API) handleStationsCreate(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}
	if req.MountPoint != "" && !strings.HasPrefix(req.MountPoint, "/") {
		req.MountPoint = "/" + req.MountPoint
	}

	station := models.Station{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Genre:       req.Genre,
		MountPoint:  req.MountPoint,
		Website:     req.Website,
	}
	if err := a.db.WithContext(r.Context()).Create(&station).Error; err != nil {
		a.logger.Error().Err(err).Msg("create station failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.invalidateStations(r)
	writeJSON(w, http.StatusCreated, station)
}

func (a *API) handleStationsGet(w http.ResponseWriter, r *http.Request) {
	var station models.Station
	err := a.db.WithContext(r.Context()).First(&station, "id = ?", chi.URLParam(r, "stationID")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "station_not_found")
			return
		}
		a.logger.Error().Err(err).Msg("get station failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, station)
}

func (a *API) handleStationsUpdate(w http.ResponseWriter, r *http.Request) {
	var station models.Station
	err := a.db.WithContext(r.Context()).First(&station, "id = ?", chi.URLParam(r, "stationID")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "station_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req stationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}
	if req.MountPoint != "" && !strings.HasPrefix(req.MountPoint, "/") {
		req.MountPoint = "/" + req.MountPoint
	}

	station.Name = req.Name
	station.Description = req.Description
	station.Genre = req.Genre
	station.MountPoint = req.MountPoint
	station.Website = req.Website

	if err := a.db.WithContext(r.Context()).Save(&station).Error; err != nil {
		a.logger.Error().Err(err).Msg("update station failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.invalidateStations(r)
	writeJSON(w, http.StatusOK, station)
}

func (a *API) handleStationsDelete(w http.ResponseWriter, r *http.Request) {
	result := a.db.WithContext(r.Context()).Delete(&models.Station{}, "id = ?", chi.URLParam(r, "stationID"))
	if result.Error != nil {
		a.logger.Error().Err(result.Error).Msg("delete station failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "station_not_found")
		return
	}

	a.invalidateStations(r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *API) invalidateStations(r *http.Request) {
	if a.statusCache != nil {
		a.statusCache.InvalidateStationList(r.Context())
	}
	a.bus.Publish(events.EventStationUpdated, events.Payload{})
}
