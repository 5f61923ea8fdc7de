/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/auth"
	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

const defaultMaxUpload = 128 << 20

func (a *API) handleMediaList(w http.ResponseWriter, r *http.Request) {
	query := a.db.WithContext(r.Context()).Order("created_at desc")
	if stationID := r.URL.Query().Get("station_id"); stationID != "" {
		query = query.Where("station_id = ?", stationID)
	}
	if search := r.URL.Query().Get("q"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR artist LIKE ?", like, like)
	}

	var items []models.MediaItem
	if err := query.Find(&items).Error; err != nil {
		a.logger.Error().Err(err).Msg("list media failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	maxUpload := a.maxUpload
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file_required")
		return
	}
	defer file.Close()

	var duration time.Duration
	if durationStr := r.FormValue("duration_seconds"); durationStr != "" {
		val, err := strconv.ParseFloat(durationStr, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_duration")
			return
		}
		duration = time.Duration(val * float64(time.Second))
	}

	mediaID := uuid.NewString()

	key, err := a.media.Store(r.Context(), mediaID, header.Filename, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "media_store_failed")
		return
	}

	item := models.MediaItem{
		ID:         mediaID,
		StationID:  r.FormValue("station_id"),
		Title:      r.FormValue("title"),
		Artist:     r.FormValue("artist"),
		Album:      r.FormValue("album"),
		Genre:      r.FormValue("genre"),
		Duration:   duration,
		StorageKey: key,
		Path:       a.media.URL(key),
		SizeBytes:  header.Size,
		UploadedBy: claims.UserID,
	}
	if item.Title == "" {
		item.Title = header.Filename
	}

	if err := a.db.WithContext(r.Context()).Create(&item).Error; err != nil {
		// Orphaned object, remove it so storage stays consistent.
		_ = a.media.Delete(r.Context(), key)
		a.logger.Error().Err(err).Msg("create media item failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	audit := a.auditContext(r)
	audit["media_id"] = item.ID
	audit["filename"] = header.Filename
	a.bus.Publish(events.EventAuditMediaUpload, audit)

	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleMediaGet(w http.ResponseWriter, r *http.Request) {
	var item models.MediaItem
	err := a.db.WithContext(r.Context()).First(&item, "id = ?", chi.URLParam(r, "mediaID")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "media_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleMediaDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var item models.MediaItem
	err := a.db.WithContext(ctx).First(&item, "id = ?", chi.URLParam(r, "mediaID")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "media_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if err := a.db.WithContext(ctx).Delete(&item).Error; err != nil {
		a.logger.Error().Err(err).Msg("delete media item failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	if item.StorageKey != "" {
		if err := a.media.Delete(ctx, item.StorageKey); err != nil {
			a.logger.Warn().Err(err).Str("key", item.StorageKey).Msg("stored file removal failed")
		}
	}

	a.bus.Publish(events.EventMediaDeleted, events.Payload{"media_id": item.ID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
