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

	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

type playlistRequest struct {
	StationID   string `json:"station_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) handlePlaylistsList(w http.ResponseWriter, r *http.Request) {
	query := a.db.WithContext(r.Context()).Order("name asc")
	if stationID := r.URL.Query().Get("station_id"); stationID != "" {
		query = query.Where("station_id = ?", stationID)
	}

	var playlists []models.Playlist
	if err := query.Find(&playlists).Error; err != nil {
		a.logger.Error().Err(err).Msg("list playlists failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (a *API) handlePlaylistsCreate(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}

	playlist := models.Playlist{
		ID:          uuid.NewString(),
		StationID:   req.StationID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := a.db.WithContext(r.Context()).Create(&playlist).Error; err != nil {
		a.logger.Error().Err(err).Msg("create playlist failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.bus.Publish(events.EventPlaylistUpdated, events.Payload{"playlist_id": playlist.ID})
	writeJSON(w, http.StatusCreated, playlist)
}

func (a *API) handlePlaylistsGet(w http.ResponseWriter, r *http.Request) {
	var playlist models.Playlist
	err := a.db.WithContext(r.Context()).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		First(&playlist, "id = ?", chi.URLParam(r, "playlistID")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "playlist_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

type playlistItemsRequest struct {
	MediaItemIDs []string `json:"media_item_ids"`
}

// handlePlaylistsSetItems replaces the playlist's item list. Order in
// the request body is the playout order.
func (a *API) handlePlaylistsSetItems(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")

	var playlist models.Playlist
	err := a.db.WithContext(r.Context()).First(&playlist, "id = ?", playlistID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "playlist_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req playlistItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	err = a.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlistID).Delete(&models.PlaylistItem{}).Error; err != nil {
			return err
		}
		for i, mediaID := range req.MediaItemIDs {
			item := models.PlaylistItem{
				ID:          uuid.NewString(),
				PlaylistID:  playlistID,
				MediaItemID: mediaID,
				Position:    i,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("set playlist items failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.bus.Publish(events.EventPlaylistUpdated, events.Payload{"playlist_id": playlistID})
	writeJSON(w, http.StatusOK, map[string]any{
		"playlist_id": playlistID,
		"item_count":  len(req.MediaItemIDs),
	})
}

func (a *API) handlePlaylistsDelete(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "playlistID")

	err := a.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlistID).Delete(&models.PlaylistItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Playlist{}, "id = ?", playlistID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "playlist_not_found")
			return
		}
		a.logger.Error().Err(err).Msg("delete playlist failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.bus.Publish(events.EventPlaylistUpdated, events.Payload{"playlist_id": playlistID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
