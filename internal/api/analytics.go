/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"strconv"
)

// handleAnalyticsListeners returns a listener trend report for one
// mount. Defaults to the configured primary mount over 24 hours.
func (a *API) handleAnalyticsListeners(w http.ResponseWriter, r *http.Request) {
	mount := r.URL.Query().Get("mount")
	if mount == "" {
		mount = a.icecast.Mount()
	}

	windowHours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 || val > 24*31 {
			writeError(w, http.StatusBadRequest, "invalid_hours")
			return
		}
		windowHours = val
	}

	maxPoints := 0
	if raw := r.URL.Query().Get("points"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 || val > 10000 {
			writeError(w, http.StatusBadRequest, "invalid_points")
			return
		}
		maxPoints = val
	}

	report, err := a.analytics.Report(r.Context(), mount, windowHours, maxPoints)
	if err != nil {
		a.logger.Error().Err(err).Msg("listener report failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleAnalyticsMounts lists mounts with recorded history.
func (a *API) handleAnalyticsMounts(w http.ResponseWriter, r *http.Request) {
	mounts, err := a.analytics.Mounts(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list sampled mounts failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mounts": mounts})
}
