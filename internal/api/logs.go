/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"strconv"

	"github.com/treasureakintoye/ambradio-dashboard/internal/logbuffer"
)

// handleSystemLogs returns recent log entries, newest first.
func (a *API) handleSystemLogs(w http.ResponseWriter, r *http.Request) {
	if a.logBuffer == nil {
		writeError(w, http.StatusServiceUnavailable, "log_buffer_disabled")
		return
	}

	params := logbuffer.QueryParams{
		Level:     r.URL.Query().Get("level"),
		Component: r.URL.Query().Get("component"),
		Search:    r.URL.Query().Get("q"),
		Limit:     100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 || val > 1000 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		params.Limit = val
	}

	entries := a.logBuffer.Query(params)
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleClearLogs empties the in-memory log buffer.
func (a *API) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	if a.logBuffer == nil {
		writeError(w, http.StatusServiceUnavailable, "log_buffer_disabled")
		return
	}
	a.logBuffer.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
