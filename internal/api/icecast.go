/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/treasureakintoye/ambradio-dashboard/internal/events"
	"github.com/treasureakintoye/ambradio-dashboard/internal/icecast"
	"github.com/treasureakintoye/ambradio-dashboard/internal/telemetry"
)

// handleIcecastStatus returns the full server status. The poller's
// snapshot answers by default; ?live=1 forces a fresh admin fetch.
// Always 200: an unreachable server is reported as an offline
// snapshot, not an error.
func (a *API) handleIcecastStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("live") == "1" || a.poller == nil {
		writeJSON(w, http.StatusOK, a.icecast.FetchStatus(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, a.poller.Snapshot())
}

// handleStream reports the compact public summary for the configured
// mount.
func (a *API) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if a.statusCache != nil {
		if summary, ok := a.statusCache.GetStreamSummary(ctx); ok {
			writeJSON(w, http.StatusOK, summary)
			return
		}
	}

	summary, err := a.icecast.FetchStreamSummary(ctx)
	if err != nil {
		switch {
		case errors.Is(err, icecast.ErrStreamNotFound):
			writeError(w, http.StatusNotFound, "stream_not_found")
		default:
			writeError(w, http.StatusNotFound, "stream_offline")
		}
		return
	}

	if a.statusCache != nil {
		a.statusCache.SetStreamSummary(ctx, summary)
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleNowPlaying is the lightweight metadata endpoint for the public
// player widget. Offline is a normal answer here.
func (a *API) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	summary, err := a.icecast.FetchStreamSummary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"online":      false,
			"currentSong": nil,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"online":      summary.Online,
		"currentSong": summary.CurrentSong,
		"listeners":   summary.Listeners,
	})
}

type controlRequest struct {
	Action string `json:"action"`
	Mount  string `json:"mount"`
}

type controlResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleIcecastControl dispatches an operator action. The response
// shape separates outcome classes: bad input is 400, a rejected remote
// call is 502, and a policy refusal is a 200 with success=false.
func (a *API) handleIcecastControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action_required")
		return
	}

	action, err := icecast.ParseAction(req.Action)
	if err != nil {
		telemetry.ControlActionsTotal.WithLabelValues(req.Action, "rejected").Inc()
		writeError(w, http.StatusBadRequest, "unknown_action")
		return
	}

	result, err := a.icecast.Dispatch(r.Context(), icecast.ControlRequest{
		Action: action,
		Mount:  req.Mount,
	})
	if err != nil {
		telemetry.ControlActionsTotal.WithLabelValues(string(action), "failed").Inc()
		a.logger.Error().Err(err).Str("action", string(action)).Msg("control dispatch failed")

		message := "icecast unreachable"
		var remoteErr *icecast.RemoteError
		if errors.As(err, &remoteErr) {
			message = remoteErr.Status
		}
		writeJSON(w, http.StatusBadGateway, controlResponse{Success: false, Error: message})
		return
	}

	outcome := "accepted"
	if !result.Accepted {
		outcome = "refused"
	}
	telemetry.ControlActionsTotal.WithLabelValues(string(action), outcome).Inc()

	audit := a.auditContext(r)
	audit["action"] = string(action)
	audit["mount"] = req.Mount
	audit["accepted"] = result.Accepted
	a.bus.Publish(events.EventAuditControl, audit)
	a.bus.Publish(events.EventControlAction, events.Payload{
		"action":   string(action),
		"accepted": result.Accepted,
	})

	writeJSON(w, http.StatusOK, controlResponse{Success: result.Accepted, Message: result.Message})
}
