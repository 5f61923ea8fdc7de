/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package icecast

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Action is one of the closed set of operator control actions. The set
// is exhaustive; extending it is a design change, not a configuration.
type Action string

const (
	ActionSkipTrack    Action = "skip_track"
	ActionStartSource  Action = "start_source"
	ActionStopSource   Action = "stop_source"
	ActionReloadConfig Action = "reload_config"
)

// ErrUnknownAction marks a request for an action outside the closed
// enum. It is a client input error, not a remote failure.
var ErrUnknownAction = errors.New("unknown action")

// RemoteError carries the upstream status text when the admin API
// rejects a command.
type RemoteError struct {
	StatusCode int
	Status     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("admin call failed: %s", e.Status)
}

// ControlRequest is an ephemeral operator action. The mount defaults to
// the configured primary mount; the credential is never part of the
// request.
type ControlRequest struct {
	Action Action
	Mount  string
}

// ControlResult reports the outcome of a dispatch. Accepted=false with
// a nil error means the action is valid but refused by policy
// (reload_config under the source credential); it must never be
// conflated with success.
type ControlResult struct {
	Accepted bool
	Message  string
}

// ParseAction validates a wire action string against the closed enum.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionSkipTrack, ActionStartSource, ActionStopSource, ActionReloadConfig:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Dispatch translates an operator action into a remote effect or an
// explicit "not supported" response. Errors are returned only for bad
// input (ErrUnknownAction) and failed remote calls (*RemoteError or a
// wrapped transport error); advisory outcomes are results, not errors.
func (c *Client) Dispatch(ctx context.Context, req ControlRequest) (ControlResult, error) {
	mount := req.Mount
	if mount == "" {
		mount = c.cfg.MountPoint
	}

	switch req.Action {
	case ActionSkipTrack:
		if err := c.updateMetadata(ctx, mount, ""); err != nil {
			return ControlResult{}, err
		}
		c.logger.Info().Str("mount", mount).Msg("track skipped")
		return ControlResult{Accepted: true, Message: "Track skipped"}, nil

	case ActionStartSource:
		// Starting a source needs an encoder client to connect; there is
		// no server-side mechanism.
		c.logger.Info().Str("mount", mount).Msg("source start requested")
		return ControlResult{
			Accepted: true,
			Message:  fmt.Sprintf("Source %s start requested. Connect a streaming client.", mount),
		}, nil

	case ActionStopSource:
		c.logger.Info().Str("mount", mount).Msg("source stop requested")
		return ControlResult{
			Accepted: true,
			Message:  fmt.Sprintf("Source %s stop requested. Disconnect the streaming client.", mount),
		}, nil

	case ActionReloadConfig:
		// The held credential is source-scoped; a reload needs the admin
		// password. Refuse explicitly rather than pretending success.
		c.logger.Warn().Msg("config reload refused: requires admin credential")
		return ControlResult{Accepted: false, Message: "Reload requires admin password"}, nil

	default:
		return ControlResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

// updateMetadata issues the authenticated metadata-update admin call.
// An empty song clears the announced track title, which is the
// skip-track mechanism.
func (c *Client) updateMetadata(ctx context.Context, mount, song string) error {
	endpoint := fmt.Sprintf("%s/metadata?mount=%s&mode=updinfo&song=%s",
		c.cfg.AdminURL(), url.QueryEscape(mount), url.QueryEscape(song))

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(sourceUser, c.cfg.SourcePassword).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("metadata update: %w", err)
	}
	if !resp.IsSuccess() {
		return &RemoteError{StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	return nil
}
