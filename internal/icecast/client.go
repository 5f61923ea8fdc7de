/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package icecast integrates with the external Icecast streaming server:
// it polls the admin statistics document, normalizes it into a stable
// snapshot shape, and issues authenticated control commands.
package icecast

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/treasureakintoye/ambradio-dashboard/internal/config"
)

const (
	requestTimeout = 10 * time.Second

	// Icecast authenticates admin calls made with the stream credential
	// under the fixed "source" username.
	sourceUser = "source"
)

// Client talks to one Icecast server. It is safe for concurrent use;
// every call is an independent short-lived request.
type Client struct {
	cfg    config.Icecast
	http   *resty.Client
	logger zerolog.Logger
}

// NewClient creates a client for the configured streaming server.
func NewClient(cfg config.Icecast, logger zerolog.Logger) *Client {
	return &Client{
		cfg: cfg,
		http: resty.New().
			SetTimeout(requestTimeout).
			SetHeader("User-Agent", "AmbRadio/1.0"),
		logger: logger.With().Str("component", "icecast").Logger(),
	}
}

// Mount returns the configured primary mount point.
func (c *Client) Mount() string {
	return c.cfg.MountPoint
}
