/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package icecast

import (
	"context"
	"encoding/xml"
	"strconv"
	"strings"
)

// Fallback values applied when the upstream document omits a field.
// The dashboard always renders a complete source card, so every field
// has a defined default.
const (
	DefaultFormat  = "Unknown"
	DefaultTitle   = "No Title"
	DefaultGenre   = "Various"
	DefaultVersion = "Unknown"
)

// ServerStatus describes the streaming server itself for one poll cycle.
type ServerStatus struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Status  string `json:"status"` // online|offline
	Version string `json:"version"`
	Uptime  int64  `json:"uptime"`
}

// SourceStatus describes one connected mount point.
type SourceStatus struct {
	Mount         string `json:"mount"`
	Status        string `json:"status"`
	Listeners     int    `json:"listeners"`
	PeakListeners int    `json:"peak_listeners"`
	Bitrate       int    `json:"bitrate"`
	Format        string `json:"format"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Genre         string `json:"genre"`
	URL           string `json:"url"`
	ConnectedTime int64  `json:"connected_time"`
}

// AggregateStats is recomputed from the admin block and sources per poll.
type AggregateStats struct {
	TotalListeners      int `json:"total_listeners"`
	PeakListeners       int `json:"peak_listeners"`
	Sources             int `json:"sources"`
	Clients             int `json:"clients"`
	Connections         int `json:"connections"`
	FileConnections     int `json:"file_connections"`
	ListenerConnections int `json:"listener_connections"`
	SourceConnections   int `json:"source_connections"`
}

// Status is one complete snapshot of the remote server.
type Status struct {
	Server  ServerStatus   `json:"server"`
	Sources []SourceStatus `json:"sources"`
	Stats   AggregateStats `json:"stats"`
}

// Online reports whether the snapshot was produced from a successful fetch.
func (s *Status) Online() bool {
	return s != nil && s.Server.Status == "online"
}

// icestatsXML mirrors the admin stats.xml document. All leaves stay as
// strings so the defaulting policy lives in one place (normalizeStatus),
// not in the XML decoder.
type icestatsXML struct {
	XMLName xml.Name    `xml:"icestats"`
	Admin   adminXML    `xml:"admin"`
	Sources []sourceXML `xml:"source"`
}

type adminXML struct {
	Host                string `xml:"host"`
	Version             string `xml:"ic_version"`
	Uptime              string `xml:"uptime"`
	PeakListeners       string `xml:"peak_listeners"`
	Clients             string `xml:"clients"`
	Connections         string `xml:"connections"`
	FileConnections     string `xml:"file_connections"`
	ListenerConnections string `xml:"listener_connections"`
	SourceConnections   string `xml:"source_connections"`
}

type sourceXML struct {
	Mount       string `xml:"mount,attr"`
	Listeners   string `xml:"listener_current"`
	Peak        string `xml:"peak"`
	Bitrate     string `xml:"bitrate"`
	ContentType string `xml:"content_type"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Genre       string `xml:"genre"`
	Connected   string `xml:"connected"`
}

// FetchStatus produces a best-effort snapshot of the remote server. It
// never returns an error: any failure (transport, non-2xx, malformed
// XML) degrades to an offline snapshot that preserves the configured
// host and port. The polling loop re-invokes on its own interval, so a
// single failure is transient.
func (c *Client) FetchStatus(ctx context.Context) *Status {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(sourceUser, c.cfg.SourcePassword).
		Get(c.cfg.AdminURL() + "/stats.xml")
	if err != nil {
		c.logger.Warn().Err(err).Msg("stats fetch failed")
		return c.OfflineStatus()
	}
	if !resp.IsSuccess() {
		c.logger.Warn().Int("status", resp.StatusCode()).Msg("stats fetch returned non-2xx")
		return c.OfflineStatus()
	}

	var doc icestatsXML
	if err := xml.Unmarshal(resp.Body(), &doc); err != nil {
		c.logger.Warn().Err(err).Msg("stats document malformed")
		return c.OfflineStatus()
	}

	return c.normalizeStatus(doc)
}

// OfflineStatus is the well-defined fallback snapshot: offline state,
// no sources, all-zero stats, configured host/port preserved so the UI
// can still show what it tried to reach.
func (c *Client) OfflineStatus() *Status {
	return &Status{
		Server: ServerStatus{
			Host:   c.cfg.Hostname,
			Port:   c.cfg.Port,
			Status: "offline",
		},
		Sources: []SourceStatus{},
		Stats:   AggregateStats{},
	}
}

// normalizeStatus maps the loosely-typed admin document into the stable
// snapshot shape. Every default applied to optional upstream fields
// lives here so the policy is auditable in one place.
func (c *Client) normalizeStatus(doc icestatsXML) *Status {
	host := doc.Admin.Host
	if host == "" {
		host = c.cfg.Hostname
	}

	sources := make([]SourceStatus, 0, len(doc.Sources))
	total := 0
	for _, src := range doc.Sources {
		listeners := atoiDefault(src.Listeners)
		total += listeners
		sources = append(sources, SourceStatus{
			Mount:         src.Mount,
			Status:        "connected",
			Listeners:     listeners,
			PeakListeners: atoiDefault(src.Peak),
			Bitrate:       atoiDefault(src.Bitrate),
			Format:        formatFromContentType(src.ContentType),
			Title:         stringDefault(src.Title, DefaultTitle),
			Description:   src.Description,
			Genre:         stringDefault(src.Genre, DefaultGenre),
			URL:           c.cfg.BaseURL() + src.Mount,
			ConnectedTime: int64(atoiDefault(src.Connected)),
		})
	}

	return &Status{
		Server: ServerStatus{
			Host:    host,
			Port:    c.cfg.Port,
			Status:  "online",
			Version: stringDefault(doc.Admin.Version, DefaultVersion),
			Uptime:  int64(atoiDefault(doc.Admin.Uptime)),
		},
		Sources: sources,
		Stats: AggregateStats{
			TotalListeners:      total,
			PeakListeners:       atoiDefault(doc.Admin.PeakListeners),
			Sources:             len(sources),
			Clients:             atoiDefault(doc.Admin.Clients),
			Connections:         atoiDefault(doc.Admin.Connections),
			FileConnections:     atoiDefault(doc.Admin.FileConnections),
			ListenerConnections: atoiDefault(doc.Admin.ListenerConnections),
			SourceConnections:   atoiDefault(doc.Admin.SourceConnections),
		},
	}
}

// formatFromContentType derives a display format from a MIME type,
// e.g. "audio/mpeg" -> "MPEG". Unknown or missing types fall back to
// the defined default.
func formatFromContentType(contentType string) string {
	if contentType == "" {
		return DefaultFormat
	}
	parts := strings.SplitN(contentType, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return DefaultFormat
	}
	return strings.ToUpper(parts[1])
}

func atoiDefault(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func stringDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
