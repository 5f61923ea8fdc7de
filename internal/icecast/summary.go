/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package icecast

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrStreamOffline indicates the public status document could not be
	// fetched at all.
	ErrStreamOffline = errors.New("stream is offline")

	// ErrStreamNotFound indicates the server answered but the configured
	// mount is not in its source list. Distinct from offline: we found
	// the server, just not this mount.
	ErrStreamNotFound = errors.New("stream not found")
)

// CurrentSong is a split "Artist - Title" metadata string.
type CurrentSong struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// StreamSummary is the compact "is the stream up" shape used by the
// public player, derived from the unauthenticated JSON status document.
type StreamSummary struct {
	Online      bool         `json:"online"`
	Listeners   int          `json:"listeners"`
	CurrentSong *CurrentSong `json:"currentSong"`
	Bitrate     int          `json:"bitrate"`
	Format      string       `json:"format"`
	SampleRate  int          `json:"sampleRate"`
}

type statusJSONDoc struct {
	Icestats struct {
		Source json.RawMessage `json:"source"`
	} `json:"icestats"`
}

type statusJSONSource struct {
	Mount      string `json:"mount"`
	Listeners  int    `json:"listeners"`
	Title      string `json:"title"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
	SampleRate int    `json:"samplerate"`
}

// FetchStreamSummary checks the configured mount via the public
// status-json.xsl document. No authentication is involved; this is the
// listener-facing trust level.
func (c *Client) FetchStreamSummary(ctx context.Context) (*StreamSummary, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.cfg.BaseURL() + "/status-json.xsl")
	if err != nil || !resp.IsSuccess() {
		return nil, ErrStreamOffline
	}

	var doc statusJSONDoc
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, ErrStreamOffline
	}

	source, ok := findSource(doc.Icestats.Source, c.cfg.MountPoint)
	if !ok {
		return nil, ErrStreamNotFound
	}

	return &StreamSummary{
		Online:      true,
		Listeners:   source.Listeners,
		CurrentSong: splitSongTitle(source.Title),
		Bitrate:     source.Bitrate,
		Format:      source.Format,
		SampleRate:  source.SampleRate,
	}, nil
}

// findSource locates the source with an exactly matching mount path.
// Icecast emits "source" as a bare object when a single mount is live
// and as an array otherwise, so both encodings are accepted.
func findSource(raw json.RawMessage, mount string) (statusJSONSource, bool) {
	if len(raw) == 0 {
		return statusJSONSource{}, false
	}

	var list []statusJSONSource
	if err := json.Unmarshal(raw, &list); err != nil {
		var single statusJSONSource
		if err := json.Unmarshal(raw, &single); err != nil {
			return statusJSONSource{}, false
		}
		list = []statusJSONSource{single}
	}

	for _, src := range list {
		if src.Mount == mount {
			return src, true
		}
	}
	return statusJSONSource{}, false
}

// splitSongTitle splits a combined "Artist - Title" string on the first
// " - " separator. Without a separator the whole string is the title
// and the artist falls back to "Unknown Artist". An empty title means
// no song metadata at all.
func splitSongTitle(title string) *CurrentSong {
	if title == "" {
		return nil
	}
	artist, song, found := strings.Cut(title, " - ")
	if !found {
		return &CurrentSong{Title: title, Artist: "Unknown Artist"}
	}
	return &CurrentSong{Title: song, Artist: artist}
}
