/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// RoleName enumerates dashboard account roles.
type RoleName string

const (
	RoleAdmin    RoleName = "admin"
	RoleOperator RoleName = "operator"
	RoleStreamer RoleName = "streamer"
)

// User represents a dashboard operator account.
type User struct {
	ID        string   `gorm:"type:uuid;primaryKey"`
	Email     string   `gorm:"uniqueIndex"`
	Password  string   // bcrypt hash
	Role      RoleName `gorm:"type:varchar(16)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Station is a managed internet radio station.
type Station struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"uniqueIndex"`
	Description string `gorm:"type:text"`
	Genre       string `gorm:"type:varchar(64)"`
	MountPoint  string `gorm:"type:varchar(128)"`
	Website     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MediaItem is an uploaded audio asset in the station library.
type MediaItem struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	StationID  string `gorm:"type:uuid;index"`
	Title      string `gorm:"index"`
	Artist     string `gorm:"index"`
	Album      string
	Genre      string
	Duration   time.Duration
	Path       string
	StorageKey string
	SizeBytes  int64
	UploadedBy string `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Playlist groups media items in playout order.
type Playlist struct {
	ID          string         `gorm:"type:uuid;primaryKey"`
	StationID   string         `gorm:"type:uuid;index"`
	Name        string         `gorm:"index"`
	Description string         `gorm:"type:text"`
	Items       []PlaylistItem `gorm:"foreignKey:PlaylistID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlaylistItem is an ordered media reference within a playlist.
type PlaylistItem struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	PlaylistID  string `gorm:"type:uuid;index"`
	MediaItemID string `gorm:"type:uuid;index"`
	Position    int
	CreatedAt   time.Time
}

// Streamer is a DJ account allowed to connect a live source.
type Streamer struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	StationID   string `gorm:"type:uuid;index"`
	DisplayName string
	Username    string `gorm:"uniqueIndex"`
	Password    string // bcrypt hash
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequestStatus tracks the lifecycle of a listener song request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestPlayed   RequestStatus = "played"
	RequestRejected RequestStatus = "rejected"
)

// SongRequest is a listener-submitted song request.
type SongRequest struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	StationID     string `gorm:"type:uuid;index"`
	RequesterName string
	SongTitle     string
	SongArtist    string
	Message       string        `gorm:"type:text"`
	Status        RequestStatus `gorm:"type:varchar(16);index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListenerSample is one poll-derived listener count for a mount.
// Written by the status poller, read by the analytics reports.
type ListenerSample struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Mount     string `gorm:"type:varchar(128);index"`
	Listeners int
	Peak      int
	Title     string
	SampledAt time.Time `gorm:"index"`
}
