/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.Station{},
		&models.MediaItem{},
		&models.Playlist{},
		&models.PlaylistItem{},
		&models.Streamer{},
		&models.SongRequest{},
		&models.ListenerSample{},
	)
}
