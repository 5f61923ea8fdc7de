/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package media stores uploaded audio files on the local filesystem or
// in S3-compatible object storage.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/treasureakintoye/ambradio-dashboard/internal/config"
)

// Storage interface abstracts file storage operations.
type Storage interface {
	Store(ctx context.Context, key string, file io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
	CheckAccess(ctx context.Context) error
}

// Service manages media file storage.
type Service struct {
	storage Storage
	logger  zerolog.Logger
}

// NewService creates a media service. S3 is used when a bucket is
// configured, otherwise files land under the media root directory.
func NewService(cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	var storage Storage

	if cfg.S3Bucket != "" {
		s3cfg := S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			UsePathStyle:    cfg.S3UsePathStyle,
		}
		if s3cfg.AccessKeyID == "" || s3cfg.SecretAccessKey == "" {
			logger.Warn().Msg("S3 credentials not configured, relying on ambient AWS credentials")
		}

		s3Storage, err := NewS3Storage(context.Background(), s3cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize S3 storage: %w", err)
		}
		storage = s3Storage
	} else {
		storage = NewFilesystemStorage(cfg.MediaRoot, logger)
	}

	return &Service{
		storage: storage,
		logger:  logger.With().Str("component", "media").Logger(),
	}, nil
}

// Store saves an uploaded file and returns its storage key.
func (s *Service) Store(ctx context.Context, mediaID, filename string, file io.Reader) (string, error) {
	key := buildMediaKey(mediaID, extensionOf(filename))
	if err := s.storage.Store(ctx, key, file); err != nil {
		s.logger.Error().Err(err).Str("media_id", mediaID).Msg("media store failed")
		return "", fmt.Errorf("store media: %w", err)
	}

	s.logger.Info().Str("media_id", mediaID).Str("key", key).Msg("media stored")
	return key, nil
}

// Delete removes a media file from storage.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("media delete failed")
		return fmt.Errorf("delete media: %w", err)
	}

	s.logger.Info().Str("key", key).Msg("media deleted")
	return nil
}

// URL returns the accessible URL for a stored media file.
func (s *Service) URL(key string) string {
	return s.storage.URL(key)
}

// CheckStorageAccess verifies that the storage backend is reachable.
func (s *Service) CheckStorageAccess() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.storage.CheckAccess(ctx)
}

// buildMediaKey constructs a fanned-out storage key so a large library
// does not pile every file into one directory.
// Structure: media/id[0:2]/id[2:4]/id.ext
func buildMediaKey(mediaID, extension string) string {
	if len(mediaID) < 4 {
		return filepath.ToSlash(filepath.Join("media", mediaID+extension))
	}
	return filepath.ToSlash(filepath.Join("media", mediaID[0:2], mediaID[2:4], mediaID+extension))
}

// extensionOf returns a safe lowercase extension for the uploaded
// filename, defaulting to .audio when there is none.
func extensionOf(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" || ext == "." {
		return ".audio"
	}
	return ext
}
