/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package analytics builds listener trend reports from the sample
// history the status poller writes.
package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

const defaultRetention = 30 * 24 * time.Hour

// Point is one moment on a listener trend line.
type Point struct {
	SampledAt time.Time `json:"sampled_at"`
	Listeners int       `json:"listeners"`
}

// ListenerReport summarizes listener history for one mount over a
// window.
type ListenerReport struct {
	Mount         string  `json:"mount"`
	WindowHours   int     `json:"window_hours"`
	Samples       []Point `json:"samples"`
	AvgListeners  float64 `json:"avg_listeners"`
	PeakListeners int     `json:"peak_listeners"`
}

// Service answers listener history queries.
type Service struct {
	db        *gorm.DB
	logger    zerolog.Logger
	retention time.Duration
}

// NewService creates a listener analytics service.
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:        db,
		logger:    logger.With().Str("component", "analytics").Logger(),
		retention: defaultRetention,
	}
}

// Report builds a listener trend report for one mount over the last
// windowHours hours. Long windows are downsampled to at most
// maxPoints samples.
func (s *Service) Report(ctx context.Context, mount string, windowHours, maxPoints int) (*ListenerReport, error) {
	if windowHours <= 0 {
		windowHours = 24
	}
	if maxPoints <= 0 {
		maxPoints = 288
	}

	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)

	var samples []models.ListenerSample
	err := s.db.WithContext(ctx).
		Where("mount = ? AND sampled_at >= ?", mount, since).
		Order("sampled_at asc").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}

	report := &ListenerReport{
		Mount:       mount,
		WindowHours: windowHours,
		Samples:     []Point{},
	}

	var sum int
	for _, sample := range samples {
		if sample.Listeners > report.PeakListeners {
			report.PeakListeners = sample.Listeners
		}
		sum += sample.Listeners
	}
	if len(samples) > 0 {
		report.AvgListeners = float64(sum) / float64(len(samples))
	}

	report.Samples = downsample(samples, maxPoints)
	return report, nil
}

// Mounts lists the mounts that have sample history, newest first.
func (s *Service) Mounts(ctx context.Context) ([]string, error) {
	var mounts []string
	err := s.db.WithContext(ctx).
		Model(&models.ListenerSample{}).
		Distinct("mount").
		Order("mount asc").
		Pluck("mount", &mounts).Error
	if err != nil {
		return nil, err
	}
	return mounts, nil
}

// Prune drops samples older than the retention window.
func (s *Service) Prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)
	result := s.db.WithContext(ctx).
		Where("sampled_at < ?", cutoff).
		Delete(&models.ListenerSample{})
	if result.Error != nil {
		s.logger.Warn().Err(result.Error).Msg("failed to prune old listener samples")
		return
	}
	if result.RowsAffected > 0 {
		s.logger.Debug().Int64("rows", result.RowsAffected).Msg("pruned old listener samples")
	}
}

// downsample reduces a sample series to at most maxPoints evenly
// spaced points, always keeping the newest sample.
func downsample(samples []models.ListenerSample, maxPoints int) []Point {
	points := make([]Point, 0, min(len(samples), maxPoints))
	if len(samples) == 0 {
		return points
	}

	if len(samples) <= maxPoints {
		for _, s := range samples {
			points = append(points, Point{SampledAt: s.SampledAt, Listeners: s.Listeners})
		}
		return points
	}

	// A single requested point carries the newest sample; the stride
	// below needs at least two output slots.
	if maxPoints <= 1 {
		last := samples[len(samples)-1]
		return append(points, Point{SampledAt: last.SampledAt, Listeners: last.Listeners})
	}

	stride := float64(len(samples)-1) / float64(maxPoints-1)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * stride)
		s := samples[idx]
		points = append(points, Point{SampledAt: s.SampledAt, Listeners: s.Listeners})
	}
	last := samples[len(samples)-1]
	points[len(points)-1] = Point{SampledAt: last.SampledAt, Listeners: last.Listeners}
	return points
}
