package analytics

import (
	"testing"
	"time"

	"github.com/treasureakintoye/ambradio-dashboard/internal/models"
)

func makeSamples(n int) []models.ListenerSample {
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.ListenerSample, n)
	for i := range samples {
		samples[i] = models.ListenerSample{
			Mount:     "/stream",
			Listeners: i,
			SampledAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return samples
}

func TestDownsamplePassthroughWhenSmall(t *testing.T) {
	points := downsample(makeSamples(10), 288)
	if len(points) != 10 {
		t.Fatalf("expected 10 points, got %d", len(points))
	}
	for i, p := range points {
		if p.Listeners != i {
			t.Errorf("point %d has listeners %d", i, p.Listeners)
		}
	}
}

func TestDownsampleReducesAndKeepsEndpoints(t *testing.T) {
	samples := makeSamples(1000)
	points := downsample(samples, 100)

	if len(points) != 100 {
		t.Fatalf("expected 100 points, got %d", len(points))
	}
	if points[0].Listeners != 0 {
		t.Errorf("expected first sample kept, got %d", points[0].Listeners)
	}
	if got := points[len(points)-1].Listeners; got != 999 {
		t.Errorf("expected newest sample kept, got %d", got)
	}
	for i := 1; i < len(points); i++ {
		if !points[i].SampledAt.After(points[i-1].SampledAt) {
			t.Fatalf("points not strictly ordered at index %d", i)
		}
	}
}

func TestDownsampleSinglePoint(t *testing.T) {
	points := downsample(makeSamples(3), 1)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Listeners != 2 {
		t.Errorf("expected newest sample, got listeners %d", points[0].Listeners)
	}
}

func TestDownsampleEmpty(t *testing.T) {
	points := downsample(nil, 100)
	if points == nil || len(points) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", points)
	}
}
