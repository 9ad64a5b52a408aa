package collector

import (
	"context"
	"testing"
	"time"
)

func TestMockFeed_Generates(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	m := &MockFeed{Price: 2, Count: 10, Step: time.Hour, Now: func() time.Time { return now }}
	points, err := m.FetchCandles(context.Background(), "7d", "eth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 10 {
		t.Fatalf("expected 10 points, got %d", len(points))
	}
	if !points[9].Time.Equal(now.Truncate(time.Hour)) {
		t.Errorf("last point at %v, want %v", points[9].Time, now.Truncate(time.Hour))
	}
	if m.LastPeriodValue() != "7d" {
		t.Errorf("last period value = %q", m.LastPeriodValue())
	}

	days, err := m.FetchDayCandles(context.Background(), now.Add(-72*time.Hour), now, "eth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 4 {
		t.Errorf("expected 4 day buckets, got %d", len(days))
	}
}
