package collector

import (
	"context"
	"time"

	"ChartFeed/internal/model"
)

// HistoricalFeed returns bucketed price samples for a period.
type HistoricalFeed interface {
	FetchCandles(ctx context.Context, periodValue, assetID string) ([]model.RawPoint, error)
	Name() string
}

// DayLevelFeed returns day-bucketed volume samples in [start, end).
type DayLevelFeed interface {
	FetchDayCandles(ctx context.Context, start, end time.Time, assetID string) ([]model.RawDayVolume, error)
}

// Feed is a source serving both historical and day-level data.
type Feed interface {
	HistoricalFeed
	DayLevelFeed
}
