package recorder

import (
	"time"

	"ChartFeed/internal/model"
)

// ReloadEvent describes one historical reload attempt.
type ReloadEvent struct {
	SessionID string
	AssetID   string
	Currency  string
	Period    string
	Rows      int
	Empty     bool
	Stale     bool   // result discarded because a newer trigger arrived
	Err       string // empty on success
	Duration  time.Duration
}

// SeriesSnapshot is the series produced by a successful reload.
type SeriesSnapshot struct {
	SessionID string
	AssetID   string
	Currency  string
	Period    string
	Rows      []model.OHLCVRow
}

// Recorder persists reload history for later analysis.
type Recorder interface {
	RecordReload(evt *ReloadEvent) error
	RecordSnapshot(snap *SeriesSnapshot) error
	Close() error
}
