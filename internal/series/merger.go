package series

import (
	"time"

	"ChartFeed/internal/calculator"
	"ChartFeed/internal/model"
)

// MergeOutcome describes what Merge did with a tick.
type MergeOutcome int

const (
	MergeAppend MergeOutcome = iota
	MergeOverwrite
	MergeOutOfOrder
	MergeMalformed
	MergeTooFar
	// MergeDeferred marks a tick the caller held back or discarded unmerged.
	MergeDeferred
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeAppend:
		return "append"
	case MergeOverwrite:
		return "overwrite"
	case MergeOutOfOrder:
		return "out_of_order"
	case MergeMalformed:
		return "malformed"
	case MergeTooFar:
		return "too_far"
	case MergeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// MergeResult reports the effect of one Merge call.
type MergeResult struct {
	Outcome MergeOutcome
	Row     model.OHLCVRow // the row written, zero when dropped
	Filled  int            // gap rows inserted before Row
}

// Applied reports whether the tick changed the series.
func (r MergeResult) Applied() bool {
	return r.Outcome == MergeAppend || r.Outcome == MergeOverwrite
}

// MaxGapFill is the largest number of filler rows one tick may add. A tick
// further ahead is dropped as MergeTooFar.
const MaxGapFill = 10000

// Merger folds realtime ticks into a row sequence.
// Width is the bucket width of the active period; zero disables bucketing
// and gap filling.
type Merger struct {
	Width time.Duration
}

// NewMerger creates a Merger for the given period.
func NewMerger(p model.Period) Merger {
	return Merger{Width: p.BucketWidth()}
}

// Merge applies tick to rows and returns the updated slice. It never removes
// or reorders existing rows.
func (m Merger) Merge(rows []model.OHLCVRow, tick model.Tick, asset model.Asset, display model.Currency) ([]model.OHLCVRow, MergeResult) {
	at, ok := tick.Instant()
	if !ok {
		return rows, MergeResult{Outcome: MergeMalformed}
	}
	price, ok := tickPrice(tick, asset, display)
	if !ok {
		return rows, MergeResult{Outcome: MergeMalformed}
	}

	build := func(instant time.Time) model.OHLCVRow {
		var pb, pu float64
		if tick.PriceBTC != nil {
			pb = *tick.PriceBTC
		}
		if tick.PriceUSD != nil {
			pu = *tick.PriceUSD
		}
		return model.NewRow(instant, price, pb, pu,
			nonNegative(calculator.Convert(tick.Volume, asset, display)),
			nonNegative(asset.Volume24h))
	}

	if len(rows) == 0 {
		row := build(at)
		return append(rows, row), MergeResult{Outcome: MergeAppend, Row: row}
	}

	last := rows[len(rows)-1]
	if at.Before(last.Instant) {
		return rows, MergeResult{Outcome: MergeOutOfOrder}
	}
	if at.Equal(last.Instant) {
		row := build(at)
		rows[len(rows)-1] = row
		return rows, MergeResult{Outcome: MergeOverwrite, Row: row}
	}

	filled := m.gaps(last.Instant, at)
	if filled > MaxGapFill {
		return rows, MergeResult{Outcome: MergeTooFar}
	}
	for k := 1; k <= filled; k++ {
		rows = append(rows, gapRow(last, last.Instant.Add(time.Duration(k)*m.Width)))
	}
	row := build(at)
	rows = append(rows, row)
	return rows, MergeResult{Outcome: MergeAppend, Row: row, Filled: filled}
}

// gaps counts the bucket boundaries last+k*Width strictly between last
// and at.
func (m Merger) gaps(last, at time.Time) int {
	if m.Width <= 0 {
		return 0
	}
	d := at.Sub(last)
	n := d / m.Width
	if d%m.Width == 0 {
		n--
	}
	if n > MaxGapFill {
		return MaxGapFill + 1
	}
	return int(n)
}

// gapRow carries prev's price into an empty bucket.
func gapRow(prev model.OHLCVRow, at time.Time) model.OHLCVRow {
	return model.NewRow(at, prev.Close, prev.PriceBTC, prev.PriceUSD, 0, prev.Volume24)
}

// tickPrice converts the tick price into the display currency, falling back
// to the USD quote when the base-currency price is absent.
func tickPrice(tick model.Tick, asset model.Asset, display model.Currency) (float64, bool) {
	var price float64
	switch {
	case tick.PriceBTC != nil:
		price = calculator.Convert(*tick.PriceBTC, asset, display)
	case tick.PriceUSD != nil:
		price = calculator.ConvertUSD(*tick.PriceUSD, asset, display)
	default:
		return 0, false
	}
	return price, calculator.Finite(price)
}
