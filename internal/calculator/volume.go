package calculator

import (
	"time"

	"ChartFeed/internal/model"
)

// TrailingWindow is the span summed by Volume24.
const TrailingWindow = 24 * time.Hour

// Volume24 sums the day volumes whose bucket falls in (at-24h, at].
func Volume24(days []model.RawDayVolume, at time.Time) float64 {
	from := at.Add(-TrailingWindow)
	sum := 0.0
	for _, d := range days {
		if d.Time.After(from) && !d.Time.After(at) && Finite(d.Volume) {
			sum += d.Volume
		}
	}
	return sum
}
