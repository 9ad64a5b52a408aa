package period

import (
	"time"

	"ChartFeed/internal/model"
)

// Selectable period titles.
const (
	Title1D  = "1D"
	Title1W  = "1W"
	Title1M  = "1M"
	Title3M  = "3M"
	Title1Y  = "1Y"
	TitleAll = "ALL"
)

const day = 24 * time.Hour

// Periods is the static table of selectable granularities, shortest first.
var Periods = []model.Period{
	{Title: Title1D, Value: "1d", Period: 1, TimeUnit: model.UnitMinute, Interval: 5},
	{Title: Title1W, Value: "7d", Period: 1, TimeUnit: model.UnitHour, Interval: 1},
	{Title: Title1M, Value: "30d", Period: 1, TimeUnit: model.UnitHour, Interval: 4},
	{Title: Title3M, Value: "90d", Period: 1, TimeUnit: model.UnitDay, Interval: 1},
	{Title: Title1Y, Value: "365d", Period: 1, TimeUnit: model.UnitDay, Interval: 1},
	{Title: TitleAll, Value: "max", Period: 1, TimeUnit: model.UnitWeek, Interval: 1},
}

// DefaultTitle is the period selected when a session starts.
const DefaultTitle = Title1M

// dayCandleLookback holds the trailing horizon of the periods that get a
// day-level volume window. Titles absent here have no window.
var dayCandleLookback = map[string]time.Duration{
	Title1M:  30 * day,
	Title3M:  90 * day,
	Title1Y:  365 * day,
	TitleAll: 5 * 365 * day,
}

// Lookup returns the period with the given title.
func Lookup(title string) (model.Period, bool) {
	for _, p := range Periods {
		if p.Title == title {
			return p, true
		}
	}
	return model.Period{}, false
}

// Default returns the period selected on session start.
func Default() model.Period {
	p, _ := Lookup(DefaultTitle)
	return p
}

// All returns a copy of the catalog.
func All() []model.Period {
	out := make([]model.Period, len(Periods))
	copy(out, Periods)
	return out
}

// WindowFor returns the day-level window used to derive trailing 24h volume
// for a period ending at now. The start is pulled back one extra day so the
// earliest point in the range still sees a full trailing day.
func WindowFor(title string, now time.Time) (model.Window, bool) {
	lookback, ok := dayCandleLookback[title]
	if !ok {
		return model.Window{}, false
	}
	end := now.UTC().Truncate(day).Add(day)
	return model.Window{Start: end.Add(-lookback - day), End: end}, true
}
