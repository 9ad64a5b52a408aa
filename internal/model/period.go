package model

import "time"

// Time units accepted in Period.TimeUnit.
const (
	UnitMinute = "minute"
	UnitHour   = "hour"
	UnitDay    = "day"
	UnitWeek   = "week"
)

// Periodicity is what the chart surface needs to lay out buckets.
type Periodicity struct {
	Period   int
	TimeUnit string
	Interval int
}

// Period is one selectable chart granularity.
type Period struct {
	Title    string `yaml:"title"`
	Value    string `yaml:"value"`
	Period   int    `yaml:"period"`
	TimeUnit string `yaml:"time_unit"`
	Interval int    `yaml:"interval"`
}

// Periodicity returns the layout settings of p.
func (p Period) Periodicity() Periodicity {
	return Periodicity{Period: p.Period, TimeUnit: p.TimeUnit, Interval: p.Interval}
}

// BucketWidth is the duration of one bucket, or 0 if the unit is unknown.
func (p Period) BucketWidth() time.Duration {
	unit := UnitDuration(p.TimeUnit)
	if unit == 0 || p.Interval <= 0 {
		return 0
	}
	n := p.Period
	if n <= 0 {
		n = 1
	}
	return time.Duration(n*p.Interval) * unit
}

// UnitDuration maps a time unit name to its duration.
func UnitDuration(unit string) time.Duration {
	switch unit {
	case UnitMinute:
		return time.Minute
	case UnitHour:
		return time.Hour
	case UnitDay:
		return 24 * time.Hour
	case UnitWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Window is a half-open [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}
