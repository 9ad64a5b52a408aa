package collector

import (
	"context"
	"math"
	"sync"
	"time"

	"ChartFeed/internal/model"
)

// MockFeed returns controllable fixed data for development and testing.
type MockFeed struct {
	Price  float64
	Step   time.Duration
	Count  int
	Now    func() time.Time
	Points []model.RawPoint
	Days   []model.RawDayVolume
	Err    error
	DayErr error
	// Gate, when set, blocks FetchCandles until it receives or is closed.
	Gate chan struct{}

	mu        sync.Mutex
	calls     int
	dayCalls  int
	lastValue string
}

func (m *MockFeed) Name() string { return "mock" }

func (m *MockFeed) FetchCandles(ctx context.Context, periodValue, _ string) ([]model.RawPoint, error) {
	m.mu.Lock()
	m.calls++
	m.lastValue = periodValue
	m.mu.Unlock()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Points != nil {
		return append([]model.RawPoint(nil), m.Points...), nil
	}
	return generateMockPoints(m.Price, m.count(), m.step(), m.now()), nil
}

func (m *MockFeed) FetchDayCandles(_ context.Context, start, end time.Time, _ string) ([]model.RawDayVolume, error) {
	m.mu.Lock()
	m.dayCalls++
	m.mu.Unlock()

	if m.DayErr != nil {
		return nil, m.DayErr
	}
	if m.Days != nil {
		return append([]model.RawDayVolume(nil), m.Days...), nil
	}
	var days []model.RawDayVolume
	for t := start.UTC().Truncate(24 * time.Hour); t.Before(end); t = t.Add(24 * time.Hour) {
		days = append(days, model.RawDayVolume{Time: t, Volume: 1000000})
	}
	return days, nil
}

// Calls reports how many historical and day-level fetches were made.
func (m *MockFeed) Calls() (candles, days int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, m.dayCalls
}

// LastPeriodValue is the period value of the latest historical fetch.
func (m *MockFeed) LastPeriodValue() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastValue
}

func (m *MockFeed) count() int {
	if m.Count > 0 {
		return m.Count
	}
	return 100
}

func (m *MockFeed) step() time.Duration {
	if m.Step > 0 {
		return m.Step
	}
	return time.Hour
}

func (m *MockFeed) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func generateMockPoints(basePrice float64, count int, step time.Duration, now time.Time) []model.RawPoint {
	end := now.UTC().Truncate(step)
	points := make([]model.RawPoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.01*math.Sin(float64(i)/5))
		points[i] = model.RawPoint{
			Time:     end.Add(-time.Duration(count-1-i) * step),
			PriceBTC: p,
			PriceUSD: p * 60000,
			Volume:   1000,
		}
	}
	return points
}
