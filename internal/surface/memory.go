package surface

import (
	"sync"
	"time"

	"ChartFeed/internal/model"
)

// Memory is a headless Surface that keeps what it was given. It backs the
// command-line runner and tests.
type Memory struct {
	mu          sync.Mutex
	hooks       Hooks
	symbol      string
	rows        []model.OHLCVRow
	periodicity model.Periodicity
	prefs       model.Preferences
	ticks       []model.OHLCVRow
	replaces    int
	draws       int
	fits        int
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) ReplaceSeries(symbol string, rows []model.OHLCVRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbol = symbol
	m.replaces++
	if rows == nil {
		m.rows = nil
		return
	}
	m.rows = append(make([]model.OHLCVRow, 0, len(rows)), rows...)
}

// ApplyTick stores the row, overwriting the last one when it shares its
// instant. Gap filling is left to the session's series.
func (m *Memory) ApplyTick(row model.OHLCVRow, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, row)
	if n := len(m.rows); n > 0 && m.rows[n-1].Instant.Equal(row.Instant) {
		m.rows[n-1] = row
		return
	}
	m.rows = append(m.rows, row)
}

func (m *Memory) SetPeriodicity(p model.Periodicity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodicity = p
}

func (m *Memory) ApplyPreferences(p model.Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
}

func (m *Memory) Preferences() model.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

func (m *Memory) Redraw() {
	m.mu.Lock()
	m.draws++
	m.mu.Unlock()
	m.hooks.FireAfterDraw()
}

func (m *Memory) FitToScreen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fits++
}

func (m *Memory) Hooks() *Hooks { return &m.hooks }

// Resize simulates a container resize followed by a redraw.
func (m *Memory) Resize() {
	m.hooks.FireBeforeResize()
	m.Redraw()
}

// PointerAt simulates the crosshair moving to at.
func (m *Memory) PointerAt(at time.Time) {
	m.hooks.FirePointerMove(at)
}

// PointerOut simulates the pointer leaving the chart.
func (m *Memory) PointerOut() {
	m.hooks.FirePointerMove(time.Time{})
}

// Rows returns a copy of the displayed series.
func (m *Memory) Rows() []model.OHLCVRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.OHLCVRow(nil), m.rows...)
}

func (m *Memory) Symbol() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.symbol
}

func (m *Memory) Periodicity() model.Periodicity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.periodicity
}

// Counts reports how many replaces, draws and fits happened.
func (m *Memory) Counts() (replaces, draws, fits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces, m.draws, m.fits
}

// Ticks returns every row passed to ApplyTick.
func (m *Memory) Ticks() []model.OHLCVRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.OHLCVRow(nil), m.ticks...)
}
