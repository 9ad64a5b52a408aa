package surface

import (
	"sync"
	"time"

	"ChartFeed/internal/model"
)

// Surface is the rendering engine the pipeline feeds.
type Surface interface {
	// ReplaceSeries swaps the whole series. nil rows clear it.
	ReplaceSeries(symbol string, rows []model.OHLCVRow)
	// ApplyTick pushes one realtime row.
	ApplyTick(row model.OHLCVRow, fillGaps bool)
	SetPeriodicity(p model.Periodicity)
	// ApplyPreferences sets the display and interaction options.
	ApplyPreferences(p model.Preferences)
	Redraw()
	FitToScreen()
	Hooks() *Hooks
}

// PointerFunc receives the instant under the pointer. A zero instant means
// the pointer left the chart.
type PointerFunc func(at time.Time)

// Hooks is an ordered registry of engine callbacks. Callbacks run in
// registration order.
type Hooks struct {
	mu           sync.RWMutex
	beforeResize []func()
	afterDraw    []func()
	pointerMove  []PointerFunc
}

func (h *Hooks) OnBeforeResize(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.beforeResize = append(h.beforeResize, fn)
}

func (h *Hooks) OnAfterDraw(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.afterDraw = append(h.afterDraw, fn)
}

func (h *Hooks) OnPointerMove(fn PointerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pointerMove = append(h.pointerMove, fn)
}

// FireBeforeResize runs the resize callbacks.
func (h *Hooks) FireBeforeResize() {
	h.mu.RLock()
	fns := append([]func(){}, h.beforeResize...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// FireAfterDraw runs the draw callbacks.
func (h *Hooks) FireAfterDraw() {
	h.mu.RLock()
	fns := append([]func(){}, h.afterDraw...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// FirePointerMove runs the pointer callbacks.
func (h *Hooks) FirePointerMove(at time.Time) {
	h.mu.RLock()
	fns := append([]PointerFunc{}, h.pointerMove...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(at)
	}
}

// Len returns the number of registered callbacks per hook.
func (h *Hooks) Len() (beforeResize, afterDraw, pointerMove int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.beforeResize), len(h.afterDraw), len(h.pointerMove)
}
