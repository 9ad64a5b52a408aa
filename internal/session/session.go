package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ChartFeed/internal/collector"
	"ChartFeed/internal/model"
	"ChartFeed/internal/period"
	"ChartFeed/internal/preset"
	"ChartFeed/internal/realtime"
	"ChartFeed/internal/recorder"
	"ChartFeed/internal/series"
	"ChartFeed/internal/surface"
)

// State is the loading state of a session.
type State int

const (
	Idle State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// maxPendingTicks bounds the ticks kept for replay while a reload is in flight.
const maxPendingTicks = 1024

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Options configure a new Session.
type Options struct {
	Asset           model.Asset
	Currency        model.Currency
	Period          model.Period
	Preset          string
	DisableRealtime bool
	Now             func() time.Time
	// OnReady is called after every applied reload with a copy of the series.
	OnReady func(model.SeriesState)
}

// Deps are the collaborators a Session drives.
type Deps struct {
	Historical collector.HistoricalFeed
	DayLevel   collector.DayLevelFeed
	Realtime   realtime.Feed
	Surface    surface.Surface
	Recorder   recorder.Recorder
}

// selection is what a reload is built from.
type selection struct {
	asset    model.Asset
	currency model.Currency
	period   model.Period
}

// Session owns one chart's series. It keeps at most one historical fetch in
// flight and discards results that a newer trigger has superseded.
type Session struct {
	ID string

	historical collector.HistoricalFeed
	dayLevel   collector.DayLevelFeed
	realtime   realtime.Feed
	surface    surface.Surface
	recorder   recorder.Recorder
	now        func() time.Time
	onReady    func(model.SeriesState)

	mu         sync.Mutex
	selected   selection
	applied    selection
	bundle     preset.Bundle
	series     model.SeriesState
	state      State
	generation uint64
	overlay    *model.Overlay
	merger     series.Merger
	pending    []model.Tick
	subscribed bool
	closed     bool

	// hookMu guards state touched from surface callbacks, which may run
	// while mu is held.
	hookMu       sync.Mutex
	maintainSpan bool
	needFit      bool
	hoverAt      time.Time
}

// New creates an idle session. Start must be called before use.
func New(opts Options, deps Deps) (*Session, error) {
	if deps.Historical == nil || deps.Surface == nil {
		return nil, errors.New("historical feed and surface are required")
	}
	if opts.Asset.ID == "" {
		return nil, errors.New("asset id is required")
	}
	if !opts.Currency.Valid() {
		return nil, fmt.Errorf("unsupported currency %q", opts.Currency)
	}
	if opts.Period.Title == "" {
		opts.Period = period.Default()
	}
	tag := opts.Preset
	if tag == "" {
		tag = preset.DefaultTag
	}
	bundle, err := preset.Lookup(tag)
	if err != nil {
		return nil, err
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if opts.DisableRealtime {
		deps.Realtime = nil
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	sel := selection{asset: opts.Asset, currency: opts.Currency, period: opts.Period}
	s := &Session{
		ID:           uuid.NewString(),
		historical:   deps.Historical,
		dayLevel:     deps.DayLevel,
		realtime:     deps.Realtime,
		surface:      deps.Surface,
		recorder:     deps.Recorder,
		now:          now,
		onReady:      opts.OnReady,
		selected:     sel,
		applied:      sel,
		bundle:       bundle,
		series:       model.SeriesState{Rows: []model.OHLCVRow{}, Empty: true},
		merger:       series.NewMerger(opts.Period),
		maintainSpan: bundle.Preferences.MaintainSpan,
	}
	return s, nil
}

// Start registers surface hooks, subscribes to realtime ticks and runs the
// first reload.
func (s *Session) Start(ctx context.Context) error {
	hooks := s.surface.Hooks()
	hooks.OnBeforeResize(s.beforeResize)
	hooks.OnAfterDraw(s.afterDraw)
	hooks.OnPointerMove(s.pointerMove)

	s.mu.Lock()
	s.surface.SetPeriodicity(s.selected.period.Periodicity())
	s.surface.ApplyPreferences(s.bundle.Preferences)
	assetID := s.selected.asset.ID
	s.mu.Unlock()

	if err := s.subscribe(ctx, assetID); err != nil {
		log.Printf("[WARN] session %s: realtime subscribe: %v", s.ID, err)
	}
	log.Printf("[INFO] session %s started for %s", s.ID, assetID)
	return s.Reload(ctx)
}

// Close releases the realtime subscription. The series is discarded.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.unsubscribe()
	log.Printf("[INFO] session %s closed", s.ID)
	return err
}

// Reload triggers a historical reload for the current selection.
func (s *Session) Reload(ctx context.Context) error {
	return s.trigger(ctx, nil)
}

// SetCurrency switches the display currency and reloads.
func (s *Session) SetCurrency(ctx context.Context, c model.Currency) error {
	if !c.Valid() {
		return fmt.Errorf("unsupported currency %q", c)
	}
	return s.trigger(ctx, func() { s.selected.currency = c })
}

// SetAsset switches the charted asset, moves the realtime subscription and
// reloads. Ticks of the new asset are held back until its series loads.
func (s *Session) SetAsset(ctx context.Context, a model.Asset) error {
	if a.ID == "" {
		return errors.New("asset id is required")
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	changed := a.ID != s.selected.asset.ID
	s.selected.asset = a
	if changed {
		s.pending = s.pending[:0]
	}
	s.mu.Unlock()

	if changed {
		s.resubscribe(ctx, a.ID)
	}
	return s.trigger(ctx, nil)
}

// SetPeriod switches the granularity and reloads. Periods outside the
// catalog are accepted and simply get no day-level window.
func (s *Session) SetPeriod(ctx context.Context, p model.Period) error {
	return s.trigger(ctx, func() {
		s.selected.period = p
		s.surface.SetPeriodicity(p.Periodicity())
	})
}

// SetPeriodTitle switches to a catalog period by title.
func (s *Session) SetPeriodTitle(ctx context.Context, title string) error {
	p, ok := period.Lookup(title)
	if !ok {
		return fmt.Errorf("unknown period %q", title)
	}
	return s.SetPeriod(ctx, p)
}

// SetPreset applies another preset's preferences and reloads.
func (s *Session) SetPreset(ctx context.Context, tag string) error {
	b, err := preset.Lookup(tag)
	if err != nil {
		return err
	}
	s.hookMu.Lock()
	s.maintainSpan = b.Preferences.MaintainSpan
	s.hookMu.Unlock()
	return s.trigger(ctx, func() {
		s.bundle = b
		s.surface.ApplyPreferences(b.Preferences)
	})
}

// UpdateAsset refreshes the asset's quoted figures (rates, 24h volume)
// without a reload. Rows already built keep their converted values.
func (s *Session) UpdateAsset(a model.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID != s.selected.asset.ID {
		return
	}
	s.selected.asset = a
	if a.ID == s.applied.asset.ID {
		s.applied.asset = a
	}
}

// trigger applies mutate and starts a reload unless one is in flight. A
// dropped trigger still bumps the generation, so the in-flight result is
// discarded and refetched for the latest selection.
func (s *Session) trigger(ctx context.Context, mutate func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if mutate != nil {
		mutate()
	}
	s.generation++
	if s.state == Loading {
		s.mu.Unlock()
		log.Printf("[INFO] session %s: reload in flight, trigger deferred", s.ID)
		return nil
	}
	s.beginLoadLocked()
	gen, sel := s.generation, s.selected
	s.mu.Unlock()

	return s.run(ctx, gen, sel)
}

func (s *Session) beginLoadLocked() {
	s.overlay = nil
	s.state = Loading
	s.series.Loading = true
	s.surface.ReplaceSeries(s.selected.asset.TickerSymbol, nil)
	s.surface.FitToScreen()
}

// run fetches until a result matches the latest generation.
func (s *Session) run(ctx context.Context, gen uint64, sel selection) error {
	for {
		started := s.now()
		rows, err := s.fetch(ctx, sel)
		elapsed := s.now().Sub(started)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		if gen != s.generation {
			s.mu.Unlock()
			s.record(&recorder.ReloadEvent{
				SessionID: s.ID, AssetID: sel.asset.ID, Currency: string(sel.currency),
				Period: sel.period.Title, Rows: len(rows), Stale: true, Duration: elapsed,
			}, nil)
			log.Printf("[INFO] session %s: discarding stale reload %d", s.ID, gen)

			s.mu.Lock()
			gen, sel = s.generation, s.selected
			s.mu.Unlock()
			continue
		}

		if err != nil {
			revert := s.selected.asset.ID != s.applied.asset.ID
			if revert {
				s.selected.asset = s.applied.asset
			}
			s.pending = s.pending[:0]
			s.state = Ready
			s.series.Loading = false
			s.surface.SetPeriodicity(s.applied.period.Periodicity())
			s.surface.ReplaceSeries(s.applied.asset.TickerSymbol, s.rowsCopyLocked())
			s.surface.Redraw()
			restore := s.applied.asset.ID
			s.mu.Unlock()

			log.Printf("[ERROR] session %s reload: %v", s.ID, err)
			if revert {
				log.Printf("[WARN] session %s: staying on %s", s.ID, restore)
				s.resubscribe(ctx, restore)
			}
			s.record(&recorder.ReloadEvent{
				SessionID: s.ID, AssetID: sel.asset.ID, Currency: string(sel.currency),
				Period: sel.period.Title, Err: err.Error(), Duration: elapsed,
			}, nil)
			return fmt.Errorf("reload: %w", err)
		}

		s.applyLocked(sel, rows)
		state := s.series.Clone()
		s.mu.Unlock()

		s.record(&recorder.ReloadEvent{
			SessionID: s.ID, AssetID: sel.asset.ID, Currency: string(sel.currency),
			Period: sel.period.Title, Rows: len(rows), Empty: len(rows) == 0, Duration: elapsed,
		}, &recorder.SeriesSnapshot{
			SessionID: s.ID, AssetID: sel.asset.ID, Currency: string(sel.currency),
			Period: sel.period.Title, Rows: state.Rows,
		})
		if s.onReady != nil {
			s.onReady(state)
		}
		return nil
	}
}

func (s *Session) fetch(ctx context.Context, sel selection) ([]model.OHLCVRow, error) {
	points, err := s.historical.FetchCandles(ctx, sel.period.Value, sel.asset.ID)
	if err != nil {
		return nil, err
	}
	var days []model.RawDayVolume
	if w, ok := period.WindowFor(sel.period.Title, s.now()); ok && s.dayLevel != nil {
		days, err = s.dayLevel.FetchDayCandles(ctx, w.Start, w.End, sel.asset.ID)
		if err != nil {
			return nil, err
		}
	}
	return series.Build(points, days, sel.asset, sel.currency), nil
}

// applyLocked installs a fresh series and replays ticks that arrived while
// loading.
func (s *Session) applyLocked(sel selection, rows []model.OHLCVRow) {
	s.applied = sel
	s.merger = series.NewMerger(sel.period)
	s.surface.SetPeriodicity(sel.period.Periodicity())
	s.series = model.SeriesState{Rows: rows, Empty: len(rows) == 0}

	for _, t := range s.pending {
		s.series.Rows, _ = s.merger.Merge(s.series.Rows, t, sel.asset, sel.currency)
	}
	s.pending = s.pending[:0]
	if len(s.series.Rows) > 0 {
		s.series.Empty = false
	}

	s.state = Ready
	if s.bundle.NewOverlay != nil {
		s.overlay = s.bundle.NewOverlay(s.series.Rows)
	}
	s.surface.ReplaceSeries(sel.asset.TickerSymbol, s.rowsCopyLocked())
	s.surface.FitToScreen()
	s.surface.Redraw()
}

// ApplyTick merges one realtime tick of the selected asset. Ticks are
// applied in every state; the redraw is skipped while a reload is in flight.
func (s *Session) ApplyTick(t model.Tick) series.MergeResult {
	return s.applyTick("", t)
}

// applyTick merges a tick of assetID, or of the selected asset when empty.
// Ticks of an asset whose series is still loading are kept for replay only;
// ticks of any other asset are discarded.
func (s *Session) applyTick(assetID string, t model.Tick) series.MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return series.MergeResult{Outcome: series.MergeMalformed}
	}
	if assetID == "" {
		assetID = s.selected.asset.ID
	}
	if assetID != s.applied.asset.ID {
		if assetID == s.selected.asset.ID && len(s.pending) < maxPendingTicks {
			s.pending = append(s.pending, t)
		}
		return series.MergeResult{Outcome: series.MergeDeferred}
	}

	rows, res := s.merger.Merge(s.series.Rows, t, s.applied.asset, s.applied.currency)
	s.series.Rows = rows
	if s.state == Loading && len(s.pending) < maxPendingTicks {
		s.pending = append(s.pending, t)
	}
	if !res.Applied() {
		return res
	}
	s.series.Empty = false

	last := len(rows) - 1
	for _, filler := range rows[last-res.Filled : last] {
		s.surface.ApplyTick(filler, false)
	}
	s.surface.ApplyTick(res.Row, true)
	if s.state != Loading {
		s.surface.Redraw()
	}
	return res
}

// State returns the loading state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the series.
func (s *Session) Snapshot() model.SeriesState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series.Clone()
}

// Overlay returns the derived study of the current series, if any.
func (s *Session) Overlay() *model.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Selection returns the selected asset, currency and period.
func (s *Session) Selection() (model.Asset, model.Currency, model.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.asset, s.selected.currency, s.selected.period
}

// Hovered returns the row under the crosshair: the last row at or before
// the pointer instant.
func (s *Session) Hovered() (model.OHLCVRow, bool) {
	s.hookMu.Lock()
	at := s.hoverAt
	s.hookMu.Unlock()
	if at.IsZero() {
		return model.OHLCVRow{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.series.Rows
	i := sort.Search(len(rows), func(i int) bool { return rows[i].Instant.After(at) })
	if i == 0 {
		return model.OHLCVRow{}, false
	}
	return rows[i-1], true
}

func (s *Session) beforeResize() {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	if s.maintainSpan {
		s.needFit = true
	}
}

func (s *Session) afterDraw() {
	s.hookMu.Lock()
	fit := s.needFit
	s.needFit = false
	s.hookMu.Unlock()
	if fit {
		s.surface.FitToScreen()
	}
}

func (s *Session) pointerMove(at time.Time) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hoverAt = at
}

func (s *Session) subscribe(ctx context.Context, assetID string) error {
	if s.realtime == nil {
		return nil
	}
	if err := s.realtime.Subscribe(ctx, assetID, func(t model.Tick) { s.applyTick(assetID, t) }); err != nil {
		return err
	}
	s.mu.Lock()
	s.subscribed = true
	s.mu.Unlock()
	return nil
}

func (s *Session) resubscribe(ctx context.Context, assetID string) {
	if err := s.unsubscribe(); err != nil {
		log.Printf("[WARN] session %s: realtime unsubscribe: %v", s.ID, err)
	}
	if err := s.subscribe(ctx, assetID); err != nil {
		log.Printf("[WARN] session %s: realtime subscribe: %v", s.ID, err)
	}
}

func (s *Session) unsubscribe() error {
	s.mu.Lock()
	sub := s.subscribed
	s.subscribed = false
	s.mu.Unlock()
	if !sub || s.realtime == nil {
		return nil
	}
	return s.realtime.Unsubscribe()
}

func (s *Session) rowsCopyLocked() []model.OHLCVRow {
	return append(make([]model.OHLCVRow, 0, len(s.series.Rows)), s.series.Rows...)
}

func (s *Session) record(evt *recorder.ReloadEvent, snap *recorder.SeriesSnapshot) {
	if err := s.recorder.RecordReload(evt); err != nil {
		log.Printf("[ERROR] record reload: %v", err)
	}
	if snap == nil {
		return
	}
	if err := s.recorder.RecordSnapshot(snap); err != nil {
		log.Printf("[ERROR] record snapshot: %v", err)
	}
}
