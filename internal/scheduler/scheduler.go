package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ChartFeed/internal/model"
	"ChartFeed/internal/report"

	"github.com/robfig/cron/v3"
)

// Target is the chart session the scheduler drives.
type Target interface {
	Reload(ctx context.Context) error
	SetCurrency(ctx context.Context, c model.Currency) error
	SetPeriodTitle(ctx context.Context, title string) error
	SetPreset(ctx context.Context, tag string) error
	Snapshot() model.SeriesState
	Selection() (model.Asset, model.Currency, model.Period)
	Hovered() (model.OHLCVRow, bool)
}

// Invalidator drops cached history for one selection.
type Invalidator interface {
	Invalidate(ctx context.Context, assetID, periodValue string) error
}

// Scheduler manages the periodic refresh and summary tasks of one session.
// When Cache is set, a /reload command bypasses cached history.
type Scheduler struct {
	Cron    *cron.Cron
	Session Target
	Cache   Invalidator
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, target Target) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Session: target,
		Ctx:     ctx,
	}
}

// RegisterAll registers the refresh task and, if summaryCron is set, the
// summary log task.
func (s *Scheduler) RegisterAll(refreshCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if summaryCron == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	// The session logs and records its own failures.
	_ = s.Session.Reload(s.Ctx)
}

func (s *Scheduler) invalidate() {
	if s.Cache == nil {
		return
	}
	asset, _, p := s.Session.Selection()
	if err := s.Cache.Invalidate(s.Ctx, asset.ID, p.Value); err != nil {
		log.Printf("[WARN] %v", err)
	}
}

func (s *Scheduler) summaryTask() {
	log.Printf("[INFO] series summary\n%s", s.summary())
}

func (s *Scheduler) summary() string {
	asset, currency, p := s.Session.Selection()
	return report.FormatLegend(asset, currency) + "\n" +
		report.FormatSeriesSummary(s.Session.Snapshot(), asset, currency, p)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help()
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	var err error
	switch fields[0] {
	case "/reload":
		s.invalidate()
		err = s.Session.Reload(s.Ctx)
	case "/currency":
		err = s.Session.SetCurrency(s.Ctx, model.Currency(strings.ToUpper(arg)))
	case "/period":
		err = s.Session.SetPeriodTitle(s.Ctx, strings.ToUpper(arg))
	case "/preset":
		err = s.Session.SetPreset(s.Ctx, arg)
	case "/status":
		return s.summary()
	case "/hover":
		row, ok := s.Session.Hovered()
		if !ok {
			return "nothing under the crosshair"
		}
		asset, currency, _ := s.Session.Selection()
		return report.FormatPopup(row, asset, currency)
	default:
		return help()
	}
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return s.summary()
}

func help() string {
	return "commands:\n" +
		"  /reload\n" +
		"  /currency USD|BTC\n" +
		"  /period 1D|1W|1M|3M|1Y|ALL\n" +
		"  /preset price-vol|price-vol-min|price-only\n" +
		"  /status\n" +
		"  /hover"
}
