/*
Package scheduler runs the daily report job on a fixed interval.

PURPOSE:
  Owns the timer lifecycle for report aggregation so the process, not
  an implicit module-level registration, decides when reporting runs.

DESIGN:
  - Background goroutine with a configurable check interval
  - Each tick aggregates the PREVIOUS calendar day (UTC)
  - Runs are idempotent (upsert by date), so an immediate run on
    Start, a duplicate tick, or an operator-triggered RunNow are all
    harmless
  - Errors are logged and left for the next tick; there is no
    intra-run retry

USAGE:
  sched := scheduler.New(engine.Reports, cfg.Scheduler, logger)
  sched.Start()
  // ... later
  sched.Stop()
*/
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/credit-engine/config"
	"github.com/warp/credit-engine/credit"
)

// ReportScheduler triggers daily report runs on a timer.
type ReportScheduler struct {
	Builder  *credit.ReportBuilder
	Interval time.Duration
	Enabled  bool

	// Now is swappable for tests.
	Now func() time.Time

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// New creates a scheduler over the given report builder.
func New(builder *credit.ReportBuilder, cfg config.SchedulerConfig, log zerolog.Logger) *ReportScheduler {
	interval := cfg.Interval.Duration
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ReportScheduler{
		Builder:  builder,
		Interval: interval,
		Enabled:  cfg.Enabled,
		Now:      time.Now,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduler. A disabled scheduler is a no-op.
func (rs *ReportScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.log.Info().Msg("report scheduler disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return // already running
	}

	rs.ticker = time.NewTicker(rs.Interval)
	rs.wg.Add(1)
	go rs.run()

	rs.log.Info().Dur("interval", rs.Interval).Msg("report scheduler started")
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (rs *ReportScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.log.Info().Msg("report scheduler stopped")
	}
}

func (rs *ReportScheduler) run() {
	defer rs.wg.Done()

	// Catch up immediately on start; the upsert makes this safe.
	rs.runOnce()

	for {
		select {
		case <-rs.ticker.C:
			rs.runOnce()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReportScheduler) runOnce() {
	day := credit.Day(rs.Now().UTC().AddDate(0, 0, -1))

	report, err := rs.Builder.RunDaily(context.Background(), day)
	if err != nil {
		// Left for the next tick; the run is idempotent.
		rs.log.Error().Str("date", credit.DateKey(day)).Err(err).Msg("daily report run failed")
		return
	}

	rs.log.Info().
		Str("date", credit.DateKey(day)).
		Int("agents", len(report.AgentReports)).
		Msg("daily report run completed")
}

// RunNow triggers an immediate run for the previous day (for admin/testing).
func (rs *ReportScheduler) RunNow() {
	rs.runOnce()
}

// NextRunTime returns when the next scheduled run will occur.
func (rs *ReportScheduler) NextRunTime() time.Time {
	return rs.Now().Add(rs.Interval)
}
