/*
scheduler.go - Automated reconciliation scheduler

PURPOSE:
  Periodically compares inventory snapshots against the movement log and,
  when configured, repairs drift left behind by interrupted writes.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start unless SkipInitialRun is set
  - Can be stopped and started again
  - Keeps the last report for the API and logs drift at warn level

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)
  - Repair: Repair drift instead of only reporting it (default: false)
  - SkipInitialRun: Wait one interval before the first check, for callers
    that already reconciled at startup (default: false)

USAGE:
  scheduler := NewReconciliationScheduler(reconciler, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Manual check and repair endpoints
  - inventory/reconcile.go: Reconciler
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/stockledger/inventory"
	"go.uber.org/zap"
)

// ReconciliationScheduler runs inventory reconciliation on a timer.
type ReconciliationScheduler struct {
	Reconciler     *inventory.Reconciler
	CheckInterval  time.Duration
	Enabled        bool
	Repair         bool
	// SkipInitialRun delays the first check by one interval.
	SkipInitialRun bool
	Log            *zap.Logger

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	last    *inventory.Report
	lastRun time.Time
}

// NewReconciliationScheduler creates a new scheduler.
func NewReconciliationScheduler(reconciler *inventory.Reconciler, log *zap.Logger) *ReconciliationScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconciliationScheduler{
		Reconciler:    reconciler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Log:           log.Named("scheduler"),
	}
}

// Start begins the scheduler.
func (rs *ReconciliationScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled || rs.CheckInterval <= 0 {
		rs.Log.Info("disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run(rs.ticker.C, rs.stop, !rs.SkipInitialRun)

	rs.Log.Info("started",
		zap.Duration("interval", rs.CheckInterval),
		zap.Bool("repair", rs.Repair),
		zap.Bool("skip_initial_run", rs.SkipInitialRun),
	)
}

// Stop stops the scheduler and waits for a running check to finish.
func (rs *ReconciliationScheduler) Stop() {
	rs.mu.Lock()
	ticker, stop := rs.ticker, rs.stop
	rs.ticker, rs.stop = nil, nil
	rs.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	rs.wg.Wait()
	rs.Log.Info("stopped")
}

func (rs *ReconciliationScheduler) run(tick <-chan time.Time, stop <-chan struct{}, immediate bool) {
	defer rs.wg.Done()

	if immediate {
		rs.RunNow(context.Background())
	}

	for {
		select {
		case <-tick:
			rs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one check (or repair) immediately.
func (rs *ReconciliationScheduler) RunNow(ctx context.Context) (*inventory.Report, error) {
	var (
		report *inventory.Report
		err    error
	)
	if rs.Repair {
		report, err = rs.Reconciler.Repair(ctx)
	} else {
		report, err = rs.Reconciler.Check(ctx)
	}
	if err != nil {
		rs.Log.Error("reconciliation failed", zap.Error(err))
		return nil, err
	}

	rs.mu.Lock()
	rs.last = report
	rs.lastRun = time.Now()
	rs.mu.Unlock()

	rs.Log.Info("reconciliation completed",
		zap.Int("records", report.Records),
		zap.Int("movements", report.Movements),
		zap.Int("drifts", len(report.Drifts)),
		zap.Int("repaired", report.Repaired),
	)
	return report, nil
}

// LastReport returns the most recent report, or nil before the first run.
func (rs *ReconciliationScheduler) LastReport() *inventory.Report {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.last
}

// GetNextRunTime returns when the next scheduled check will occur.
func (rs *ReconciliationScheduler) GetNextRunTime() time.Time {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.lastRun.IsZero() {
		return time.Now().Add(rs.CheckInterval)
	}
	return rs.lastRun.Add(rs.CheckInterval)
}
