package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/marketplace-backend/config"
	"github.com/dustin/marketplace-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultRefreshInterval applies when WORKER_REFRESH_INTERVAL is unset
const DefaultRefreshInterval = 15 * time.Minute

// RefreshFunc rebuilds some cached state
type RefreshFunc func(ctx context.Context) error

// RefreshWorker runs a RefreshFunc on a fixed cron schedule. Runs never
// overlap; a tick that fires while the previous run is busy is skipped.
type RefreshWorker struct {
	name     string
	cron     *cron.Cron
	refresh  RefreshFunc
	interval time.Duration
	logger   *logger.Logger
	entryID  cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewRefreshWorker creates a cron-scheduled worker with validation and defaults
func NewRefreshWorker(cfg *config.WorkerConfig, name string, refresh RefreshFunc, log *logger.Logger) (*RefreshWorker, error) {
	interval := DefaultRefreshInterval
	if cfg != nil && cfg.RefreshInterval != "" {
		duration, err := time.ParseDuration(cfg.RefreshInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid refresh interval '%s': %v", cfg.RefreshInterval, err)
		}
		if duration < time.Second {
			return nil, fmt.Errorf("invalid refresh interval '%s': must be at least 1s", cfg.RefreshInterval)
		}
		interval = duration
	}

	ctx, cancel := context.WithCancel(context.Background())
	componentLog := log.WithComponent("refresh-worker")

	return &RefreshWorker{
		name: name,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		refresh:  refresh,
		interval: interval,
		logger:   componentLog,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Interval returns the configured refresh period
func (w *RefreshWorker) Interval() time.Duration {
	return w.interval
}

// Start schedules and begins the refresh worker
func (w *RefreshWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.logger.Info(fmt.Sprintf("Starting refresh worker: %s (every %v)", w.name, w.interval))

	entryID, err := w.cron.AddFunc("@every "+w.interval.String(), func() {
		_ = w.RunOnce()
	})
	if err != nil {
		w.logger.Error("Failed to schedule refresh worker " + w.name + ": " + err.Error())
		return err
	}

	w.entryID = entryID
	w.cron.Start()

	w.logger.Info("Refresh worker started successfully: " + w.name)

	return nil
}

// RunOnce performs one refresh immediately. Each run is bounded by the
// refresh interval and cancelled when the worker stops.
func (w *RefreshWorker) RunOnce() error {
	ctx, cancel := context.WithTimeout(w.ctx, w.interval)
	defer cancel()

	start := time.Now()
	w.logger.Debug("Executing refresh for worker: " + w.name)

	if err := w.refresh(ctx); err != nil {
		w.logger.Error("Refresh failed for worker " + w.name + ": " + err.Error())
		return err
	}

	w.logger.Info(fmt.Sprintf("Refresh completed for worker %s in %v", w.name, time.Since(start)))
	return nil
}

// Stop cancels any in-flight refresh and waits for the scheduler to drain
func (w *RefreshWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.logger.Info("Stopping refresh worker: " + w.name)

	if w.entryID > 0 {
		w.cron.Remove(w.entryID)
		w.entryID = 0
	}

	w.cancel()
	ctx := w.cron.Stop()
	<-ctx.Done()

	w.logger.Info("Refresh worker stopped: " + w.name)

	return nil
}

// IsRunning checks if the worker has active cron entries
func (w *RefreshWorker) IsRunning() bool {
	return len(w.cron.Entries()) > 0
}
