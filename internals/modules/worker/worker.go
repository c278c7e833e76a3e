package worker

import (
	"context"
	"fmt"
	"sync"
	"time"
	"upwatch/internals/modules/alert"
	"upwatch/internals/modules/checker"
	"upwatch/internals/modules/monitor"

	"github.com/rs/zerolog"
)

// Store is the slice of the repository a worker needs for its own row.
type Store interface {
	GetItem(ctx context.Context, itemID int64) (*monitor.Item, error)
	RecordCheckResult(ctx context.Context, itemID int64, success bool, checkedAt time.Time) error
}

// Executor runs one bounded-retry check.
type Executor interface {
	Execute(ctx context.Context, item *monitor.Item) checker.Result
}

// AlertSink receives every completed check result.
type AlertSink interface {
	Process(ctx context.Context, item *monitor.Item, res checker.Result, st *alert.State)
}

// StatusCache mirrors the last check outcome for fast reads. Optional.
type StatusCache interface {
	StoreStatus(ctx context.Context, itemID int64, status int, latencyMs int64, message string, checkedAt time.Time) error
}

// Worker owns one item's lifecycle: it loads a definition snapshot once,
// runs checks on the item's cadence, watches its own row for drift on a
// fast cadence, and exits on any change so the reconciler can start a
// fresh worker. Checks and drift polls for one item are strictly
// sequential: both run from the single Run goroutine.
type Worker struct {
	itemID int64

	store    Store
	executor Executor
	alerts   AlertSink
	cache    StatusCache // may be nil

	gate            chan struct{} // shared admission gate, bounds in-flight checks
	driftInterval   time.Duration
	defaultInterval time.Duration

	stats  *Stats
	logger zerolog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

type Deps struct {
	Store           Store
	Executor        Executor
	Alerts          AlertSink
	Cache           StatusCache
	Gate            chan struct{}
	DriftInterval   time.Duration
	DefaultInterval time.Duration
	Stats           *Stats
	Logger          *zerolog.Logger
}

func New(itemID int64, deps Deps) *Worker {
	return &Worker{
		itemID:          itemID,
		store:           deps.Store,
		executor:        deps.Executor,
		alerts:          deps.Alerts,
		cache:           deps.Cache,
		gate:            deps.Gate,
		driftInterval:   deps.DriftInterval,
		defaultInterval: deps.DefaultInterval,
		stats:           deps.Stats,
		logger:          deps.Logger.With().Int64("item_id", itemID).Logger(),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Stop signals the worker to exit. It returns immediately; the worker
// notices at its next loop iteration.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Done is closed once the worker has fully exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Run executes the worker until drift, disable, a stop signal, or
// context cancellation. It must be called exactly once.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	item, err := w.store.GetItem(ctx, w.itemID)
	if err != nil {
		w.logger.Error().Err(err).Msg("worker failed to load item, exiting")
		return
	}
	if item == nil || !item.Enabled {
		w.logger.Debug().Msg("item gone or disabled before worker start")
		return
	}

	snapshot := monitor.SnapshotOf(item)
	state := alert.NewState()
	interval := item.EffectiveInterval(w.defaultInterval)

	w.logger.Info().
		Str("type", string(item.Type)).
		Dur("interval", interval).
		Msg("worker started")

	checkTicker := time.NewTicker(interval)
	defer checkTicker.Stop()
	driftTicker := time.NewTicker(w.driftInterval)
	defer driftTicker.Stop()

	// First check fires immediately, not one interval in.
	w.runCheck(ctx, item, state)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("worker stopping: context cancelled")
			return

		case <-w.stop:
			w.logger.Info().Msg("worker stopping: reconciler signal")
			return

		case <-driftTicker.C:
			fresh, err := w.store.GetItem(ctx, w.itemID)
			if err != nil {
				// Store hiccup: skip this drift poll, keep running.
				w.logger.Warn().Err(err).Msg("drift poll failed, skipping")
				continue
			}
			if fresh == nil {
				w.logger.Info().Msg("worker stopping: item deleted")
				return
			}
			if changed := snapshot.Diff(monitor.SnapshotOf(fresh)); len(changed) > 0 {
				w.logger.Info().
					Strs("changed_fields", changed).
					Msg("worker stopping: definition drift")
				return
			}

		case <-checkTicker.C:
			w.runCheck(ctx, item, state)
		}
	}
}

// runCheck acquires an admission slot, executes the check, persists the
// outcome and hands the result to the alert engine. Nothing in here may
// kill the worker loop.
func (w *Worker) runCheck(ctx context.Context, item *monitor.Item, state *alert.State) {
	select {
	case w.gate <- struct{}{}:
	case <-w.stop:
		return
	case <-ctx.Done():
		return
	}
	defer func() { <-w.gate }()

	res := w.executeIsolated(ctx, item)

	if err := w.store.RecordCheckResult(ctx, item.ID, res.Success, res.CheckedAt); err != nil {
		w.logger.Error().Err(err).Msg("failed to persist check result")
		if res.Success {
			res = checker.Result{
				Success:   false,
				Message:   fmt.Sprintf("store write failed: %v", err),
				CheckedAt: res.CheckedAt,
			}
		}
	}

	w.mirrorStatus(ctx, item.ID, res)
	w.stats.record(res.Success)

	if res.Success {
		w.logger.Debug().
			Dur("latency", res.Latency).
			Int("attempts", res.Attempts).
			Msg("check succeeded")
	} else {
		w.logger.Info().
			Str("message", res.Message).
			Int("attempts", res.Attempts).
			Msg("check failed")
	}

	w.alerts.Process(ctx, item, res, state)
}

// executeIsolated converts a panicking check strategy into a failed
// result so one item's bug cannot take down its worker.
func (w *Worker) executeIsolated(ctx context.Context, item *monitor.Item) (res checker.Result) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Interface("panic", r).
				Msg("check execution panicked")
			res = checker.Result{
				Success:   false,
				Message:   fmt.Sprintf("check panicked: %v", r),
				CheckedAt: time.Now(),
			}
		}
	}()

	res = w.executor.Execute(ctx, item)
	if res.CheckedAt.IsZero() {
		res.CheckedAt = time.Now()
	}
	return res
}

func (w *Worker) mirrorStatus(ctx context.Context, itemID int64, res checker.Result) {
	if w.cache == nil {
		return
	}

	status := monitor.StatusDown
	if res.Success {
		status = monitor.StatusUp
	}
	if err := w.cache.StoreStatus(ctx, itemID, status, res.Latency.Milliseconds(), res.Message, res.CheckedAt); err != nil {
		w.logger.Warn().Err(err).Msg("failed to mirror status to cache")
	}
}
