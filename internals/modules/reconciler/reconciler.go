package reconciler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store lists the desired state: ids of all enabled items, in stable
// order.
type Store interface {
	ListEnabledIDs(ctx context.Context) ([]int64, error)
}

// Managed is the slice of a worker the reconciler controls. Stop must
// return immediately (cooperative signal); Done closes once the worker
// has actually exited.
type Managed interface {
	Run(ctx context.Context)
	Stop()
	Done() <-chan struct{}
}

// SpawnFunc builds a fresh worker for an item id.
type SpawnFunc func(itemID int64) Managed

// Reconciler diffs enabled items in the store against live workers on a
// fixed interval, starting and stopping workers so the two converge
// within one cycle.
type Reconciler struct {
	store    Store
	spawn    SpawnFunc
	interval time.Duration
	limit    int // 0 = unlimited
	part     Partition
	logger   *zerolog.Logger

	mu      sync.Mutex
	workers map[int64]Managed
}

func New(store Store, spawn SpawnFunc, interval time.Duration, limit int, part Partition, logger *zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		spawn:    spawn,
		interval: interval,
		limit:    limit,
		part:     part,
		logger:   logger,
		workers:  make(map[int64]Managed),
	}
}

// Run blocks until the context is cancelled. Workers share the same
// context, so shutdown propagates to all of them.
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info().
		Dur("interval", r.interval).
		Int("limit", r.limit).
		Int("chunk_number", r.part.Number).
		Int("chunk_size", r.part.Size).
		Msg("reconciler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reconciler stopping")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) {
	ids, err := r.store.ListEnabledIDs(ctx)
	if err != nil {
		// Skip the cycle; the loop itself must survive store outages.
		r.logger.Error().Err(err).Msg("reconcile cycle skipped: store read failed")
		return
	}

	ids = r.part.Apply(ids)
	if r.limit > 0 && len(ids) > r.limit {
		ids = ids[:r.limit]
	}

	desired := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		desired[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Reap workers that exited on their own (drift, deletion) so they can
	// be restarted with fresh definitions.
	for id, w := range r.workers {
		select {
		case <-w.Done():
			delete(r.workers, id)
		default:
		}
	}

	var started, stopped int

	// Fire-and-forget stop: the worker exits at its own cadence, the
	// reconciler forgets it now.
	for id, w := range r.workers {
		if _, ok := desired[id]; !ok {
			w.Stop()
			delete(r.workers, id)
			stopped++
		}
	}

	for _, id := range ids {
		if _, ok := r.workers[id]; ok {
			continue
		}
		w := r.spawn(id)
		r.workers[id] = w
		go w.Run(ctx)
		started++
	}

	if started > 0 || stopped > 0 {
		r.logger.Info().
			Int("started", started).
			Int("stopped", stopped).
			Int("running", len(r.workers)).
			Msg("reconcile cycle applied")
	}
}

// Drain blocks until every tracked worker has exited or the context
// expires. Used on shutdown after the shared run context is cancelled.
func (r *Reconciler) Drain(ctx context.Context) {
	r.mu.Lock()
	workers := make([]Managed, 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	r.mu.Unlock()

	for _, w := range workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			return
		}
	}
}

// WorkerCount reports how many workers the reconciler currently tracks.
func (r *Reconciler) WorkerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// WorkerIDs returns the tracked item ids in ascending order.
func (r *Reconciler) WorkerIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
