package reconciler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	id       int64
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newFakeWorker(id int64) *fakeWorker {
	return &fakeWorker{
		id:   id,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (w *fakeWorker) Run(ctx context.Context) {
	defer close(w.done)
	select {
	case <-ctx.Done():
	case <-w.stop:
	}
}

func (w *fakeWorker) Stop()                 { w.stopOnce.Do(func() { close(w.stop) }) }
func (w *fakeWorker) Done() <-chan struct{} { return w.done }

type idStore struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (s *idStore) ListEnabledIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]int64(nil), s.ids...), nil
}

func (s *idStore) set(ids ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = ids
}

type spawnTracker struct {
	mu      sync.Mutex
	spawned []int64
	workers map[int64]*fakeWorker
}

func newSpawnTracker() *spawnTracker {
	return &spawnTracker{workers: make(map[int64]*fakeWorker)}
}

func (s *spawnTracker) spawn(id int64) Managed {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := newFakeWorker(id)
	s.spawned = append(s.spawned, id)
	s.workers[id] = w
	return w
}

func (s *spawnTracker) spawnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spawned)
}

func (s *spawnTracker) worker(id int64) *fakeWorker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers[id]
}

func newTestReconciler(store *idStore, tracker *spawnTracker, limit int, part Partition) *Reconciler {
	nop := zerolog.Nop()
	return New(store, tracker.spawn, time.Hour, limit, part, &nop)
}

func TestReconcileStartsWorkersForEnabledItems(t *testing.T) {
	store := &idStore{}
	store.set(1, 2, 3)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 0, Partition{})

	r.reconcile(context.Background())

	assert.Equal(t, 3, r.WorkerCount())
	assert.Equal(t, []int64{1, 2, 3}, r.WorkerIDs())
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := &idStore{}
	store.set(1, 2)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 0, Partition{})

	ctx := context.Background()
	r.reconcile(ctx)
	r.reconcile(ctx)
	r.reconcile(ctx)

	assert.Equal(t, 2, tracker.spawnCount(), "unchanged desired state spawns nothing new")
	assert.Equal(t, 2, r.WorkerCount())
}

func TestReconcileStopsRemovedWorkers(t *testing.T) {
	store := &idStore{}
	store.set(1, 2, 3)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 0, Partition{})

	ctx := context.Background()
	r.reconcile(ctx)
	require.Equal(t, 3, r.WorkerCount())

	store.set(1, 3)
	r.reconcile(ctx)

	assert.Equal(t, []int64{1, 3}, r.WorkerIDs(), "worker 2 forgotten immediately")

	select {
	case <-tracker.worker(2).Done():
	case <-time.After(time.Second):
		t.Fatal("stopped worker never exited")
	}
}

func TestReconcileRestartsSelfExitedWorker(t *testing.T) {
	store := &idStore{}
	store.set(1)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 0, Partition{})

	ctx := context.Background()
	r.reconcile(ctx)
	require.Equal(t, 1, tracker.spawnCount())

	// The worker exits on its own, as it would on drift.
	first := tracker.worker(1)
	first.Stop()
	<-first.Done()

	r.reconcile(ctx)
	assert.Equal(t, 2, tracker.spawnCount(), "a fresh worker replaces the drifted one")
	assert.Equal(t, 1, r.WorkerCount())
}

func TestReconcileSkipsCycleOnStoreError(t *testing.T) {
	store := &idStore{}
	store.set(1, 2)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 0, Partition{})

	ctx := context.Background()
	r.reconcile(ctx)
	require.Equal(t, 2, r.WorkerCount())

	store.mu.Lock()
	store.err = assert.AnError
	store.mu.Unlock()

	r.reconcile(ctx)

	assert.Equal(t, 2, r.WorkerCount(), "a failed read must not stop running workers")
	assert.Equal(t, 2, tracker.spawnCount())
}

func TestReconcileHonorsLimit(t *testing.T) {
	store := &idStore{}
	store.set(1, 2, 3, 4, 5)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 2, Partition{})

	r.reconcile(context.Background())

	assert.Equal(t, []int64{1, 2}, r.WorkerIDs())
}

func TestReconcileHonorsPartition(t *testing.T) {
	store := &idStore{}
	store.set(10, 20, 30, 40, 50)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 0, Partition{Number: 2, Size: 2})

	r.reconcile(context.Background())

	assert.Equal(t, []int64{30, 40}, r.WorkerIDs())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &idStore{}
	store.set(1)
	tracker := newSpawnTracker()
	r := newTestReconciler(store, tracker, 0, Partition{})

	ctx, cancel := context.WithCancel(context.Background())

	var stopped atomic.Bool
	go func() {
		r.Run(ctx)
		stopped.Store(true)
	}()

	require.Eventually(t, func() bool { return r.WorkerCount() == 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, stopped.Load, time.Second, 5*time.Millisecond)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	r.Drain(drainCtx)

	select {
	case <-tracker.worker(1).Done():
	case <-time.After(time.Second):
		t.Fatal("worker ignored context cancellation")
	}
}
