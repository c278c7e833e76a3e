package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"upwatch/internals/modules/alert"
	"upwatch/internals/modules/checker"
	"upwatch/internals/modules/monitor"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	item      *monitor.Item
	getErr    error
	recordErr error
	recorded  []bool
}

func (f *fakeStore) GetItem(ctx context.Context, itemID int64) (*monitor.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.item == nil {
		return nil, nil
	}
	cp := *f.item
	return &cp, nil
}

func (f *fakeStore) RecordCheckResult(ctx context.Context, itemID int64, success bool, checkedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, success)
	return f.recordErr
}

func (f *fakeStore) mutate(fn func(it *monitor.Item)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.item)
}

type fakeExecutor struct {
	calls  atomic.Int32
	result checker.Result
	panics bool
}

func (f *fakeExecutor) Execute(ctx context.Context, item *monitor.Item) checker.Result {
	f.calls.Add(1)
	if f.panics {
		panic("strategy bug")
	}
	return f.result
}

type fakeSink struct {
	mu      sync.Mutex
	results []checker.Result
}

func (f *fakeSink) Process(ctx context.Context, item *monitor.Item, res checker.Result, st *alert.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
}

func (f *fakeSink) all() []checker.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]checker.Result(nil), f.results...)
}

func testItem() *monitor.Item {
	return &monitor.Item{
		ID:                   42,
		UserID:               1,
		Name:                 "db",
		Enabled:              true,
		URL:                  "tcp://db:5432",
		Type:                 monitor.CheckTCPOpen,
		CheckIntervalSeconds: 3600, // only the immediate first check fires in tests
	}
}

type harness struct {
	store    *fakeStore
	executor *fakeExecutor
	sink     *fakeSink
	worker   *Worker
}

func newHarness(t *testing.T, item *monitor.Item) *harness {
	t.Helper()

	h := &harness{
		store:    &fakeStore{item: item},
		executor: &fakeExecutor{result: checker.Result{Success: true, CheckedAt: time.Now()}},
		sink:     &fakeSink{},
	}

	nop := zerolog.Nop()
	h.worker = New(42, Deps{
		Store:           h.store,
		Executor:        h.executor,
		Alerts:          h.sink,
		Gate:            make(chan struct{}, 1),
		DriftInterval:   10 * time.Millisecond,
		DefaultInterval: time.Hour,
		Stats:           NewStats(),
		Logger:          &nop,
	})
	return h
}

func waitDone(t *testing.T, w *Worker) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop in time")
	}
}

func TestWorkerRunsImmediateCheck(t *testing.T) {
	h := newHarness(t, testItem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)

	require.Eventually(t, func() bool { return h.executor.calls.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	waitDone(t, h.worker)

	results := h.sink.all()
	require.NotEmpty(t, results)
	assert.True(t, results[0].Success)
	assert.Equal(t, []bool{true}, h.store.recorded)
}

func TestWorkerStopsOnURLDrift(t *testing.T) {
	h := newHarness(t, testItem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return h.executor.calls.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	h.store.mutate(func(it *monitor.Item) { it.URL = "tcp://db-replica:5432" })

	waitDone(t, h.worker)
}

func TestWorkerStopsOnDisable(t *testing.T) {
	h := newHarness(t, testItem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return h.executor.calls.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	h.store.mutate(func(it *monitor.Item) { it.Enabled = false })

	waitDone(t, h.worker)
}

func TestWorkerStopsOnForceRestartToggle(t *testing.T) {
	h := newHarness(t, testItem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return h.executor.calls.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	h.store.mutate(func(it *monitor.Item) { it.ForceRestart = !it.ForceRestart })

	waitDone(t, h.worker)
}

func TestWorkerStopsWhenItemDeleted(t *testing.T) {
	h := newHarness(t, testItem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return h.executor.calls.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	h.store.mu.Lock()
	h.store.item = nil
	h.store.mu.Unlock()

	waitDone(t, h.worker)
}

func TestWorkerStopSignal(t *testing.T) {
	h := newHarness(t, testItem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return h.executor.calls.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	h.worker.Stop()
	h.worker.Stop() // idempotent

	waitDone(t, h.worker)
}

func TestWorkerSurvivesDriftPollFailure(t *testing.T) {
	h := newHarness(t, testItem())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return h.executor.calls.Load() >= 1 },
		time.Second, 5*time.Millisecond)

	h.store.mu.Lock()
	h.store.getErr = assert.AnError
	h.store.mu.Unlock()

	// Several drift ticks pass; the worker must still be alive.
	time.Sleep(60 * time.Millisecond)
	select {
	case <-h.worker.Done():
		t.Fatal("worker exited on a transient store error")
	default:
	}

	h.store.mu.Lock()
	h.store.getErr = nil
	h.store.mu.Unlock()

	h.worker.Stop()
	waitDone(t, h.worker)
}

func TestWorkerStoreWriteFailureBecomesFailedCheck(t *testing.T) {
	h := newHarness(t, testItem())
	h.store.recordErr = assert.AnError

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return len(h.sink.all()) >= 1 },
		time.Second, 5*time.Millisecond)

	cancel()
	waitDone(t, h.worker)

	results := h.sink.all()
	assert.False(t, results[0].Success, "a successful probe with a failed write alerts as down")
	assert.Contains(t, results[0].Message, "store write failed")
}

func TestWorkerIsolatesExecutorPanic(t *testing.T) {
	h := newHarness(t, testItem())
	h.executor.panics = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)
	require.Eventually(t, func() bool { return len(h.sink.all()) >= 1 },
		time.Second, 5*time.Millisecond)

	// The panic was converted, not propagated: the loop is still alive.
	select {
	case <-h.worker.Done():
		t.Fatal("worker died on an executor panic")
	default:
	}

	results := h.sink.all()
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Message, "check panicked")

	cancel()
	waitDone(t, h.worker)
}

func TestWorkerWaitsOnAdmissionGate(t *testing.T) {
	h := newHarness(t, testItem())

	// Fill the only slot so the first check cannot start.
	h.worker.gate <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.worker.Run(ctx)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), h.executor.calls.Load(), "check blocked on the gate")

	// Stop unblocks the waiting worker without running the check.
	h.worker.Stop()
	waitDone(t, h.worker)
	assert.Equal(t, int32(0), h.executor.calls.Load())
}

func TestWorkerExitsWhenItemAlreadyDisabled(t *testing.T) {
	item := testItem()
	item.Enabled = false
	h := newHarness(t, item)

	go h.worker.Run(context.Background())
	waitDone(t, h.worker)
	assert.Equal(t, int32(0), h.executor.calls.Load())
}
