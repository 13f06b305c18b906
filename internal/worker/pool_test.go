package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GraceHermine/GenerateurDocument/internal/config"
)

type mockRunner struct {
	RunFunc func(ctx context.Context, id uuid.UUID) error
	ran     chan uuid.UUID
}

func (m *mockRunner) Run(ctx context.Context, id uuid.UUID) error {
	defer func() { m.ran <- id }()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, id)
	}
	return nil
}

type mockStore struct {
	ListPendingBeforeFunc func(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	FailStaleFunc         func(ctx context.Context, before time.Time, cause string, at time.Time) ([]uuid.UUID, error)
}

func (m *mockStore) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	if m.ListPendingBeforeFunc != nil {
		return m.ListPendingBeforeFunc(ctx, before, limit)
	}
	return nil, nil
}

func (m *mockStore) FailStale(ctx context.Context, before time.Time, cause string, at time.Time) ([]uuid.UUID, error) {
	if m.FailStaleFunc != nil {
		return m.FailStaleFunc(ctx, before, cause, at)
	}
	return nil, nil
}

type mockGauge struct {
	mu     sync.Mutex
	values []int
}

func (m *mockGauge) SetQueueDepth(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = append(m.values, n)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.GenerationConfig {
	return config.GenerationConfig{
		Mode:            config.ModeAsync,
		Workers:         2,
		QueueSize:       2,
		RecoverInterval: time.Minute,
		StaleAfter:      15 * time.Minute,
	}
}

func TestEnqueue_FullQueue(t *testing.T) {
	t.Parallel()
	gauge := &mockGauge{}
	p := New(testLogger(), testConfig(), &mockStore{}, gauge)

	assert.True(t, p.Enqueue(uuid.New()))
	assert.True(t, p.Enqueue(uuid.New()))
	assert.False(t, p.Enqueue(uuid.New()))
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []int{1, 2}, gauge.values)
}

func TestRun_ProcessesQueueAndStops(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RecoverInterval = 0
	p := New(testLogger(), cfg, &mockStore{}, nil)

	failing := uuid.New()
	runner := &mockRunner{
		ran: make(chan uuid.UUID, 4),
		RunFunc: func(_ context.Context, id uuid.UUID) error {
			if id == failing {
				return errors.New("database gone")
			}
			return nil
		},
	}

	ok := uuid.New()
	require.True(t, p.Enqueue(ok))
	require.True(t, p.Enqueue(failing))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, runner) }()

	got := map[uuid.UUID]bool{}
	for range 2 {
		select {
		case id := <-runner.ran:
			got[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("queued documents were not run")
		}
	}
	assert.Equal(t, map[uuid.UUID]bool{ok: true, failing: true}, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not stop")
	}
}

func TestRun_RecoversOnStart(t *testing.T) {
	t.Parallel()
	pending := uuid.New()
	var once sync.Once
	store := &mockStore{
		ListPendingBeforeFunc: func(context.Context, time.Time, int) ([]uuid.UUID, error) {
			var ids []uuid.UUID
			once.Do(func() { ids = []uuid.UUID{pending} })
			return ids, nil
		},
	}
	p := New(testLogger(), testConfig(), store, nil)
	runner := &mockRunner{ran: make(chan uuid.UUID, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx, runner) }()

	select {
	case id := <-runner.ran:
		assert.Equal(t, pending, id)
	case <-time.After(5 * time.Second):
		t.Fatal("pending document was not recovered")
	}
}

func TestRecover_FailsStaleAndRequeuesPending(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	stale := []uuid.UUID{uuid.New()}
	pending := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var gotLimit int
	var gotCause string
	var staleBefore, pendingBefore time.Time
	store := &mockStore{
		FailStaleFunc: func(_ context.Context, before time.Time, cause string, _ time.Time) ([]uuid.UUID, error) {
			staleBefore, gotCause = before, cause
			return stale, nil
		},
		ListPendingBeforeFunc: func(_ context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
			pendingBefore, gotLimit = before, limit
			return pending, nil
		},
	}
	p := New(testLogger(), cfg, store, nil)
	require.True(t, p.Enqueue(uuid.New()))

	start := time.Now()
	report, err := p.Recover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RecoverReport{Failed: 1, Requeued: 1}, report)
	assert.Equal(t, StaleCause, gotCause)
	assert.Equal(t, 1, gotLimit)
	assert.WithinDuration(t, start.Add(-cfg.StaleAfter), staleBefore, time.Second)
	assert.WithinDuration(t, start.Add(-cfg.RecoverInterval), pendingBefore, time.Second)
	assert.Equal(t, 2, p.Len())
}

func TestRecover_FullQueueSkipsListing(t *testing.T) {
	t.Parallel()
	store := &mockStore{
		ListPendingBeforeFunc: func(context.Context, time.Time, int) ([]uuid.UUID, error) {
			t.Error("listing must be skipped when the queue is full")
			return nil, nil
		},
	}
	p := New(testLogger(), testConfig(), store, nil)
	require.True(t, p.Enqueue(uuid.New()))
	require.True(t, p.Enqueue(uuid.New()))

	report, err := p.Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecoverReport{}, report)
}

func TestRecover_StoreError(t *testing.T) {
	t.Parallel()
	store := &mockStore{
		FailStaleFunc: func(context.Context, time.Time, string, time.Time) ([]uuid.UUID, error) {
			return nil, errors.New("timeout")
		},
	}
	p := New(testLogger(), testConfig(), store, nil)

	_, err := p.Recover(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail stale documents")
}
