package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_feed/internal/domain"
)

type countingSyncer struct {
	calls    atomic.Int32
	err      error
	deadline atomic.Bool
	stats    *domain.SyncStats
}

func (c *countingSyncer) Sync(ctx context.Context) (*domain.SyncStats, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		c.deadline.Store(true)
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.stats != nil {
		return c.stats, nil
	}
	return &domain.SyncStats{}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunOnce(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewScheduler(syncer, time.Hour, time.Minute, quietLogger())

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, int32(1), syncer.calls.Load())
	assert.True(t, syncer.deadline.Load())
}

func TestScheduler_RunOnceReportsError(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("fetch posts: unexpected status: 503")}
	s := NewScheduler(syncer, time.Hour, time.Minute, quietLogger())

	assert.Error(t, s.RunOnce(context.Background()))
}

func TestScheduler_TracksConsecutiveFailures(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("boom")}
	s := NewScheduler(syncer, time.Hour, time.Minute, quietLogger())

	_ = s.RunOnce(context.Background())
	_ = s.RunOnce(context.Background())
	assert.Equal(t, 2, s.ConsecutiveFailures())

	syncer.err = nil
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Zero(t, s.ConsecutiveFailures())
}

func TestScheduler_LogsRunStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	syncer := &countingSyncer{stats: &domain.SyncStats{Fetched: 5, New: 2, Skipped: 3, Published: 2}}
	s := NewScheduler(syncer, time.Hour, time.Minute, logger)

	require.NoError(t, s.RunOnce(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"msg":"archive run finished"`)
	assert.Contains(t, out, `"new":2`)
	assert.Contains(t, out, `"skipped":3`)
}

func TestScheduler_UnchangedRunLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	syncer := &countingSyncer{stats: &domain.SyncStats{Fetched: 5, Skipped: 5}}
	s := NewScheduler(syncer, time.Hour, time.Minute, logger)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.NotContains(t, buf.String(), "archive run finished")
}

func TestScheduler_StartRunsUntilCancelled(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewScheduler(syncer, 10*time.Millisecond, time.Second, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	assert.Eventually(t, func() bool { return syncer.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_KeepsRunningAfterFailure(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("boom")}
	s := NewScheduler(syncer, 10*time.Millisecond, time.Second, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Start(ctx) }()

	assert.Eventually(t, func() bool { return syncer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
