package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickerpulse/pkg/errors"
)

// countingWorker records invocations and optionally fails or panics
type countingWorker struct {
	*BaseWorker
	runs     atomic.Int32
	runErr   error
	panicMsg string
}

func newCountingWorker(name string, interval time.Duration, enabled bool) *countingWorker {
	return &countingWorker{BaseWorker: NewBaseWorker(name, interval, enabled)}
}

func (w *countingWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	if w.panicMsg != "" {
		panic(w.panicMsg)
	}
	return w.runErr
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	w := newCountingWorker("ticker", 10*time.Millisecond, true)
	s.RegisterWorker(w)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	// immediate run plus at least one tick
	assert.Eventually(t, func() bool {
		return w.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	after := w.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, w.runs.Load())
}

func TestScheduler_DisabledWorkerNeverRuns(t *testing.T) {
	s := NewScheduler()
	w := newCountingWorker("disabled", time.Millisecond, false)
	s.RegisterWorker(w)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Equal(t, int32(0), w.runs.Load())
}

func TestScheduler_DoubleStart(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	err := NewScheduler().Stop()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestScheduler_RecordsWorkerHealth(t *testing.T) {
	s := NewScheduler()
	ok := newCountingWorker("healthy", time.Hour, true)
	bad := newCountingWorker("failing", time.Hour, true)
	bad.runErr = errors.ErrUnavailable
	s.RegisterWorker(ok)
	s.RegisterWorker(bad)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return ok.runs.Load() >= 1 && bad.runs.Load() >= 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())

	assert.NoError(t, ok.Health().LastError)
	assert.GreaterOrEqual(t, ok.Health().RunCount, int64(1))

	assert.Error(t, bad.Health().LastError)
	assert.GreaterOrEqual(t, bad.Health().ErrorCount, int64(1))
}

func TestScheduler_SurvivesWorkerPanic(t *testing.T) {
	s := NewScheduler()
	w := newCountingWorker("panicky", 10*time.Millisecond, true)
	w.panicMsg = "boom"
	s.RegisterWorker(w)

	require.NoError(t, s.Start(context.Background()))
	// the loop keeps ticking after a panic
	assert.Eventually(t, func() bool {
		return w.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop())
}

func TestScheduler_RejectsRegistrationAfterStart(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	late := newCountingWorker("late", time.Millisecond, true)
	s.RegisterWorker(late)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), late.runs.Load())
}
