package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

type fakeSource struct {
	mu    sync.Mutex
	docs  []models.Document
	calls int
}

func (f *fakeSource) GetDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.docs, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSweeper struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeSweeper) CheckContractExpirations(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *fakeSweeper) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSchedulerRunsCycleOnStart(t *testing.T) {
	f := newFixture(extractionFor("Acme", nil), nil, nil)
	// Documents already in the ledger short-circuit before extraction.
	f.ledger.processed["DOC-1"] = true
	f.ledger.processed["DOC-2"] = true

	source := &fakeSource{docs: []models.Document{{ID: "DOC-1"}, {ID: "DOC-2"}}}
	sweeper := &fakeSweeper{}
	scheduler := NewScheduler(source, f.processor, sweeper, SchedulerConfig{Interval: time.Hour, BatchSize: 10}, testLogger())

	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop(context.Background())

	require.Eventually(t, func() bool {
		return source.callCount() >= 1 && sweeper.callCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, f.extractor.calls)
	assert.True(t, scheduler.IsRunning())
}

func TestSchedulerStartTwice(t *testing.T) {
	source := &fakeSource{}
	sweeper := &fakeSweeper{}
	f := newFixture(extractionFor("Acme", nil), nil, nil)
	scheduler := NewScheduler(source, f.processor, sweeper, SchedulerConfig{Interval: time.Hour}, testLogger())

	require.NoError(t, scheduler.Start(context.Background()))
	defer scheduler.Stop(context.Background())

	assert.ErrorIs(t, scheduler.Start(context.Background()), ErrSchedulerAlreadyRunning)
}

func TestSchedulerStop(t *testing.T) {
	source := &fakeSource{}
	sweeper := &fakeSweeper{}
	f := newFixture(extractionFor("Acme", nil), nil, nil)
	scheduler := NewScheduler(source, f.processor, sweeper, SchedulerConfig{Interval: 10 * time.Millisecond}, testLogger())

	require.NoError(t, scheduler.Start(context.Background()))

	require.Eventually(t, func() bool { return source.callCount() >= 2 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, scheduler.Stop(ctx))
	assert.False(t, scheduler.IsRunning())

	// No further cycles after stop.
	calls := source.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, source.callCount())

	// Stopping again is a no-op.
	require.NoError(t, scheduler.Stop(context.Background()))
}
