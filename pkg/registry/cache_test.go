package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
)

type countingProvider struct {
	calls   int
	clients []models.Client
	err     error
}

func (p *countingProvider) Clients(ctx context.Context) ([]models.Client, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.clients, nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestCachedServesSnapshotWithinTTL(t *testing.T) {
	inner := &countingProvider{clients: []models.Client{{ClientID: "C1", ClientName: "Acme"}}}
	cached := NewCached(inner, time.Hour, testLogger())

	first, err := cached.Clients(context.Background())
	require.NoError(t, err)
	second, err := cached.Clients(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedRefreshesAfterTTL(t *testing.T) {
	inner := &countingProvider{clients: []models.Client{{ClientID: "C1", ClientName: "Acme"}}}
	cached := NewCached(inner, time.Hour, testLogger())

	current := time.Now()
	cached.now = func() time.Time { return current }

	_, err := cached.Clients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	current = current.Add(2 * time.Hour)

	_, err = cached.Clients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedServesStaleOnRefreshFailure(t *testing.T) {
	inner := &countingProvider{clients: []models.Client{{ClientID: "C1", ClientName: "Acme"}}}
	cached := NewCached(inner, time.Hour, testLogger())

	current := time.Now()
	cached.now = func() time.Time { return current }

	first, err := cached.Clients(context.Background())
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	inner.err = errors.New("registry unavailable")

	second, err := cached.Clients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCachedPropagatesErrorWithoutSnapshot(t *testing.T) {
	inner := &countingProvider{err: errors.New("registry unavailable")}
	cached := NewCached(inner, time.Hour, testLogger())

	_, err := cached.Clients(context.Background())
	assert.Error(t, err)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	inner := &countingProvider{clients: []models.Client{{ClientID: "C1", ClientName: "Acme"}}}
	cached := NewCached(inner, time.Hour, testLogger())

	_, err := cached.Clients(context.Background())
	require.NoError(t, err)
	cached.Invalidate()
	_, err = cached.Clients(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
