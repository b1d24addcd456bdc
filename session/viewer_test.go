package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"liveshop/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type viewerStoreMock struct {
	lock sync.Mutex

	shows   map[uuid.UUID]entities.Show
	pollErr error
}

func newViewerStoreMock() *viewerStoreMock {
	return &viewerStoreMock{shows: map[uuid.UUID]entities.Show{}}
}

func (m *viewerStoreMock) ByID(ctx context.Context, showID uuid.UUID) (entities.Show, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.pollErr != nil {
		return entities.Show{}, m.pollErr
	}
	return m.shows[showID], nil
}

func (m *viewerStoreMock) WriteBackViewerCounts(ctx context.Context, showID uuid.UUID, displayed, max int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	show := m.shows[showID]
	show.DisplayedViewerCount = displayed
	if max > show.MaxViewerCount {
		show.MaxViewerCount = max
	}
	m.shows[showID] = show
	return nil
}

func (m *viewerStoreMock) setServerCount(showID uuid.UUID, count int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	show := m.shows[showID]
	show.ShowID = showID
	show.ServerViewerCount = count
	m.shows[showID] = show
}

func TestViewerReconcilerKeepsPushWhenPollReadsZero(t *testing.T) {
	ctx := context.Background()
	store := newViewerStoreMock()
	reconciler := NewViewerReconciler(store)
	showID := uuid.New()

	reconciler.ObservePush(showID, 42)
	store.setServerCount(showID, 0)

	show, err := reconciler.ReconcilePoll(ctx, showID)
	require.NoError(t, err)

	assert.Equal(t, 42, show.DisplayedViewerCount)
	assert.Equal(t, 42, reconciler.Displayed(showID))
	assert.Equal(t, 42, show.MaxViewerCount)
}

func TestViewerReconcilerAdoptsNonZeroPoll(t *testing.T) {
	ctx := context.Background()
	store := newViewerStoreMock()
	reconciler := NewViewerReconciler(store)
	showID := uuid.New()

	reconciler.ObservePush(showID, 42)
	store.setServerCount(showID, 17)

	show, err := reconciler.ReconcilePoll(ctx, showID)
	require.NoError(t, err)

	assert.Equal(t, 17, show.DisplayedViewerCount)
	assert.Equal(t, 42, show.MaxViewerCount, "high-water mark keeps the earlier peak")
}

func TestViewerReconcilerAdoptsZeroPollWithoutPush(t *testing.T) {
	ctx := context.Background()
	store := newViewerStoreMock()
	reconciler := NewViewerReconciler(store)
	showID := uuid.New()

	store.setServerCount(showID, 0)

	show, err := reconciler.ReconcilePoll(ctx, showID)
	require.NoError(t, err)

	assert.Equal(t, 0, show.DisplayedViewerCount)
}

func TestViewerReconcilerMaxNeverDecreases(t *testing.T) {
	ctx := context.Background()
	store := newViewerStoreMock()
	reconciler := NewViewerReconciler(store)
	showID := uuid.New()

	maxSeen := 0
	for _, count := range []int{5, 90, 3, 0, 41, 90, 1} {
		store.setServerCount(showID, count)

		show, err := reconciler.ReconcilePoll(ctx, showID)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, show.MaxViewerCount, maxSeen)
		maxSeen = show.MaxViewerCount
	}

	assert.Equal(t, 90, maxSeen)
}

func TestViewerReconcilerRetainsMergedValueOnPollFailure(t *testing.T) {
	ctx := context.Background()
	store := newViewerStoreMock()
	reconciler := NewViewerReconciler(store)
	showID := uuid.New()

	store.setServerCount(showID, 12)
	_, err := reconciler.ReconcilePoll(ctx, showID)
	require.NoError(t, err)

	store.pollErr = errors.New("store timeout")

	_, err = reconciler.ReconcilePoll(ctx, showID)
	require.Error(t, err)

	assert.Equal(t, 12, reconciler.Displayed(showID), "last merged value survives a failed poll")
}
