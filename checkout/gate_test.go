package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"liveshop/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type showRepoMock struct {
	show entities.Show
}

func (m *showRepoMock) ByID(ctx context.Context, showID uuid.UUID) (entities.Show, error) {
	return m.show, nil
}

type productRepoMock struct {
	lock    sync.Mutex
	product entities.ShowProduct
}

func (m *productRepoMock) ByID(ctx context.Context, productID uuid.UUID) (entities.ShowProduct, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.product, nil
}

// intentRepoMock enforces the pending-uniqueness key the way the partial
// unique index does in postgres.
type intentRepoMock struct {
	lock    sync.Mutex
	intents map[uuid.UUID]entities.CheckoutIntent
}

func newIntentRepoMock() *intentRepoMock {
	return &intentRepoMock{intents: map[uuid.UUID]entities.CheckoutIntent{}}
}

func (m *intentRepoMock) CreatePendingIfAbsent(ctx context.Context, intent entities.CheckoutIntent) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, existing := range m.intents {
		if existing.Status == entities.IntentPending &&
			existing.BuyerID == intent.BuyerID &&
			existing.ProductID == intent.ProductID {
			return ErrAlreadyInFlight
		}
	}

	m.intents[intent.IntentID] = intent
	return nil
}

func (m *intentRepoMock) MarkFulfilled(ctx context.Context, intentID uuid.UUID) (bool, error) {
	return m.resolve(intentID, entities.IntentFulfilled, nil)
}

func (m *intentRepoMock) MarkFailed(ctx context.Context, intentID uuid.UUID, reason string) (bool, error) {
	return m.resolve(intentID, entities.IntentFailed, &reason)
}

func (m *intentRepoMock) CancelOwned(ctx context.Context, intentID, buyerID uuid.UUID) (bool, error) {
	m.lock.Lock()
	intent, ok := m.intents[intentID]
	m.lock.Unlock()

	if !ok || intent.BuyerID != buyerID {
		return false, nil
	}
	reason := "cancelled by buyer"
	return m.resolve(intentID, entities.IntentFailed, &reason)
}

func (m *intentRepoMock) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var swept int64
	for id, intent := range m.intents {
		if intent.Status == entities.IntentPending && intent.ExpiresAt.Before(now) {
			intent.Status = entities.IntentExpired
			m.intents[id] = intent
			swept++
		}
	}
	return swept, nil
}

func (m *intentRepoMock) resolve(intentID uuid.UUID, status entities.IntentStatus, reason *string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	intent, ok := m.intents[intentID]
	if !ok || intent.Status != entities.IntentPending {
		return false, nil
	}

	now := time.Now().UTC()
	intent.Status = status
	intent.ResolvedAt = &now
	intent.FailReason = reason
	m.intents[intentID] = intent
	return true, nil
}

func (m *intentRepoMock) pendingCount() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	count := 0
	for _, intent := range m.intents {
		if intent.Status == entities.IntentPending {
			count++
		}
	}
	return count
}

type publisherMock struct {
	lock   sync.Mutex
	events []any
}

func (m *publisherMock) Publish(ctx context.Context, event any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.events = append(m.events, event)
	return nil
}

func liveShow() entities.Show {
	return entities.Show{
		ShowID:          uuid.New(),
		LifecycleStatus: entities.ShowLive,
		StreamPhase:     entities.StreamLive,
	}
}

func buyableProduct() entities.ShowProduct {
	return entities.ShowProduct{
		ProductID:   uuid.New(),
		Quantity:    1,
		IsAvailable: true,
	}
}

func newTestGate(show entities.Show, product entities.ShowProduct) (*Gate, *intentRepoMock, *publisherMock) {
	intents := newIntentRepoMock()
	publisher := &publisherMock{}
	gate := NewGate(
		&showRepoMock{show: show},
		&productRepoMock{product: product},
		intents,
		publisher,
	)
	return gate, intents, publisher
}

func TestGateBegin(t *testing.T) {
	ctx := context.Background()
	gate, intents, publisher := newTestGate(liveShow(), buyableProduct())

	intent, err := gate.Begin(ctx, BeginRequest{
		BuyerID:   uuid.New(),
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.IntentPending, intent.Status)
	assert.Equal(t, 1, intents.pendingCount())
	assert.WithinDuration(t, intent.CreatedAt.Add(DefaultPendingTTL), intent.ExpiresAt, time.Second)
	assert.Len(t, publisher.events, 1)
}

func TestGateBeginRejectsWhenNotLive(t *testing.T) {
	ctx := context.Background()

	show := liveShow()
	show.StreamPhase = entities.StreamStarting
	gate, intents, _ := newTestGate(show, buyableProduct())

	_, err := gate.Begin(ctx, BeginRequest{
		BuyerID:   uuid.New(),
		ShowID:    show.ShowID,
		ProductID: uuid.New(),
	})

	assert.ErrorIs(t, err, ErrBuyingClosed)
	assert.Equal(t, 0, intents.pendingCount())
}

func TestGateBeginBypassClaimSkipsGating(t *testing.T) {
	ctx := context.Background()

	show := liveShow()
	show.StreamPhase = entities.StreamStarting
	gate, _, _ := newTestGate(show, buyableProduct())

	_, err := gate.Begin(ctx, BeginRequest{
		BuyerID:   uuid.New(),
		ShowID:    show.ShowID,
		ProductID: uuid.New(),
		Claims:    entities.Claims{BypassGating: true},
	})

	assert.NoError(t, err)
}

func TestGateBeginRequiresAuth(t *testing.T) {
	ctx := context.Background()
	gate, intents, _ := newTestGate(liveShow(), buyableProduct())

	_, err := gate.Begin(ctx, BeginRequest{
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
	})

	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, 0, intents.pendingCount())
}

func TestGateBeginRejectsSoldOut(t *testing.T) {
	ctx := context.Background()

	for name, product := range map[string]entities.ShowProduct{
		"zero quantity": {Quantity: 0, IsAvailable: true},
		"unavailable":   {Quantity: 3, IsAvailable: false},
		"giveaway":      {Quantity: 3, IsAvailable: true, IsGiveaway: true},
	} {
		t.Run(name, func(t *testing.T) {
			gate, intents, _ := newTestGate(liveShow(), product)

			_, err := gate.Begin(ctx, BeginRequest{
				BuyerID:   uuid.New(),
				ShowID:    uuid.New(),
				ProductID: uuid.New(),
			})

			assert.ErrorIs(t, err, ErrSoldOut)
			assert.Equal(t, 0, intents.pendingCount())
		})
	}
}

func TestGateBeginConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	gate, intents, _ := newTestGate(liveShow(), buyableProduct())

	buyerID := uuid.New()
	productID := uuid.New()
	showID := uuid.New()

	const attempts = 16
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gate.Begin(ctx, BeginRequest{
				BuyerID:   buyerID,
				ShowID:    showID,
				ProductID: productID,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	inFlight := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrAlreadyInFlight):
			inFlight++
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one attempt may win the slot")
	assert.Equal(t, attempts-1, inFlight)
	assert.Equal(t, 1, intents.pendingCount())
}

func TestGateFailFreesSlotImmediately(t *testing.T) {
	ctx := context.Background()
	gate, intents, _ := newTestGate(liveShow(), buyableProduct())

	req := BeginRequest{
		BuyerID:   uuid.New(),
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
	}

	intent, err := gate.Begin(ctx, req)
	require.NoError(t, err)

	_, err = gate.Begin(ctx, req)
	require.ErrorIs(t, err, ErrAlreadyInFlight)

	require.NoError(t, gate.Fail(ctx, intent.IntentID, "card declined"))
	assert.Equal(t, 0, intents.pendingCount())

	_, err = gate.Begin(ctx, req)
	assert.NoError(t, err, "slot is free again after terminal failure")
}

func TestGateFulfillIsSingleShot(t *testing.T) {
	ctx := context.Background()
	gate, _, _ := newTestGate(liveShow(), buyableProduct())

	intent, err := gate.Begin(ctx, BeginRequest{
		BuyerID:   uuid.New(),
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, gate.Fulfill(ctx, intent.IntentID))
	assert.ErrorIs(t, gate.Fulfill(ctx, intent.IntentID), ErrIntentNotPending)
}

func TestGateCancelOnlyByOwner(t *testing.T) {
	ctx := context.Background()
	gate, intents, _ := newTestGate(liveShow(), buyableProduct())

	buyerID := uuid.New()
	intent, err := gate.Begin(ctx, BeginRequest{
		BuyerID:   buyerID,
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, gate.Cancel(ctx, intent.IntentID, uuid.New()), ErrIntentNotPending)
	assert.Equal(t, 1, intents.pendingCount())

	require.NoError(t, gate.Cancel(ctx, intent.IntentID, buyerID))
	assert.Equal(t, 0, intents.pendingCount())
}

func TestGateSweepExpired(t *testing.T) {
	ctx := context.Background()
	gate, intents, _ := newTestGate(liveShow(), buyableProduct())
	gate.pendingTTL = -time.Minute // born expired

	req := BeginRequest{
		BuyerID:   uuid.New(),
		ShowID:    uuid.New(),
		ProductID: uuid.New(),
	}
	_, err := gate.Begin(ctx, req)
	require.NoError(t, err)

	swept, err := gate.SweepExpired(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), swept)
	assert.Equal(t, 0, intents.pendingCount())

	_, err = gate.Begin(ctx, req)
	assert.NoError(t, err, "expiry releases the uniqueness slot")
}
