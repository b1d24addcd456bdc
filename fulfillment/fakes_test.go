package fulfillment

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"liveshop/entities"

	"github.com/google/uuid"
)

// fulfillmentStoreMock backs both repository interfaces with the same
// conditional, forward-only transitions the SQL layer implements.
type fulfillmentStoreMock struct {
	lock sync.Mutex

	batches map[uuid.UUID]entities.Batch
	orders  map[uuid.UUID]entities.Order

	healErr map[uuid.UUID]error
}

func newFulfillmentStoreMock() *fulfillmentStoreMock {
	return &fulfillmentStoreMock{
		batches: map[uuid.UUID]entities.Batch{},
		orders:  map[uuid.UUID]entities.Order{},
		healErr: map[uuid.UUID]error{},
	}
}

func (m *fulfillmentStoreMock) addBatch(batch entities.Batch) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.batches[batch.BatchID] = batch
}

func (m *fulfillmentStoreMock) addOrder(order entities.Order) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.orders[order.OrderID] = order
}

func (m *fulfillmentStoreMock) order(orderID uuid.UUID) entities.Order {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.orders[orderID]
}

func (m *fulfillmentStoreMock) batch(batchID uuid.UUID) entities.Batch {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.batches[batchID]
}

func (m *fulfillmentStoreMock) ByID(ctx context.Context, batchID uuid.UUID) (entities.Batch, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	batch, ok := m.batches[batchID]
	if !ok {
		return entities.Batch{}, sql.ErrNoRows
	}
	return batch, nil
}

func (m *fulfillmentStoreMock) CompletedBySeller(ctx context.Context, sellerID uuid.UUID) ([]entities.Batch, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var completed []entities.Batch
	for _, batch := range m.batches {
		if batch.SellerID != sellerID || batch.Status != entities.BatchCompleted {
			continue
		}
		if m.batchOrderCountLocked(batch.BatchID) == 0 {
			continue
		}
		completed = append(completed, batch)
	}
	return completed, nil
}

func (m *fulfillmentStoreMock) SellersWithCompletedBatches(ctx context.Context) ([]uuid.UUID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	seen := map[uuid.UUID]bool{}
	var sellers []uuid.UUID
	for _, batch := range m.batches {
		if batch.Status == entities.BatchCompleted && !seen[batch.SellerID] {
			seen[batch.SellerID] = true
			sellers = append(sellers, batch.SellerID)
		}
	}
	return sellers, nil
}

func (m *fulfillmentStoreMock) CompletePickup(ctx context.Context, batchID uuid.UUID, actor string) (entities.PickupResult, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	batch, ok := m.batches[batchID]
	if !ok {
		return entities.PickupResult{}, sql.ErrNoRows
	}
	if batch.Status == entities.BatchCancelled {
		return entities.PickupResult{}, ErrBatchCancelled
	}

	alreadyCompleted := batch.Status == entities.BatchCompleted
	picked := m.pickUpPaidOrdersLocked(batchID, actor)

	if !alreadyCompleted {
		now := time.Now().UTC()
		batch.Status = entities.BatchCompleted
		batch.CompletedAt = &now
		batch.CompletedBy = &actor
		m.batches[batchID] = batch
	}

	return entities.PickupResult{
		Batch:            m.batches[batchID],
		PickedOrderIDs:   picked,
		AlreadyCompleted: alreadyCompleted,
	}, nil
}

func (m *fulfillmentStoreMock) RecomputeStatus(ctx context.Context, batchID uuid.UUID) (entities.BatchStatus, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	batch, ok := m.batches[batchID]
	if !ok {
		return "", sql.ErrNoRows
	}
	if batch.Status == entities.BatchCompleted || batch.Status == entities.BatchCancelled {
		return batch.Status, nil
	}

	total, picked := 0, 0
	for _, order := range m.orders {
		if order.BatchID == nil || *order.BatchID != batchID || !order.CountsForCompletion() {
			continue
		}
		total++
		if order.Status == entities.OrderPickedUp {
			picked++
		}
	}

	switch {
	case total > 0 && picked == total:
		batch.Status = entities.BatchCompleted
	case picked > 0:
		batch.Status = entities.BatchPartial
	default:
		batch.Status = entities.BatchPending
	}
	m.batches[batchID] = batch
	return batch.Status, nil
}

func (m *fulfillmentStoreMock) Cancel(ctx context.Context, batchID uuid.UUID, actor string) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	batch, ok := m.batches[batchID]
	if !ok || (batch.Status != entities.BatchPending && batch.Status != entities.BatchPartial) {
		return false, nil
	}

	now := time.Now().UTC()
	batch.Status = entities.BatchCancelled
	batch.CancelledAt = &now
	m.batches[batchID] = batch
	return true, nil
}

func (m *fulfillmentStoreMock) ByBatch(ctx context.Context, batchID uuid.UUID) ([]entities.Order, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var orders []entities.Order
	for _, order := range m.orders {
		if order.BatchID != nil && *order.BatchID == batchID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *fulfillmentStoreMock) HealBatchOrders(ctx context.Context, batchID uuid.UUID, actor string) ([]uuid.UUID, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.healErr[batchID]; err != nil {
		return nil, err
	}

	return m.pickUpPaidOrdersLocked(batchID, actor), nil
}

func (m *fulfillmentStoreMock) MarkPickedUp(ctx context.Context, orderID uuid.UUID, actor string) (*entities.Order, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	order, ok := m.orders[orderID]
	if !ok || order.Status != entities.OrderPaid {
		return nil, nil
	}

	now := time.Now().UTC()
	order.Status = entities.OrderPickedUp
	order.PickedUpAt = &now
	order.PickedUpBy = &actor
	m.orders[orderID] = order
	return &order, nil
}

func (m *fulfillmentStoreMock) pickUpPaidOrdersLocked(batchID uuid.UUID, actor string) []uuid.UUID {
	var picked []uuid.UUID
	now := time.Now().UTC()
	for id, order := range m.orders {
		if order.BatchID == nil || *order.BatchID != batchID || order.Status != entities.OrderPaid {
			continue
		}
		order.Status = entities.OrderPickedUp
		order.PickedUpAt = &now
		order.PickedUpBy = &actor
		m.orders[id] = order
		picked = append(picked, id)
	}
	return picked
}

func (m *fulfillmentStoreMock) batchOrderCountLocked(batchID uuid.UUID) int {
	count := 0
	for _, order := range m.orders {
		if order.BatchID != nil && *order.BatchID == batchID {
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

func (m *publisherMock) byType(match func(any) bool) []any {
	m.lock.Lock()
	defer m.lock.Unlock()

	var found []any
	for _, event := range m.events {
		if match(event) {
			found = append(found, event)
		}
	}
	return found
}

func (m *publisherMock) completionNotices() []entities.BatchPickupCompleted_v1 {
	var notices []entities.BatchPickupCompleted_v1
	for _, event := range m.byType(func(e any) bool {
		_, ok := e.(entities.BatchPickupCompleted_v1)
		return ok
	}) {
		notices = append(notices, event.(entities.BatchPickupCompleted_v1))
	}
	return notices
}
