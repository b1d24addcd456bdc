package api

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ReviewRequest records one review ask: which buyer was prompted to review
// which seller, anchored on which order.
type ReviewRequest struct {
	BuyerID  uuid.UUID
	SellerID uuid.UUID
	OrderID  uuid.UUID
}

type NotificationsMock struct {
	lock sync.Mutex

	ReviewRequests   []ReviewRequest
	CancelledBatches []uuid.UUID
}

func (m *NotificationsMock) NotifyReviewRequest(ctx context.Context, buyerID, sellerID, orderID uuid.UUID) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.ReviewRequests = append(m.ReviewRequests, ReviewRequest{
		BuyerID:  buyerID,
		SellerID: sellerID,
		OrderID:  orderID,
	})
	return nil
}

func (m *NotificationsMock) NotifyBatchCancelled(ctx context.Context, buyerID, batchID uuid.UUID) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.CancelledBatches = append(m.CancelledBatches, batchID)
	return nil
}

func (m *NotificationsMock) Requested() []ReviewRequest {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]ReviewRequest(nil), m.ReviewRequests...)
}

func (m *NotificationsMock) Cancelled() []uuid.UUID {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]uuid.UUID(nil), m.CancelledBatches...)
}
