package event

import (
	"context"
	"testing"

	"liveshop/api"
	"liveshop/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchRepoStub struct{}

func (batchRepoStub) AttachSettledOrder(ctx context.Context, order entities.Order) (entities.Batch, error) {
	return entities.Batch{}, nil
}

func TestRequestReviewCarriesSellerIdentity(t *testing.T) {
	notifications := &api.NotificationsMock{}
	handler := NewHandler(batchRepoStub{}, nil, nil, notifications, nil, nil)

	buyerID := uuid.New()
	sellerID := uuid.New()
	orderID := uuid.New()

	err := handler.RequestReview(context.Background(), &entities.BatchPickupCompleted_v1{
		Header:                entities.NewEventHeader(),
		BatchID:               uuid.New(),
		BuyerID:               buyerID,
		SellerID:              sellerID,
		ShowID:                uuid.New(),
		CompletedBy:           "seller",
		RepresentativeOrderID: orderID,
	})
	require.NoError(t, err)

	requests := notifications.Requested()
	require.Len(t, requests, 1)
	assert.Equal(t, buyerID, requests[0].BuyerID)
	assert.Equal(t, sellerID, requests[0].SellerID, "review must name the seller it is for")
	assert.Equal(t, orderID, requests[0].OrderID)
}

func TestNotifyBatchCancelledTargetsBuyer(t *testing.T) {
	notifications := &api.NotificationsMock{}
	handler := NewHandler(batchRepoStub{}, nil, nil, notifications, nil, nil)

	batchID := uuid.New()

	err := handler.NotifyBatchCancelled(context.Background(), &entities.BatchCancelled_v1{
		Header:      entities.NewEventHeader(),
		BatchID:     batchID,
		BuyerID:     uuid.New(),
		CancelledBy: "ops",
	})
	require.NoError(t, err)

	require.Len(t, notifications.Cancelled(), 1)
	assert.Equal(t, batchID, notifications.Cancelled()[0])
}
