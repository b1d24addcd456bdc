package event

import (
	"context"

	"liveshop/entities"
	"liveshop/session"

	"github.com/google/uuid"
)

type BatchRepository interface {
	AttachSettledOrder(ctx context.Context, order entities.Order) (entities.Batch, error)
}

type ShowRepository interface {
	ByID(ctx context.Context, showID uuid.UUID) (entities.Show, error)
}

type ProductRepository interface {
	ByShow(ctx context.Context, showID uuid.UUID) ([]entities.ShowProduct, error)
}

type NotificationsService interface {
	// NotifyReviewRequest asks the buyer to leave a review for the seller,
	// anchored on one representative order of the picked-up batch.
	NotifyReviewRequest(ctx context.Context, buyerID, sellerID, orderID uuid.UUID) error
	NotifyBatchCancelled(ctx context.Context, buyerID uuid.UUID, batchID uuid.UUID) error
}

type Handler struct {
	batchRepo     BatchRepository
	showRepo      ShowRepository
	productRepo   ProductRepository
	notifications NotificationsService
	reconciler    *session.ViewerReconciler
	snapshots     *session.SnapshotStore
}

func NewHandler(
	batchRepo BatchRepository,
	showRepo ShowRepository,
	productRepo ProductRepository,
	notifications NotificationsService,
	reconciler *session.ViewerReconciler,
	snapshots *session.SnapshotStore,
) Handler {
	if batchRepo == nil {
		panic("missing batchRepo")
	}
	if notifications == nil {
		panic("missing notifications service")
	}
	return Handler{
		batchRepo:     batchRepo,
		showRepo:      showRepo,
		productRepo:   productRepo,
		notifications: notifications,
		reconciler:    reconciler,
		snapshots:     snapshots,
	}
}
