package event

import (
	"context"
	"fmt"

	"liveshop/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// RequestReview asks the buyer for a review once their batch has been picked
// up. Delivery is decoupled from the pickup transition itself; the event is
// redelivered until the notifications service accepts it.
func (h Handler) RequestReview(ctx context.Context, event *entities.BatchPickupCompleted_v1) error {
	log.FromContext(ctx).
		WithField("batch_id", event.BatchID).
		Info("Requesting pickup review from buyer")

	err := h.notifications.NotifyReviewRequest(ctx, event.BuyerID, event.SellerID, event.RepresentativeOrderID)
	if err != nil {
		return fmt.Errorf("failed to request review for batch %s: %w", event.BatchID, err)
	}

	return nil
}

func (h Handler) NotifyBatchCancelled(ctx context.Context, event *entities.BatchCancelled_v1) error {
	log.FromContext(ctx).
		WithField("batch_id", event.BatchID).
		Info("Notifying buyer about cancelled batch")

	return h.notifications.NotifyBatchCancelled(ctx, event.BuyerID, event.BatchID)
}
