package event

import (
	"context"
	"fmt"

	"liveshop/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// AttachSettledOrder puts a freshly settled order into its buyer's pickup
// batch. The repository makes this idempotent, so redeliveries are safe.
func (h Handler) AttachSettledOrder(ctx context.Context, event *entities.OrderSettled_v1) error {
	log.FromContext(ctx).
		WithField("order_id", event.OrderID).
		Info("Attaching settled order to pickup batch")

	_, err := h.batchRepo.AttachSettledOrder(ctx, entities.Order{
		OrderID:   event.OrderID,
		BuyerID:   event.BuyerID,
		SellerID:  event.SellerID,
		ShowID:    event.ShowID,
		ProductID: event.ProductID,
		Status:    entities.OrderPaid,
		Price:     event.Price,
		PaidAt:    event.Header.PublishedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to attach settled order %s: %w", event.OrderID, err)
	}

	return nil
}
