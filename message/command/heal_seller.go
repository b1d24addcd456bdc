package command

import (
	"context"
	"fmt"

	"liveshop/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

func (h Handler) HealSellerBatches(ctx context.Context, cmd *entities.HealSellerBatches) error {
	healed, err := h.healer.Heal(ctx, cmd.SellerID)
	if err != nil {
		return fmt.Errorf("failed to heal batches for seller %s: %w", cmd.SellerID, err)
	}

	log.FromContext(ctx).
		WithField("seller_id", cmd.SellerID).
		WithField("healed_orders", healed).
		Info("On-demand heal pass finished")

	return nil
}
