package command

import (
	"context"
	"errors"
	"fmt"

	"liveshop/entities"
	"liveshop/fulfillment"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

func (h Handler) CancelBatch(ctx context.Context, cmd *entities.CancelBatch) error {
	err := h.canceller.CancelBatch(ctx, cmd.BatchID, cmd.CancelledBy)
	if errors.Is(err, fulfillment.ErrBatchNotCancellable) {
		// already completed or cancelled; retrying won't change that
		log.FromContext(ctx).
			WithField("batch_id", cmd.BatchID).
			Warn("Skipping cancel of non-cancellable batch")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to cancel batch %s: %w", cmd.BatchID, err)
	}

	return nil
}
