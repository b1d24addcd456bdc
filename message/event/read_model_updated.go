package event

import (
	"context"

	"liveshop/entities"
	"liveshop/metrics"
)

// CountReadModelUpdate consumes the service-private projection event and
// keeps the update counter; the ops dashboard alerts on it going flat.
func (h Handler) CountReadModelUpdate(ctx context.Context, event *entities.InternalFulfillmentReadModelUpdated) error {
	metrics.ReadModelUpdates.Inc()
	return nil
}
