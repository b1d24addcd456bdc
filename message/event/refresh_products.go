package event

import (
	"context"
	"fmt"

	"liveshop/entities"
	"liveshop/session"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// RefreshProducts re-projects the buyer-visible product list as soon as an
// inventory change is reported, instead of waiting for the next poll tick.
func (h Handler) RefreshProducts(ctx context.Context, event *entities.InventoryChanged_v1) error {
	log.FromContext(ctx).
		WithField("show_id", event.ShowID).
		Info("Re-projecting products after inventory change")

	show, err := h.showRepo.ByID(ctx, event.ShowID)
	if err != nil {
		return fmt.Errorf("failed to read show %s: %w", event.ShowID, err)
	}

	products, err := h.productRepo.ByShow(ctx, event.ShowID)
	if err != nil {
		return fmt.Errorf("failed to read products for show %s: %w", event.ShowID, err)
	}

	state := session.DeriveSessionState(show)
	h.snapshots.SetProducts(event.ShowID, session.ProjectProducts(products, state))

	return nil
}
