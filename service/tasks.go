package service

import (
	"context"
	"fmt"

	"liveshop/db"
	"liveshop/session"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
)

// refreshSessions is the poll half of viewer reconciliation: every tick it
// re-reads each tracked show, merges the pushed viewer counts, derives the
// session state from that same fresh read and publishes both into the
// snapshot. Shows that left the tracked set are released.
func refreshSessions(
	shows db.ShowRepository,
	reconciler *session.ViewerReconciler,
	snapshots *session.SnapshotStore,
) func(ctx context.Context) error {
	tracked := map[uuid.UUID]bool{}

	return func(ctx context.Context) error {
		current, err := shows.Tracked(ctx)
		if err != nil {
			return fmt.Errorf("could not list tracked shows: %w", err)
		}

		seen := map[uuid.UUID]bool{}
		for _, show := range current {
			seen[show.ShowID] = true

			fresh, err := reconciler.ReconcilePoll(ctx, show.ShowID)
			if err != nil {
				log.FromContext(ctx).
					WithField("show_id", show.ShowID).
					WithField("error", err.Error()).
					Error("Failed to reconcile show, keeping last snapshot")
				continue
			}

			state := session.DeriveSessionState(fresh)
			snapshots.SetSession(fresh.ShowID, state, fresh.DisplayedViewerCount, fresh.MaxViewerCount)
		}

		for showID := range tracked {
			if !seen[showID] {
				reconciler.Forget(showID)
				snapshots.Drop(showID)
			}
		}
		tracked = seen

		return nil
	}
}

func refreshProducts(
	shows db.ShowRepository,
	products db.ProductRepository,
	snapshots *session.SnapshotStore,
) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		current, err := shows.Tracked(ctx)
		if err != nil {
			return fmt.Errorf("could not list tracked shows: %w", err)
		}

		for _, show := range current {
			inventory, err := products.ByShow(ctx, show.ShowID)
			if err != nil {
				log.FromContext(ctx).
					WithField("show_id", show.ShowID).
					WithField("error", err.Error()).
					Error("Failed to refresh products, keeping last snapshot")
				continue
			}

			state := session.DeriveSessionState(show)
			snapshots.SetProducts(show.ShowID, session.ProjectProducts(inventory, state))
		}

		return nil
	}
}

func refreshFeaturedProducts(
	shows db.ShowRepository,
	snapshots *session.SnapshotStore,
) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		current, err := shows.Tracked(ctx)
		if err != nil {
			return fmt.Errorf("could not list tracked shows: %w", err)
		}

		for _, show := range current {
			snapshots.SetFeaturedProduct(show.ShowID, show.FeaturedProductID)
		}

		return nil
	}
}
