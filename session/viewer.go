package session

import (
	"context"
	"fmt"
	"sync"

	"liveshop/entities"

	"github.com/google/uuid"
)

type ShowViewerStore interface {
	ByID(ctx context.Context, showID uuid.UUID) (entities.Show, error)
	WriteBackViewerCounts(ctx context.Context, showID uuid.UUID, displayed, max int) error
}

type pushState struct {
	seen bool
	last int
}

// ViewerReconciler merges the push-based viewer count from the video SDK with
// the periodically polled server count into one displayed value.
//
// The SDK feed is advisory: it can be silent for long stretches and reports
// zero during warm-up. The polled count is authoritative, except that a
// polled zero after any push has been seen is treated as a backend
// propagation gap and the last push value is retained. That guard is kept
// verbatim from the reference behavior; if the push feed disconnects without
// re-zeroing it can pin a stale count indefinitely.
type ViewerReconciler struct {
	store ShowViewerStore

	mu     sync.Mutex
	push   map[uuid.UUID]pushState
	merged map[uuid.UUID]int
}

func NewViewerReconciler(store ShowViewerStore) *ViewerReconciler {
	if store == nil {
		panic("store is nil")
	}
	return &ViewerReconciler{
		store:  store,
		push:   map[uuid.UUID]pushState{},
		merged: map[uuid.UUID]int{},
	}
}

// ObservePush records a viewer count reported by the video SDK. The value is
// displayed immediately; the next poll tick reconciles and writes it back.
func (r *ViewerReconciler) ObservePush(showID uuid.UUID, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.push[showID] = pushState{seen: true, last: count}
	r.merged[showID] = count
}

// Displayed returns the last merged count for the show.
func (r *ViewerReconciler) Displayed(showID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.merged[showID]
}

// ReconcilePoll reads the show record, merges the polled count with the push
// feed and writes the merged values back so concurrent readers converge. On
// a failed poll the last merged value is retained and the error is left to
// the calling tick loop; it is never surfaced to buy gating.
func (r *ViewerReconciler) ReconcilePoll(ctx context.Context, showID uuid.UUID) (entities.Show, error) {
	show, err := r.store.ByID(ctx, showID)
	if err != nil {
		return entities.Show{}, fmt.Errorf("could not poll show %s: %w", showID, err)
	}

	displayed, max := r.merge(showID, show)

	if err := r.store.WriteBackViewerCounts(ctx, showID, displayed, max); err != nil {
		return entities.Show{}, fmt.Errorf("could not write back viewer counts for show %s: %w", showID, err)
	}

	show.DisplayedViewerCount = displayed
	show.MaxViewerCount = max

	return show, nil
}

func (r *ViewerReconciler) merge(showID uuid.UUID, show entities.Show) (displayed, max int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll := show.ServerViewerCount

	displayed = poll
	if push := r.push[showID]; push.seen && poll == 0 {
		displayed = push.last
	}
	r.merged[showID] = displayed

	// The high-water mark is monotonically non-decreasing for the lifetime
	// of the show.
	max = show.MaxViewerCount
	if poll > max {
		max = poll
	}
	if displayed > max {
		max = displayed
	}

	return displayed, max
}

// Forget drops the in-memory push state for a show that reached a terminal
// lifecycle status. The stored high-water mark is untouched.
func (r *ViewerReconciler) Forget(showID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.push, showID)
	delete(r.merged, showID)
}
