package event

import (
	"context"

	"liveshop/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// RecordViewerReport feeds a pushed viewer count into the reconciler. The
// value is displayed immediately; the poll loop reconciles and persists it.
func (h Handler) RecordViewerReport(ctx context.Context, event *entities.ShowViewersReported_v1) error {
	log.FromContext(ctx).
		WithField("show_id", event.ShowID).
		WithField("viewer_count", event.ViewerCount).
		Debug("Recording pushed viewer count")

	h.reconciler.ObservePush(event.ShowID, event.ViewerCount)
	return nil
}
