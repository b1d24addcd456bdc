package migrations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"liveshop/db"
	"liveshop/entities"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
)

// RebuildFulfillmentReadModel replays the data lake through the projection
// handlers, reconstructing every batch document. Safe to run against a live
// read model: all handlers are idempotent upserts.
func RebuildFulfillmentReadModel(ctx context.Context, dl db.IEventRepository, rm db.FulfillmentReadModel) error {
	logger := log.FromContext(ctx)
	logger.Info("Rebuilding fulfillment read model")

	var events []entities.Event
	timeout := time.Now().Add(time.Second * 10)

	// events land in the lake asynchronously, wait for the first batch
	for {
		var err error
		events, err = dl.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("could not get events from data lake: %w", err)
		}
		if len(events) > 0 {
			break
		}

		if time.Now().After(timeout) {
			return fmt.Errorf("timeout while waiting for events in data lake")
		}

		time.Sleep(time.Millisecond * 100)
	}

	logger.WithField("events_count", len(events)).Info("Has events to replay")

	for _, event := range events {
		start := time.Now()

		logger.WithFields(logrus.Fields{
			"event_name": event.EventName,
			"event_id":   event.EventID,
		}).Info("Replaying event")

		if err := replayEvent(ctx, event, rm); err != nil {
			return fmt.Errorf("could not replay event %s (%s): %w", event.EventID, event.EventName, err)
		}

		logger.WithField("duration", time.Since(start)).Info("Event replayed")
	}

	return nil
}

func replayEvent(ctx context.Context, event entities.Event, rm db.FulfillmentReadModel) error {
	switch event.EventName {
	case "entities.OrderBatched_v1":
		orderBatched, err := unmarshalDataLakeEvent[entities.OrderBatched_v1](event)
		if err != nil {
			return err
		}
		return rm.OnOrderBatched(ctx, orderBatched)
	case "entities.OrderPickedUp_v1":
		orderPickedUp, err := unmarshalDataLakeEvent[entities.OrderPickedUp_v1](event)
		if err != nil {
			return err
		}
		return rm.OnOrderPickedUp(ctx, orderPickedUp)
	case "entities.BatchPickupCompleted_v1":
		pickupCompleted, err := unmarshalDataLakeEvent[entities.BatchPickupCompleted_v1](event)
		if err != nil {
			return err
		}
		return rm.OnBatchPickupCompleted(ctx, pickupCompleted)
	case "entities.BatchCancelled_v1":
		batchCancelled, err := unmarshalDataLakeEvent[entities.BatchCancelled_v1](event)
		if err != nil {
			return err
		}
		return rm.OnBatchCancelled(ctx, batchCancelled)
	default:
		// the lake also holds events the projection doesn't care about
		return nil
	}
}

func unmarshalDataLakeEvent[T any](event entities.Event) (*T, error) {
	eventInstance := new(T)

	err := json.Unmarshal(event.Payload, &eventInstance)
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal event %s: %w", event.EventName, err)
	}

	return eventInstance, nil
}
