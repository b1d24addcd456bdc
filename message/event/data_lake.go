package event

import (
	"context"
	"encoding/json"
	"fmt"

	"liveshop/entities"

	"github.com/ThreeDotsLabs/watermill/message"
)

type EventsDataLake interface {
	Create(ctx context.Context, event entities.Event) error
}

// ExternalTopics lists every public topic the service publishes or consumes,
// used to tap the full stream into the data lake.
func ExternalTopics() []string {
	events := []any{
		entities.OrderSettled_v1{},
		entities.OrderBatched_v1{},
		entities.OrderPickedUp_v1{},
		entities.BatchPickupCompleted_v1{},
		entities.BatchCancelled_v1{},
		entities.InventoryChanged_v1{},
		entities.ShowViewersReported_v1{},
		entities.CheckoutIntentCreated_v1{},
		entities.CheckoutIntentResolved_v1{},
	}

	topics := make([]string, 0, len(events))
	for _, e := range events {
		topics = append(topics, externalTopicPrefix+marshaler.Name(e))
	}
	return topics
}

// StoreEventToDataLake appends the raw event to the data lake, deduplicated
// on the message ID.
func StoreEventToDataLake(repo EventsDataLake) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var body struct {
			Header entities.EventHeader `json:"header"`
		}
		if err := json.Unmarshal(msg.Payload, &body); err != nil {
			return fmt.Errorf("could not decode event header: %w", err)
		}

		return repo.Create(msg.Context(), entities.Event{
			EventID:   msg.UUID,
			Header:    body.Header,
			EventName: msg.Metadata.Get("name"),
			Payload:   json.RawMessage(msg.Payload),
		})
	}
}
