package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: uuid.NewString(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// IEvent is implemented by every event published on the bus. Internal events
// stay on service-private topics.
type IEvent interface {
	IsInternal() bool
}

// OrderSettled_v1 arrives from the settlement path once payment capture
// succeeded. It is the trigger for batch assignment.
type OrderSettled_v1 struct {
	Header EventHeader `json:"header"`

	OrderID   uuid.UUID `json:"order_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	ShowID    uuid.UUID `json:"show_id"`
	ProductID uuid.UUID `json:"product_id"`
	Price     Money     `json:"price"`
}

func (OrderSettled_v1) IsInternal() bool { return false }

// OrderBatched_v1 is published transactionally (through the outbox) when an
// order gets attached to its buyer's pickup batch.
type OrderBatched_v1 struct {
	Header EventHeader `json:"header"`

	OrderID uuid.UUID `json:"order_id"`
	BatchID uuid.UUID `json:"batch_id"`
	BuyerID uuid.UUID `json:"buyer_id"`
	ShowID  uuid.UUID `json:"show_id"`
}

func (OrderBatched_v1) IsInternal() bool { return false }

type OrderPickedUp_v1 struct {
	Header EventHeader `json:"header"`

	OrderID    uuid.UUID `json:"order_id"`
	BatchID    uuid.UUID `json:"batch_id"`
	PickedUpBy string    `json:"picked_up_by"`
	PickedUpAt time.Time `json:"picked_up_at"`
}

func (OrderPickedUp_v1) IsInternal() bool { return false }

// BatchPickupCompleted_v1 is emitted best-effort after a batch reaches
// completed; its delivery failure never rolls back the pickup itself.
type BatchPickupCompleted_v1 struct {
	Header EventHeader `json:"header"`

	BatchID  uuid.UUID `json:"batch_id"`
	BuyerID  uuid.UUID `json:"buyer_id"`
	SellerID uuid.UUID `json:"seller_id"`
	ShowID   uuid.UUID `json:"show_id"`

	CompletedBy string `json:"completed_by"`
	// RepresentativeOrderID points the buyer's review request at one
	// concrete order of the batch.
	RepresentativeOrderID uuid.UUID `json:"representative_order_id"`
}

func (BatchPickupCompleted_v1) IsInternal() bool { return false }

type BatchCancelled_v1 struct {
	Header EventHeader `json:"header"`

	BatchID     uuid.UUID `json:"batch_id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	CancelledBy string    `json:"cancelled_by"`
}

func (BatchCancelled_v1) IsInternal() bool { return false }

// InventoryChanged_v1 is emitted by the settlement path so a successful
// purchase shows up faster than the inventory poll interval.
type InventoryChanged_v1 struct {
	Header EventHeader `json:"header"`

	ShowID    uuid.UUID `json:"show_id"`
	ProductID uuid.UUID `json:"product_id"`
}

func (InventoryChanged_v1) IsInternal() bool { return false }

// ShowViewersReported_v1 carries a push-based viewer count from the video
// SDK bridge. It is advisory input, reconciled against the polled count.
type ShowViewersReported_v1 struct {
	Header EventHeader `json:"header"`

	ShowID      uuid.UUID `json:"show_id"`
	ViewerCount int       `json:"viewer_count"`
}

func (ShowViewersReported_v1) IsInternal() bool { return false }

type CheckoutIntentCreated_v1 struct {
	Header EventHeader `json:"header"`

	IntentID  uuid.UUID `json:"intent_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	ShowID    uuid.UUID `json:"show_id"`
	ProductID uuid.UUID `json:"product_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (CheckoutIntentCreated_v1) IsInternal() bool { return false }

type CheckoutIntentResolved_v1 struct {
	Header EventHeader `json:"header"`

	IntentID uuid.UUID    `json:"intent_id"`
	Status   IntentStatus `json:"status"`
	Reason   string       `json:"reason,omitempty"`
}

func (CheckoutIntentResolved_v1) IsInternal() bool { return false }

// Event is the data-lake record shape for any event consumed by the service.
type Event struct {
	EventID   string          `json:"event_id"`
	Header    EventHeader     `json:"header"`
	EventName string          `json:"event_name"`
	Payload   json.RawMessage `json:"payload"`
}
