package entities

import (
	"time"

	"github.com/google/uuid"
)

// OpsBatch is the ops-facing read model of one pickup batch, denormalized
// into a single JSON document per batch.
type OpsBatch struct {
	BatchID  uuid.UUID `json:"batch_id"`
	BuyerID  uuid.UUID `json:"buyer_id"`
	SellerID uuid.UUID `json:"seller_id"`
	ShowID   uuid.UUID `json:"show_id"`

	Status string `json:"status"`

	Orders map[string]OpsOrder `json:"orders"`

	CreatedAt  time.Time `json:"created_at"`
	LastUpdate time.Time `json:"last_update"`
}

type OpsOrder struct {
	ProductID uuid.UUID `json:"product_id"`

	// Status mirrors the order status: paid, picked_up, cancelled, refunded.
	Status string `json:"status"`

	PickedUpAt time.Time `json:"picked_up_at,omitempty"`
	PickedUpBy string    `json:"picked_up_by,omitempty"`
}
