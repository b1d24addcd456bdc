package entities

import "github.com/google/uuid"

// HealSellerBatches asks for one healing pass over the seller's completed
// batches, outside the periodic schedule.
type HealSellerBatches struct {
	Header EventHeader `json:"header"`

	SellerID uuid.UUID `json:"seller_id"`
}

type CancelBatch struct {
	Header EventHeader `json:"header"`

	BatchID     uuid.UUID `json:"batch_id"`
	CancelledBy string    `json:"cancelled_by"`
}
