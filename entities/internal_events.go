package entities

import "github.com/google/uuid"

type InternalFulfillmentReadModelUpdated struct {
	Header EventHeader `json:"header"`

	BatchID uuid.UUID `json:"batch_id"`
}

func (InternalFulfillmentReadModelUpdated) IsInternal() bool { return true }
