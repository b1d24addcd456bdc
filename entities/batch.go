package entities

import (
	"time"

	"github.com/google/uuid"
)

type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchPartial   BatchStatus = "partial"
	BatchCompleted BatchStatus = "completed"
	BatchCancelled BatchStatus = "cancelled"
)

// CompletionCodeLength is the fixed length of the numeric pickup code
// generated at batch creation.
const CompletionCodeLength = 6

// Batch is a buyer's aggregate pickup unit for one show. Its completion code
// is generated at creation and immutable; its status only moves forward
// (pending -> partial -> completed), with cancelled reachable from pending
// and partial only.
type Batch struct {
	BatchID  uuid.UUID `json:"batch_id" db:"batch_id"`
	BuyerID  uuid.UUID `json:"buyer_id" db:"buyer_id"`
	SellerID uuid.UUID `json:"seller_id" db:"seller_id"`
	ShowID   uuid.UUID `json:"show_id" db:"show_id"`

	Status         BatchStatus `json:"status" db:"status"`
	CompletionCode string      `json:"completion_code" db:"completion_code"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CompletedBy *string    `json:"completed_by,omitempty" db:"completed_by"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// PickupResult describes the outcome of one pickup verification against the
// store: which orders transitioned and whether the batch had already been
// completed before the call.
type PickupResult struct {
	Batch            Batch
	PickedOrderIDs   []uuid.UUID
	AlreadyCompleted bool
}
