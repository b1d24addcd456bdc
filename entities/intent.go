package entities

import (
	"time"

	"github.com/google/uuid"
)

type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentFulfilled IntentStatus = "fulfilled"
	IntentExpired   IntentStatus = "expired"
	IntentFailed    IntentStatus = "failed"
)

// CheckoutIntent is a short-lived reservation for an in-progress checkout.
// At most one pending intent may exist per (buyer, product) at any time.
type CheckoutIntent struct {
	IntentID  uuid.UUID `json:"intent_id" db:"intent_id"`
	BuyerID   uuid.UUID `json:"buyer_id" db:"buyer_id"`
	ShowID    uuid.UUID `json:"show_id" db:"show_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`

	Status IntentStatus `json:"status" db:"status"`

	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	FailReason *string    `json:"fail_reason,omitempty" db:"fail_reason"`
}

// Claims are capability claims carried by the caller of a gated operation,
// checked once at the entry of the operation.
type Claims struct {
	BypassGating bool `json:"bypass_gating"`
}
