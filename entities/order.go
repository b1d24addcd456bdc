package entities

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPaid      OrderStatus = "paid"
	OrderPickedUp  OrderStatus = "picked_up"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// ActorAutoHeal is the pickup attribution used when the background healer
// repairs an order instead of a human actor.
const ActorAutoHeal = "auto-heal"

// Order is one purchased unit. It is created by the settlement path and from
// then on only ever moves forward: paid is the only non-terminal state.
type Order struct {
	OrderID   uuid.UUID  `json:"order_id" db:"order_id"`
	BatchID   *uuid.UUID `json:"batch_id,omitempty" db:"batch_id"`
	BuyerID   uuid.UUID  `json:"buyer_id" db:"buyer_id"`
	SellerID  uuid.UUID  `json:"seller_id" db:"seller_id"`
	ShowID    uuid.UUID  `json:"show_id" db:"show_id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`

	Status OrderStatus `json:"status" db:"status"`
	Price  Money       `json:"price" db:"price"`

	PaidAt     time.Time  `json:"paid_at" db:"paid_at"`
	PickedUpAt *time.Time `json:"picked_up_at,omitempty" db:"picked_up_at"`
	PickedUpBy *string    `json:"picked_up_by,omitempty" db:"picked_up_by"`
}

// CountsForCompletion reports whether the order still counts toward its
// batch's completion. Cancelled and refunded orders are excluded.
func (o Order) CountsForCompletion() bool {
	return o.Status == OrderPaid || o.Status == OrderPickedUp
}
