package entities

import "github.com/google/uuid"

type Money struct {
	Amount   string `json:"amount" db:"amount"`
	Currency string `json:"currency" db:"currency"`
}

type ShowProduct struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	ShowID    uuid.UUID `json:"show_id" db:"show_id"`
	Name      string    `json:"name" db:"name"`
	Price     Money     `json:"price" db:"price"`
	// Quantity is decremented by the settlement path; this service only
	// reads it.
	Quantity    int  `json:"quantity" db:"quantity"`
	BoxNumber   int  `json:"box_number" db:"box_number"`
	IsAvailable bool `json:"is_available" db:"is_available"`
	// Giveaway products are zero-price and surfaced through a separate
	// flow, never through the buyable product list.
	IsGiveaway bool `json:"is_giveaway" db:"is_giveaway"`
}

type ProductCreateResponse struct {
	ProductID uuid.UUID `json:"product_id"`
}

// VisibleProduct is one entry of the buyer-facing product list.
type VisibleProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     Money     `json:"price"`
	Quantity  int       `json:"quantity"`
	BoxNumber int       `json:"box_number"`
}
