package orders

import "time"

// Identity is the caller identity produced by the auth collaborator. The
// order owner is always stamped from it, never from the request body.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

type Order struct {
	ID         string      `json:"id"`
	CreatedBy  string      `json:"createdBy"`
	Items      []OrderItem `json:"orderItems"`
	GrandTotal int64       `json:"grandTotal"` // minor currency units
	Status     Status      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// OrderItem carries a price snapshot captured at placement time; it never
// changes after the order is written, even if the product record does.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}
