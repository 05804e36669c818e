package domain

import "time"

// Order is the confirmation for a simulated checkout. Nothing is charged;
// the order reference is what the confirmation page shows the shopper.
type Order struct {
	OrderRef        string    `json:"order_ref"`
	Identity        string    `json:"identity"`
	AccountID       string    `json:"account_id,omitempty"`
	PaymentMethodID string    `json:"payment_method_id,omitempty"`
	AmountISK       int       `json:"amount_isk"`
	Status          string    `json:"status"` // always "confirmed"
	PlacedAt        time.Time `json:"placed_at"`
}

// PlaceOrderRequest is the body for the simulated checkout endpoint.
type PlaceOrderRequest struct {
	AmountISK       int    `json:"amount_isk" validate:"required,gt=0"`
	PaymentMethodID string `json:"payment_method_id"`
}
