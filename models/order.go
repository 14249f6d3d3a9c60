package models

import (
	"time"

	"ticketing-app/internal/status"
)

type Order struct {
	ID         string             `json:"id"`
	EventID    string             `json:"event_id"`
	BuyerName  string             `json:"buyer_name"`
	BuyerEmail string             `json:"buyer_email"`
	BuyerPhone string             `json:"buyer_phone"`
	Status     status.OrderStatus `json:"status"`
	// Reference is the gateway-facing order id ("ORDER-<uuid>").
	// Immutable and unique once assigned.
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentSession is the ephemeral credential pair the gateway returns
// for exactly one order. It is cached, never persisted.
type PaymentSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	Reference   string `json:"reference"`
}
