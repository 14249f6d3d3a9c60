package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Date             time.Time       `json:"date"`
	Location         string          `json:"location"`
	Price            decimal.Decimal `json:"price"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
}

// GrossAmount is the amount billed to the gateway for a single ticket.
// The gateway expects the source currency unit multiplied by 1000,
// truncated to an integer.
func (e *Event) GrossAmount() int64 {
	return e.Price.Mul(decimal.NewFromInt(1000)).IntPart()
}
