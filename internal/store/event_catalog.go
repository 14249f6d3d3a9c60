package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"ticketing-app/internal/status"
	"ticketing-app/models"
)

// EventCatalog persists events and owns the ticket-availability
// counters. All counter mutation goes through single-row conditional
// updates, so concurrent admissions for the last ticket cannot both
// succeed.
type EventCatalog struct {
	app core.App
}

func NewEventCatalog(app core.App) *EventCatalog {
	return &EventCatalog{app: app}
}

func (c *EventCatalog) FindByID(ctx context.Context, id string) (*models.Event, error) {
	record, err := c.app.FindRecordById("events", id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", status.ErrEventNotFound, id)
	}
	return eventFromRecord(record), nil
}

func (c *EventCatalog) List(ctx context.Context) ([]*models.Event, error) {
	records, err := c.app.FindRecordsByFilter("events", "id != ''", "-date", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]*models.Event, 0, len(records))
	for _, record := range records {
		events = append(events, eventFromRecord(record))
	}
	return events, nil
}

// Create stores a new event. Available tickets always start at the
// total; availability is only ever moved by reservations afterwards.
func (c *EventCatalog) Create(ctx context.Context, ev *models.Event) (*models.Event, error) {
	collection, err := c.app.FindCollectionByNameOrId("events")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}

	record := core.NewRecord(collection)
	record.Set("name", ev.Name)
	record.Set("description", ev.Description)
	record.Set("date", ev.Date)
	record.Set("location", ev.Location)
	record.Set("price", ev.Price.InexactFloat64())
	record.Set("total_tickets", ev.TotalTickets)
	record.Set("available_tickets", ev.TotalTickets)

	if err := c.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}
	return eventFromRecord(record), nil
}

// ReserveTicket decrements the event's available counter, but only
// while stock remains. The decrement and the stock check are a single
// conditional write; zero matched rows means the event is sold out.
func (c *EventCatalog) ReserveTicket(ctx context.Context, id string) error {
	res, err := c.app.DB().NewQuery(
		"UPDATE events SET available_tickets = available_tickets - 1 WHERE id = {:id} AND available_tickets > 0",
	).Bind(dbx.Params{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("reserve ticket: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve ticket: %w", err)
	}
	if affected == 0 {
		return status.ErrSoldOut
	}
	return nil
}

// ReleaseTicket gives a reserved ticket back, compensating an order
// that did not complete. The counter never exceeds the event total.
func (c *EventCatalog) ReleaseTicket(ctx context.Context, id string) error {
	res, err := c.app.DB().NewQuery(
		"UPDATE events SET available_tickets = available_tickets + 1 WHERE id = {:id} AND available_tickets < total_tickets",
	).Bind(dbx.Params{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("release ticket: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release ticket: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("release ticket: %w: %s", status.ErrEventNotFound, id)
	}
	return nil
}

func eventFromRecord(record *core.Record) *models.Event {
	return &models.Event{
		ID:               record.Id,
		Name:             record.GetString("name"),
		Description:      record.GetString("description"),
		Date:             record.GetDateTime("date").Time(),
		Location:         record.GetString("location"),
		Price:            decimal.NewFromFloat(record.GetFloat("price")),
		TotalTickets:     record.GetInt("total_tickets"),
		AvailableTickets: record.GetInt("available_tickets"),
	}
}
