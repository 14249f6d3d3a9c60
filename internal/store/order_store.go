package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"ticketing-app/internal/status"
	"ticketing-app/models"
)

// OrderStore persists orders. Orders are keyed both by the store id
// and by the gateway reference; status changes go through a guarded
// conditional update so concurrent writers converge on the most
// advanced status.
type OrderStore struct {
	app core.App
}

func NewOrderStore(app core.App) *OrderStore {
	return &OrderStore{app: app}
}

// Insert persists a new order and returns it with the store-assigned id.
func (s *OrderStore) Insert(ctx context.Context, o *models.Order) (*models.Order, error) {
	collection, err := s.app.FindCollectionByNameOrId("orders")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}

	record := core.NewRecord(collection)
	record.Set("event_id", o.EventID)
	record.Set("buyer_name", o.BuyerName)
	record.Set("buyer_email", o.BuyerEmail)
	record.Set("buyer_phone", o.BuyerPhone)
	record.Set("status", o.Status.String())
	record.Set("reference", o.Reference)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrPersistence, err)
	}
	return orderFromRecord(record), nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	record, err := s.app.FindRecordById("orders", id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", status.ErrOrderNotFound, id)
	}
	return orderFromRecord(record), nil
}

func (s *OrderStore) FindByReference(ctx context.Context, ref string) (*models.Order, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"orders",
		"reference = {:ref}",
		dbx.Params{"ref": ref},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: reference %s", status.ErrOrderNotFound, ref)
	}
	return orderFromRecord(record), nil
}

func (s *OrderStore) List(ctx context.Context) ([]*models.Order, error) {
	records, err := s.app.FindRecordsByFilter("orders", "id != ''", "-created", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]*models.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, orderFromRecord(record))
	}
	return orders, nil
}

func (s *OrderStore) Delete(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById("orders", id)
	if err != nil {
		return fmt.Errorf("%w: %s", status.ErrOrderNotFound, id)
	}
	if err := s.app.DeleteWithContext(ctx, record); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

// UpdateStatus moves the order to the target status only if its
// current status is in the allowed source set, and reports how many
// rows matched. Zero means the order already advanced past the guard
// set, which callers treat as an idempotent no-op.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, fromAnyOf []status.OrderStatus, to status.OrderStatus) (int64, error) {
	if len(fromAnyOf) == 0 {
		return 0, nil
	}

	params := dbx.Params{"id": id, "to": to.String()}
	placeholders := make([]string, len(fromAnyOf))
	for i, from := range fromAnyOf {
		name := fmt.Sprintf("from%d", i)
		placeholders[i] = "{:" + name + "}"
		params[name] = from.String()
	}

	query := fmt.Sprintf(
		"UPDATE orders SET status = {:to} WHERE id = {:id} AND status IN (%s)",
		strings.Join(placeholders, ", "),
	)

	res, err := s.app.DB().NewQuery(query).Bind(params).WithContext(ctx).Execute()
	if err != nil {
		return 0, fmt.Errorf("update order status: %w", err)
	}
	return res.RowsAffected()
}

func orderFromRecord(record *core.Record) *models.Order {
	return &models.Order{
		ID:         record.Id,
		EventID:    record.GetString("event_id"),
		BuyerName:  record.GetString("buyer_name"),
		BuyerEmail: record.GetString("buyer_email"),
		BuyerPhone: record.GetString("buyer_phone"),
		Status:     status.OrderStatus(record.GetString("status")),
		Reference:  record.GetString("reference"),
		CreatedAt:  record.GetDateTime("created").Time(),
	}
}
