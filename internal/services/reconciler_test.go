package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ticketing-app/internal/status"
	"ticketing-app/models"
)

func pendingOrder() *models.Order {
	return &models.Order{
		ID:        "ord1",
		EventID:   "evt1",
		Status:    status.Pending,
		Reference: "ORDER-ref",
	}
}

func TestHandle_SettlementByInternalID(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	orders.On("FindByID", mock.Anything, "ord1").Return(pendingOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, "ord1", []status.OrderStatus{status.Pending}, status.Paid).
		Return(int64(1), nil)

	r := NewReconciler(orders, catalog, nil)
	outcome := r.Handle(context.Background(), Notification{OrderID: "ord1", TransactionStatus: "settlement"})

	assert.Equal(t, OutcomeApplied, outcome)
	orders.AssertExpectations(t)
	// A settlement keeps the reservation; nothing is released.
	catalog.AssertNotCalled(t, "ReleaseTicket", mock.Anything, mock.Anything)
}

func TestHandle_ResolvesByExternalReference(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	orders.On("FindByID", mock.Anything, "ORDER-ref").Return(nil, status.ErrOrderNotFound)
	orders.On("FindByReference", mock.Anything, "ORDER-ref").Return(pendingOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, "ord1", []status.OrderStatus{status.Pending}, status.Paid).
		Return(int64(1), nil)

	r := NewReconciler(orders, catalog, nil)
	outcome := r.Handle(context.Background(), Notification{OrderID: "ORDER-ref", TransactionStatus: "settlement"})

	assert.Equal(t, OutcomeApplied, outcome)
	orders.AssertExpectations(t)
}

func TestHandle_DuplicateSettlementIsIdempotent(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	paid := pendingOrder()
	paid.Status = status.Paid

	orders.On("FindByID", mock.Anything, "ord1").Return(paid, nil)
	orders.On("UpdateStatus", mock.Anything, "ord1", []status.OrderStatus{status.Pending}, status.Paid).
		Return(int64(0), nil)

	r := NewReconciler(orders, catalog, nil)
	outcome := r.Handle(context.Background(), Notification{OrderID: "ord1", TransactionStatus: "settlement"})

	assert.Equal(t, OutcomeStale, outcome)
}

func TestHandle_LateDenyCannotRegressPaidOrder(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	paid := pendingOrder()
	paid.Status = status.Paid

	orders.On("FindByID", mock.Anything, "ord1").Return(paid, nil)
	// The guard set for Failed is {pending}; a paid order matches
	// nothing and keeps its status.
	orders.On("UpdateStatus", mock.Anything, "ord1", []status.OrderStatus{status.Pending}, status.Failed).
		Return(int64(0), nil)

	r := NewReconciler(orders, catalog, nil)
	outcome := r.Handle(context.Background(), Notification{OrderID: "ord1", TransactionStatus: "deny"})

	assert.Equal(t, OutcomeStale, outcome)
	catalog.AssertNotCalled(t, "ReleaseTicket", mock.Anything, mock.Anything)
}

func TestHandle_ExpireReleasesReservation(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	orders.On("FindByID", mock.Anything, "ord1").Return(pendingOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, "ord1", []status.OrderStatus{status.Pending}, status.Failed).
		Return(int64(1), nil)
	catalog.On("ReleaseTicket", mock.Anything, "evt1").Return(nil)

	r := NewReconciler(orders, catalog, nil)
	outcome := r.Handle(context.Background(), Notification{OrderID: "ord1", TransactionStatus: "expire"})

	assert.Equal(t, OutcomeApplied, outcome)
	catalog.AssertExpectations(t)
}

func TestHandle_UnrecognizedStatusIsIgnored(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	r := NewReconciler(orders, catalog, nil)
	outcome := r.Handle(context.Background(), Notification{OrderID: "ord1", TransactionStatus: "capture"})

	assert.Equal(t, OutcomeIgnored, outcome)
	orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_UnmatchedReferenceIsAbsorbed(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	orders.On("FindByID", mock.Anything, "nope").Return(nil, status.ErrOrderNotFound)
	orders.On("FindByReference", mock.Anything, "nope").Return(nil, status.ErrOrderNotFound)

	r := NewReconciler(orders, catalog, nil)
	outcome := r.Handle(context.Background(), Notification{OrderID: "nope", TransactionStatus: "settlement"})

	assert.Equal(t, OutcomeUnmatched, outcome)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_StoreFailureIsAbsorbed(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)

	orders.On("FindByID", mock.Anything, "ord1").Return(pendingOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, "ord1", []status.OrderStatus{status.Pending}, status.Paid).
		Return(int64(0), errors.New("database locked"))

	r := NewReconciler(orders, catalog, nil)

	// Handle must not panic or bubble the error; the handler always
	// acknowledges.
	outcome := r.Handle(context.Background(), Notification{OrderID: "ord1", TransactionStatus: "settlement"})
	assert.Equal(t, OutcomeUnmatched, outcome)
}

func TestHandle_NotifiesOnAppliedTransition(t *testing.T) {
	orders := new(MockOrderStore)
	catalog := new(MockEventCatalog)
	notifier := new(MockNotifier)

	orders.On("FindByID", mock.Anything, "ord1").Return(pendingOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, "ord1", []status.OrderStatus{status.Pending}, status.Paid).
		Return(int64(1), nil)
	notifier.On("OrderStatusChanged", mock.Anything, status.Paid).Return()

	r := NewReconciler(orders, catalog, notifier)
	r.Handle(context.Background(), Notification{OrderID: "ord1", TransactionStatus: "settlement"})

	notifier.AssertExpectations(t)
}
