package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ticketing-app/internal/services/midtrans"
	"ticketing-app/internal/status"
	"ticketing-app/models"
)

type MockEventCatalog struct {
	mock.Mock
}

func (m *MockEventCatalog) FindByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if ev, ok := args.Get(0).(*models.Event); ok {
		return ev, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEventCatalog) ReserveTicket(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventCatalog) ReleaseTicket(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) Insert(ctx context.Context, o *models.Order) (*models.Order, error) {
	args := m.Called(ctx, o)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) FindByReference(ctx context.Context, ref string) (*models.Order, error) {
	args := m.Called(ctx, ref)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, id string, fromAnyOf []status.OrderStatus, to status.OrderStatus) (int64, error) {
	args := m.Called(ctx, id, fromAnyOf, to)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateTransaction(ctx context.Context, order *models.Order, event *models.Event) (*midtrans.ChargeResponse, error) {
	args := m.Called(ctx, order, event)
	if reply, ok := args.Get(0).(*midtrans.ChargeResponse); ok {
		return reply, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderStatusChanged(order *models.Order, to status.OrderStatus) {
	m.Called(order, to)
}
