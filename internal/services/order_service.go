package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticketing-app/internal/services/midtrans"
	"ticketing-app/internal/status"
	"ticketing-app/models"
	"ticketing-app/monitoring"
	"ticketing-app/utils"
)

// EventCatalog is the slice of the event store the order flow needs.
type EventCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	ReserveTicket(ctx context.Context, id string) error
	ReleaseTicket(ctx context.Context, id string) error
}

// OrderStore is the order persistence contract.
type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByReference(ctx context.Context, ref string) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, fromAnyOf []status.OrderStatus, to status.OrderStatus) (int64, error)
}

// PaymentGateway opens a payment session for one order.
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, order *models.Order, event *models.Event) (*midtrans.ChargeResponse, error)
}

// Notifier publishes order lifecycle transitions. Implementations must
// tolerate being called concurrently; a nil value disables publishing.
type Notifier interface {
	OrderStatusChanged(order *models.Order, to status.OrderStatus)
}

// OrderService drives the order creation saga: reserve a ticket,
// persist a pending order, open a payment session, and unwind the
// earlier steps when a later one fails.
type OrderService struct {
	catalog  EventCatalog
	orders   OrderStore
	gateway  PaymentGateway
	sessions *SessionCache
	notifier Notifier

	gatewayTimeout time.Duration
}

func NewOrderService(catalog EventCatalog, orders OrderStore, gateway PaymentGateway, sessions *SessionCache, notifier Notifier, gatewayTimeout time.Duration) *OrderService {
	if gatewayTimeout == 0 {
		gatewayTimeout = 10 * time.Second
	}
	return &OrderService{
		catalog:        catalog,
		orders:         orders,
		gateway:        gateway,
		sessions:       sessions,
		notifier:       notifier,
		gatewayTimeout: gatewayTimeout,
	}
}

type CreateOrderRequest struct {
	EventID    string `json:"event_id"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	BuyerPhone string `json:"buyer_phone"`
}

type CreateOrderResult struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CreateOrder runs admission control and the creation saga. Error
// values carry the machine-readable kind: status.ErrEventNotFound,
// status.ErrSoldOut, status.ErrPersistence or status.ErrPaymentSession.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	event, err := s.catalog.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.AvailableTickets <= 0 {
		return nil, status.ErrSoldOut
	}

	// The real admission decision: a conditional decrement that only
	// one of two racing buyers of the last ticket can win.
	if err := s.catalog.ReserveTicket(ctx, event.ID); err != nil {
		return nil, err
	}

	order, err := s.orders.Insert(ctx, &models.Order{
		EventID:    event.ID,
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		BuyerPhone: req.BuyerPhone,
		Status:     status.Pending,
		Reference:  utils.NewOrderReference(),
	})
	if err != nil {
		s.releaseTicket(ctx, event.ID)
		monitoring.TrackOrderCreated("persistence_error")
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	start := time.Now()
	session, err := s.gateway.CreateTransaction(gwCtx, order, event)
	monitoring.TrackGatewayRequest(time.Since(start))
	if err != nil {
		s.compensate(ctx, order)
		monitoring.TrackOrderCreated("payment_session_error")
		return nil, fmt.Errorf("%w: %v", status.ErrPaymentSession, err)
	}

	if s.sessions != nil {
		if cacheErr := s.sessions.Put(ctx, order.ID, &models.PaymentSession{
			Token:       session.Token,
			RedirectURL: session.RedirectURL,
			Reference:   order.Reference,
		}); cacheErr != nil {
			slog.Warn("order: session cache write failed", "orderId", order.ID, "error", cacheErr)
		}
	}

	monitoring.TrackOrderCreated("success")
	slog.Info("order: created", "orderId", order.ID, "eventId", event.ID, "reference", order.Reference)

	return &CreateOrderResult{
		OrderID:     order.ID,
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
	}, nil
}

// compensate unwinds the saga after a payment-session failure: the
// pending order is deleted and its ticket reservation released.
// Failures here are recorded for operators but never surfaced; the
// caller already gets the payment error.
func (s *OrderService) compensate(ctx context.Context, order *models.Order) {
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		slog.Error("order: compensation delete failed", "orderId", order.ID, "error", err)
		monitoring.TrackCompensationFailure("delete_order")
	}
	s.releaseTicket(ctx, order.EventID)
}

func (s *OrderService) releaseTicket(ctx context.Context, eventID string) {
	if err := s.catalog.ReleaseTicket(ctx, eventID); err != nil {
		slog.Error("order: ticket release failed", "eventId", eventID, "error", err)
		monitoring.TrackCompensationFailure("release_ticket")
		return
	}
	monitoring.TrackTicketReleased()
}

// PaymentDetails returns the order's current status plus its cached
// payment session, when the payment window is still open.
func (s *OrderService) PaymentDetails(ctx context.Context, orderID string) (*models.Order, *models.PaymentSession, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	var session *models.PaymentSession
	if s.sessions != nil {
		session, err = s.sessions.Get(ctx, orderID)
		if err != nil {
			slog.Warn("order: session cache read failed", "orderId", orderID, "error", err)
			session = nil
		}
	}
	return order, session, nil
}

// MarkSent transitions a paid order to sent after its ticket email
// went out. The guarded update keeps double submissions harmless.
func (s *OrderService) MarkSent(ctx context.Context, orderID string) error {
	matched, err := s.orders.UpdateStatus(ctx, orderID, status.AllowedSources(status.Sent), status.Sent)
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("%w: %s", status.ErrOrderNotPaid, orderID)
	}

	if order, err := s.orders.FindByID(ctx, orderID); err == nil && s.notifier != nil {
		s.notifier.OrderStatusChanged(order, status.Sent)
	}
	return nil
}

// IsNotFound reports whether the error is one of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, status.ErrEventNotFound) || errors.Is(err, status.ErrOrderNotFound)
}
