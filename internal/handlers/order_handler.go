package handlers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticketing-app/internal/services"
	"ticketing-app/internal/status"
)

type OrderHandler struct {
	orderService *services.OrderService
	reconciler   *services.Reconciler
}

func NewOrderHandler(orderService *services.OrderService, reconciler *services.Reconciler) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		reconciler:   reconciler,
	}
}

// CreateOrder - Create an order and open a payment session
func (h *OrderHandler) CreateOrder(e *core.RequestEvent) error {
	var req services.CreateOrderRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := validation.ValidateStruct(&req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.BuyerName, validation.Required),
		validation.Field(&req.BuyerEmail, validation.Required, is.EmailFormat),
		validation.Field(&req.BuyerPhone, validation.Required),
	); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	result, err := h.orderService.CreateOrder(e.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrEventNotFound):
			return apis.NewNotFoundError("Event not found", map[string]any{"kind": "not_found"})
		case errors.Is(err, status.ErrSoldOut):
			return apis.NewBadRequestError("No tickets available", map[string]any{"kind": "sold_out"})
		case errors.Is(err, status.ErrPaymentSession):
			return apis.NewApiError(http.StatusInternalServerError, "Failed to create payment transaction",
				map[string]any{"kind": "payment_session_error", "details": err.Error()})
		default:
			return apis.NewApiError(http.StatusInternalServerError, "Failed to create order",
				map[string]any{"kind": "persistence_error"})
		}
	}

	return e.JSON(http.StatusOK, result)
}

// Notify - Payment gateway webhook. Always acknowledges, whatever
// happened: a non-200 only makes the gateway retry a notification we
// already know we cannot apply.
func (h *OrderHandler) Notify(e *core.RequestEvent) error {
	var n services.Notification
	if err := e.BindBody(&n); err != nil {
		return e.JSON(http.StatusOK, map[string]any{"status": "accepted"})
	}

	outcome := h.reconciler.Handle(e.Request.Context(), n)

	return e.JSON(http.StatusOK, map[string]any{
		"status":  "accepted",
		"outcome": string(outcome),
	})
}

// GetPaymentDetails - Order status plus the cached payment session
func (h *OrderHandler) GetPaymentDetails(e *core.RequestEvent) error {
	order, session, err := h.orderService.PaymentDetails(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Order not found", nil)
	}

	resp := map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	}
	if session != nil {
		resp["token"] = session.Token
		resp["redirect_url"] = session.RedirectURL
	}
	return e.JSON(http.StatusOK, resp)
}
