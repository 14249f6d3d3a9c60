package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"ticketing-app/internal/services"
	"ticketing-app/internal/status"
	"ticketing-app/internal/store"
	"ticketing-app/models"
	"ticketing-app/utils"
)

// Mailer sends the ticket email; satisfied by the Resend client.
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

type AdminHandler struct {
	app          core.App
	catalog      *store.EventCatalog
	orders       *store.OrderStore
	orderService *services.OrderService
	mailer       Mailer
	jwtSecret    string
}

func NewAdminHandler(app core.App, catalog *store.EventCatalog, orders *store.OrderStore, orderService *services.OrderService, mailer Mailer, jwtSecret string) *AdminHandler {
	return &AdminHandler{
		app:          app,
		catalog:      catalog,
		orders:       orders,
		orderService: orderService,
		mailer:       mailer,
		jwtSecret:    jwtSecret,
	}
}

// RequireAdmin wraps a handler with bearer-token admin auth.
func (h *AdminHandler) RequireAdmin(next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		header := e.Request.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return apis.NewUnauthorizedError("Missing bearer token", nil)
		}

		email, err := utils.ParseAdminToken(h.jwtSecret, token)
		if err != nil {
			return apis.NewUnauthorizedError("Invalid or expired token", nil)
		}

		e.Set("adminEmail", email)
		return next(e)
	}
}

// Login - Exchange admin credentials for a JWT
func (h *AdminHandler) Login(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	admin, err := h.app.FindFirstRecordByFilter(
		"admins",
		"email = {:email}",
		dbx.Params{"email": req.Email},
	)
	if err != nil || !utils.VerifyPassword(admin.GetString("password_hash"), req.Password) {
		return apis.NewUnauthorizedError("Invalid credentials", nil)
	}

	token, err := utils.NewAdminToken(h.jwtSecret, admin.GetString("email"))
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Token generation failed", nil)
	}
	return e.JSON(http.StatusOK, map[string]any{"token": token})
}

// Me - Current admin identity
func (h *AdminHandler) Me(e *core.RequestEvent) error {
	email, _ := e.Get("adminEmail").(string)
	return e.JSON(http.StatusOK, map[string]any{"email": email})
}

// ListEvents - Admin event listing
func (h *AdminHandler) ListEvents(e *core.RequestEvent) error {
	events, err := h.catalog.List(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to list events", nil)
	}
	return e.JSON(http.StatusOK, events)
}

// CreateEvent - Create an event; availability starts at the total
func (h *AdminHandler) CreateEvent(e *core.RequestEvent) error {
	var req struct {
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		Date         string          `json:"date"`
		Location     string          `json:"location"`
		Price        decimal.Decimal `json:"price"`
		TotalTickets int             `json:"total_tickets"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := (validation.Errors{
		"name":          validation.Validate(req.Name, validation.Required),
		"date":          validation.Validate(req.Date, validation.Required),
		"location":      validation.Validate(req.Location, validation.Required),
		"total_tickets": validation.Validate(req.TotalTickets, validation.Required, validation.Min(1)),
	}).Filter(); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return apis.NewBadRequestError("Invalid date, expected RFC 3339", err)
	}

	event, err := h.catalog.Create(e.Request.Context(), &models.Event{
		Name:         req.Name,
		Description:  req.Description,
		Date:         date,
		Location:     req.Location,
		Price:        req.Price,
		TotalTickets: req.TotalTickets,
	})
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to create event", nil)
	}
	return e.JSON(http.StatusOK, event)
}

// ListOrders - All orders, newest first
func (h *AdminHandler) ListOrders(e *core.RequestEvent) error {
	orders, err := h.orders.List(e.Request.Context())
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to list orders", nil)
	}
	return e.JSON(http.StatusOK, orders)
}

// SendTicket - Email the ticket for a paid order, then mark it sent
func (h *AdminHandler) SendTicket(e *core.RequestEvent) error {
	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ctx := e.Request.Context()
	order, err := h.orders.FindByID(ctx, e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("Order not found", nil)
	}
	if order.Status != status.Paid {
		return apis.NewBadRequestError("Order is not paid", nil)
	}

	body := fmt.Sprintf("Halo %s,\n\n%s\n\nTerima kasih atas pembelian tiket Anda.", order.BuyerName, req.Message)
	if err := h.mailer.Send(ctx, order.BuyerEmail, req.Subject, body); err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Failed to send email",
			map[string]any{"details": err.Error()})
	}

	if err := h.orderService.MarkSent(ctx, order.ID); err != nil {
		if errors.Is(err, status.ErrOrderNotPaid) {
			// A concurrent submission already sent it; the email went
			// out, so report success.
			return e.JSON(http.StatusOK, map[string]any{"message": "Ticket already sent"})
		}
		return apis.NewApiError(http.StatusInternalServerError, "Failed to update order status", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{"message": "Ticket sent successfully"})
}
