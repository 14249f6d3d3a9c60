package services

import (
	"context"
	"log/slog"

	"ticketing-app/internal/status"
	"ticketing-app/models"
	"ticketing-app/monitoring"
)

// Notification is the part of the gateway's webhook payload the
// reconciler acts on. Everything else in the body is ignored.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
}

// Outcome describes what a notification did. The webhook response is
// always an acknowledgement; outcomes exist for logs, metrics and
// tests.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeStale     Outcome = "stale"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeIgnored   Outcome = "ignored"
)

// Reconciler applies gateway payment outcomes to orders. Notifications
// arrive at least once, unordered and unauthenticated, so every write
// is a guarded conditional transition and every failure is absorbed:
// the gateway must always get an acknowledgement or it retries forever.
type Reconciler struct {
	orders   OrderStore
	catalog  EventCatalog
	notifier Notifier
}

func NewReconciler(orders OrderStore, catalog EventCatalog, notifier Notifier) *Reconciler {
	return &Reconciler{orders: orders, catalog: catalog, notifier: notifier}
}

// Handle maps the transaction status, resolves the order and applies
// the guarded transition. It never returns an error; the caller
// acknowledges regardless.
func (r *Reconciler) Handle(ctx context.Context, n Notification) Outcome {
	target, mapped := status.FromTransactionStatus(n.TransactionStatus)
	if !mapped {
		slog.Info("webhook: unrecognized transaction status, acknowledging",
			"orderId", n.OrderID, "transactionStatus", n.TransactionStatus)
		monitoring.TrackWebhook(n.TransactionStatus, string(OutcomeIgnored))
		return OutcomeIgnored
	}

	order := r.resolve(ctx, n.OrderID)
	if order == nil {
		slog.Warn("webhook: no matching order", "orderId", n.OrderID, "transactionStatus", n.TransactionStatus)
		monitoring.TrackWebhook(n.TransactionStatus, string(OutcomeUnmatched))
		return OutcomeUnmatched
	}

	matched, err := r.orders.UpdateStatus(ctx, order.ID, status.AllowedSources(target), target)
	if err != nil {
		// A store failure is observed, not surfaced; the gateway will
		// retry and the guard keeps the retry safe.
		slog.Error("webhook: status update failed", "orderId", order.ID, "target", target, "error", err)
		monitoring.TrackWebhook(n.TransactionStatus, "error")
		return OutcomeUnmatched
	}
	if matched == 0 {
		// Duplicate delivery or a late notification losing to a more
		// advanced status. Either way the state already converged.
		slog.Info("webhook: transition skipped, status already advanced",
			"orderId", order.ID, "current", order.Status, "target", target)
		monitoring.TrackWebhook(n.TransactionStatus, string(OutcomeStale))
		return OutcomeStale
	}

	if target == status.Failed {
		r.releaseTicket(ctx, order)
	}
	if r.notifier != nil {
		r.notifier.OrderStatusChanged(order, target)
	}

	slog.Info("webhook: order transitioned", "orderId", order.ID, "from", order.Status, "to", target)
	monitoring.TrackWebhook(n.TransactionStatus, string(OutcomeApplied))
	return OutcomeApplied
}

// resolve maps the gateway's echoed reference onto an order, trying
// the internal id first and falling back to the external reference.
func (r *Reconciler) resolve(ctx context.Context, ref string) *models.Order {
	if order, err := r.orders.FindByID(ctx, ref); err == nil {
		return order
	}
	if order, err := r.orders.FindByReference(ctx, ref); err == nil {
		return order
	}
	return nil
}

// releaseTicket returns the failed order's reservation to the pool.
// Runs only when the guarded transition actually applied, so a
// redelivered "deny" cannot release twice.
func (r *Reconciler) releaseTicket(ctx context.Context, order *models.Order) {
	if err := r.catalog.ReleaseTicket(ctx, order.EventID); err != nil {
		slog.Error("webhook: ticket release failed", "orderId", order.ID, "eventId", order.EventID, "error", err)
		monitoring.TrackCompensationFailure("release_ticket")
		return
	}
	monitoring.TrackTicketReleased()
}
