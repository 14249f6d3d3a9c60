package notify

import (
	"log/slog"
	"time"

	pubnub "github.com/pubnub/go/v7"

	"ticketing-app/internal/status"
	"ticketing-app/models"
)

type Config struct {
	PublishKey   string
	SubscribeKey string
	UserID       string
	Channel      string
}

// Notifier publishes order lifecycle transitions to a PubNub channel
// for operator dashboards. A nil Notifier is valid and publishes
// nothing.
type Notifier struct {
	pn      *pubnub.PubNub
	channel string
}

// New returns nil when no publish key is configured; callers treat a
// nil notifier as disabled.
func New(cfg *Config) *Notifier {
	if cfg.PublishKey == "" {
		return nil
	}

	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UserID))
	pnCfg.PublishKey = cfg.PublishKey
	pnCfg.SubscribeKey = cfg.SubscribeKey

	channel := cfg.Channel
	if channel == "" {
		channel = "order-events"
	}

	return &Notifier{
		pn:      pubnub.NewPubNub(pnCfg),
		channel: channel,
	}
}

// OrderStatusChanged publishes a transition. Delivery is best-effort;
// failures are logged and dropped.
func (n *Notifier) OrderStatusChanged(order *models.Order, to status.OrderStatus) {
	if n == nil {
		return
	}

	_, _, err := n.pn.Publish().
		Channel(n.channel).
		Message(map[string]any{
			"type":      "order_status_changed",
			"order_id":  order.ID,
			"reference": order.Reference,
			"event_id":  order.EventID,
			"status":    to.String(),
			"at":        time.Now().Unix(),
		}).
		Execute()
	if err != nil {
		slog.Error("notify: publish failed", "orderId", order.ID, "status", to, "error", err)
	}
}
