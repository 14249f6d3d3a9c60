package cmd

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticketing-app/config"
	"ticketing-app/internal/handlers"
	"ticketing-app/internal/notify"
	"ticketing-app/internal/services"
	"ticketing-app/internal/services/mailer"
	"ticketing-app/internal/services/midtrans"
	"ticketing-app/internal/store"
	_ "ticketing-app/migrations"
	"ticketing-app/security"
	"ticketing-app/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize the order-events notifier (nil when unconfigured)
	notifier := notify.New(&notify.Config{
		PublishKey:   cfg.PubNubPublishKey,
		SubscribeKey: cfg.PubNubSubscribeKey,
		UserID:       cfg.PubNubUserID,
		Channel:      cfg.PubNubChannel,
	})

	// Initialize external clients
	gateway := midtrans.New(&midtrans.Config{
		BaseURL:   cfg.MidtransBaseURL,
		ServerKey: cfg.MidtransServerKey,
		Timeout:   cfg.GatewayTimeout,
	})
	mailClient := mailer.New(&mailer.Config{
		APIKey:    cfg.ResendAPIKey,
		FromEmail: cfg.ResendFromEmail,
	})

	// Initialize stores and services
	catalog := store.NewEventCatalog(app)
	orders := store.NewOrderStore(app)
	sessions := services.NewSessionCache(redisClient, cfg.SessionTTL)
	orderService := services.NewOrderService(catalog, orders, gateway, sessions, notifier, cfg.GatewayTimeout)
	reconciler := services.NewReconciler(orders, catalog, notifier)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(catalog)
	orderHandler := handlers.NewOrderHandler(orderService, reconciler)
	adminHandler := handlers.NewAdminHandler(app, catalog, orders, orderService, mailClient, cfg.JWTSecret)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.OrderRateLimit, cfg.OrderRateWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	registerSeedCommand(app, cfg)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// CORS headers on every response
		se.Router.BindFunc(func(e *core.RequestEvent) error {
			h := e.Response.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "POST, GET, PATCH, OPTIONS, PUT, DELETE")
			h.Set("Access-Control-Allow-Headers", "*")
			if e.Request.Method == http.MethodOptions {
				return e.NoContent(http.StatusNoContent)
			}
			return e.Next()
		})

		// Public endpoints
		se.Router.GET("/api/events", eventHandler.ListEvents)
		se.Router.GET("/api/events/{id}", eventHandler.GetEvent)
		se.Router.POST("/api/orders", rateLimiter.Limit("orders", orderHandler.CreateOrder))
		se.Router.GET("/api/orders/{id}/payment", orderHandler.GetPaymentDetails)

		// Gateway webhook; never rate limited, it must always be
		// acknowledged.
		se.Router.POST("/api/orders/notify", orderHandler.Notify)

		// Admin endpoints
		se.Router.POST("/api/admin/login", adminHandler.Login)
		se.Router.GET("/api/admin/me", adminHandler.RequireAdmin(adminHandler.Me))
		se.Router.GET("/api/admin/events", adminHandler.RequireAdmin(adminHandler.ListEvents))
		se.Router.POST("/api/admin/events", adminHandler.RequireAdmin(adminHandler.CreateEvent))
		se.Router.GET("/api/admin/orders", adminHandler.RequireAdmin(adminHandler.ListOrders))
		se.Router.POST("/api/admin/orders/{id}/send_ticket", adminHandler.RequireAdmin(adminHandler.SendTicket))

		// Prometheus metrics
		if cfg.EnableMetrics {
			metricsHandler := promhttp.Handler()
			se.Router.GET("/metrics", func(e *core.RequestEvent) error {
				metricsHandler.ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		// Health check
		se.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return se.Next()
	})

	return app.Start()
}
