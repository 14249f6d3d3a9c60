package midtrans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing-app/internal/status"
	"ticketing-app/models"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:         "order123",
		EventID:    "event123",
		BuyerName:  "Alice",
		BuyerEmail: "alice@example.com",
		BuyerPhone: "+6281234567890",
		Status:     status.Pending,
		Reference:  "ORDER-7f8d2c1a-9a7e-4f30-9c58-2f3a4b5c6d7e",
	}
}

func testEvent() *models.Event {
	return &models.Event{
		ID:               "event123",
		Name:             "Jakarta Music Fest",
		Price:            decimal.NewFromFloat(150.5),
		TotalTickets:     500,
		AvailableTickets: 499,
	}
}

func TestCreateTransaction(t *testing.T) {
	var captured chargeRequest
	var authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/snap/v1/transactions", r.URL.Path)

		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"snap-token","redirect_url":"https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}`))
	}))
	defer srv.Close()

	client := New(&Config{BaseURL: srv.URL, ServerKey: "SB-Mid-server-key"})

	reply, err := client.CreateTransaction(context.Background(), testOrder(), testEvent())
	require.NoError(t, err)

	assert.Equal(t, "snap-token", reply.Token)
	assert.Equal(t, "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token", reply.RedirectURL)

	// Server key goes out as HTTP Basic with an empty password.
	assert.Equal(t, "Basic U0ItTWlkLXNlcnZlci1rZXk6", authHeader)

	// Gross amount is the unit price scaled by 1000, truncated.
	assert.Equal(t, "snap", captured.PaymentType)
	assert.Equal(t, "ORDER-7f8d2c1a-9a7e-4f30-9c58-2f3a4b5c6d7e", captured.TransactionDetails.OrderID)
	assert.Equal(t, int64(150500), captured.TransactionDetails.GrossAmount)

	require.Len(t, captured.ItemDetails, 1)
	assert.Equal(t, "event123", captured.ItemDetails[0].ID)
	assert.Equal(t, int64(150500), captured.ItemDetails[0].Price)
	assert.Equal(t, 1, captured.ItemDetails[0].Quantity)
	assert.Equal(t, "Jakarta Music Fest", captured.ItemDetails[0].Name)

	assert.Equal(t, "Alice", captured.CustomerDetails.FirstName)
	assert.Equal(t, "alice@example.com", captured.CustomerDetails.Email)
	assert.Equal(t, "+6281234567890", captured.CustomerDetails.Phone)
}

func TestCreateTransaction_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_messages":["Access denied"]}`))
	}))
	defer srv.Close()

	client := New(&Config{BaseURL: srv.URL, ServerKey: "wrong-key"})

	reply, err := client.CreateTransaction(context.Background(), testOrder(), testEvent())
	require.Error(t, err)
	assert.Nil(t, reply)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Access denied")
}

func TestCreateTransaction_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(&Config{BaseURL: srv.URL, ServerKey: "key", Timeout: 20 * time.Millisecond})

	_, err := client.CreateTransaction(context.Background(), testOrder(), testEvent())
	require.Error(t, err)
}

func TestBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(&Config{BaseURL: srv.URL, ServerKey: "key"})

	for i := 0; i < 5; i++ {
		_, err := client.CreateTransaction(context.Background(), testOrder(), testEvent())
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrBreakerOpen)
	}

	_, err := client.CreateTransaction(context.Background(), testOrder(), testEvent())
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestBreaker_RecoversAfterSuccess(t *testing.T) {
	b := NewBreaker("test")
	b.cooldown = 0

	boom := errors.New("boom")
	for i := 0; i < 5; i++ {
		b.Do(func() error { return boom })
	}

	// Cooldown elapsed, the half-open probe succeeds and closes the
	// breaker again.
	require.NoError(t, b.Do(func() error { return nil }))
	require.NoError(t, b.Do(func() error { return nil }))
}
