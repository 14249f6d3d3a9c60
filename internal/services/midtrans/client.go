package midtrans

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticketing-app/models"
)

type Config struct {
	// BaseURL is the Snap API host, e.g. https://app.sandbox.midtrans.com.
	BaseURL string `json:"baseUrl" mapstructure:"base_url"`

	// ServerKey authenticates the backend. It is sent as HTTP Basic
	// with an empty password.
	ServerKey string `json:"serverKey" mapstructure:"server_key"`

	// Timeout bounds each outbound call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Client wraps the Snap transactions endpoint: one order and one
// event in, one payment session (token + redirect URL) out.
type Client struct {
	baseURL   string
	serverKey string

	breaker *Breaker
	hc      *http.Client
}

func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		serverKey: cfg.ServerKey,
		breaker:   NewBreaker("midtrans"),
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type itemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type customerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type chargeRequest struct {
	PaymentType        string             `json:"payment_type"`
	TransactionDetails transactionDetails `json:"transaction_details"`
	ItemDetails        []itemDetail       `json:"item_details"`
	CustomerDetails    customerDetails    `json:"customer_details"`
}

type ChargeResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CreateTransaction opens a Snap payment session for the order. The
// gross amount is the event's unit price scaled by 1000 and truncated;
// quantity is fixed at one ticket per order.
func (c *Client) CreateTransaction(ctx context.Context, order *models.Order, event *models.Event) (*ChargeResponse, error) {
	payload := chargeRequest{
		PaymentType: "snap",
		TransactionDetails: transactionDetails{
			OrderID:     order.Reference,
			GrossAmount: event.GrossAmount(),
		},
		ItemDetails: []itemDetail{{
			ID:       event.ID,
			Price:    event.GrossAmount(),
			Quantity: 1,
			Name:     event.Name,
		}},
		CustomerDetails: customerDetails{
			FirstName: order.BuyerName,
			Email:     order.BuyerEmail,
			Phone:     order.BuyerPhone,
		},
	}

	var reply *ChargeResponse
	err := c.breaker.Do(func() error {
		var err error
		reply, err = c.charge(ctx, &payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) charge(ctx context.Context, payload *chargeRequest) (*ChargeResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("charge: json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("charge: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.basicAuth())

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("charge: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("charge: gateway returned %d: %s", resp.StatusCode, detail)
	}

	var reply ChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("charge: json.Decode: %w", err)
	}
	return &reply, nil
}

// basicAuth encodes the server key as HTTP Basic with an empty
// password, exactly as the gateway expects.
func (c *Client) basicAuth() string {
	encoded := base64.StdEncoding.EncodeToString([]byte(c.serverKey + ":"))
	return "Basic " + encoded
}
