package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var captured sendRequest
	var authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)

		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Write([]byte(`{"id":"email-id"}`))
	}))
	defer srv.Close()

	client := New(&Config{
		APIKey:    "re_test_key",
		FromEmail: "tickets@example.com",
		BaseURL:   srv.URL,
	})

	err := client.Send(context.Background(), "alice@example.com", "Your ticket", "See you there")
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test_key", authHeader)
	assert.Equal(t, "tickets@example.com", captured.From)
	assert.Equal(t, []string{"alice@example.com"}, captured.To)
	assert.Equal(t, "Your ticket", captured.Subject)
	assert.Equal(t, "See you there", captured.Text)
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Invalid to address"}`))
	}))
	defer srv.Close()

	client := New(&Config{APIKey: "re_test_key", FromEmail: "tickets@example.com", BaseURL: srv.URL})

	err := client.Send(context.Background(), "not-an-email", "subj", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "Invalid to address")
}
