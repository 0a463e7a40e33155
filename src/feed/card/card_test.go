package card

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeledger-server/src/models"
)

func TestBuildAuthorizationURL(t *testing.T) {
	c := New("https://cards.example.test/", "client-1", "secret")
	url, err := c.BuildAuthorizationURL("issuer_9")
	require.NoError(t, err)
	assert.Contains(t, url, "https://cards.example.test/oauth/authorize?")
	assert.Contains(t, url, "client_id=client-1")
	assert.Contains(t, url, "issuer=issuer_9")
	assert.Contains(t, url, "response_type=code")
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "client-1", "secret")
	creds, err := c.ExchangeCode(context.Background(), &models.LinkedAccount{}, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "access-1", creds.AccessToken)
	assert.Equal(t, "refresh-1", creds.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), creds.ExpiresAt, time.Minute)
}

func TestExchangeCodeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_grant", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "client-1", "secret")
	_, err := c.ExchangeCode(context.Background(), &models.LinkedAccount{}, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestFetchTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/accounts/4111/transactions", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"transactions": []map[string]any{
				{
					"id":          "card-1",
					"kind":        "",
					"amount":      "42.17",
					"description": "Coffee",
					"occurred_at": "2026-08-29T10:30:00Z",
				},
				{
					"id":          "card-2",
					"kind":        "INCOME",
					"amount":      "15.00",
					"description": "Refund",
					"occurred_at": "2026-08-30T08:00:00Z",
				},
			},
		})
	}))
	defer srv.Close()

	token := "tok-1"
	account := &models.LinkedAccount{AccountNumber: "4111", AccessToken: &token}

	c := New(srv.URL, "client-1", "secret")
	fetched, err := c.FetchTransactions(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, fetched, 2)

	// Blank kind defaults to expense.
	assert.Equal(t, "card-1", fetched[0].ExternalID)
	assert.Equal(t, models.KindExpense, fetched[0].Kind)
	assert.Equal(t, "42.17", fetched[0].Amount.String())
	assert.Equal(t, "Coffee", fetched[0].Description)
	assert.Equal(t, 2026, fetched[0].OccurredAt.Year())

	assert.Equal(t, models.KindIncome, fetched[1].Kind)
}

func TestFetchTransactionsBadAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"transactions": []map[string]any{
				{"id": "card-1", "amount": "not-a-number"},
			},
		})
	}))
	defer srv.Close()

	token := "tok-1"
	c := New(srv.URL, "client-1", "secret")
	_, err := c.FetchTransactions(context.Background(), &models.LinkedAccount{AccountNumber: "1", AccessToken: &token})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad amount")
}

func TestFetchTransactionsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	token := "tok-1"
	c := New(srv.URL, "client-1", "secret")
	_, err := c.FetchTransactions(context.Background(), &models.LinkedAccount{AccountNumber: "1", AccessToken: &token})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired token")
}
