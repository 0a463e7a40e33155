// Package card is the CARD_FEED connector: a JSON client for a card-issuer
// transaction API behind a standard OAuth authorization-code flow.
package card

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"homeledger-server/src/core/syncer"
	"homeledger-server/src/models"
)

type Connector struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func New(baseURL, clientID, clientSecret string) *Connector {
	return &Connector{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Connector) Source() string { return models.ConnectionCardFeed }

func (c *Connector) BuildAuthorizationURL(institutionCode string) (string, error) {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("issuer", institutionCode)
	return c.baseURL + "/oauth/authorize?" + q.Encode(), nil
}

func (c *Connector) ExchangeCode(ctx context.Context, account *models.LinkedAccount, authorizationCode string) (syncer.Credentials, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", authorizationCode)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return syncer.Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return syncer.Credentials{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return syncer.Credentials{}, fmt.Errorf("token request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var token struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return syncer.Credentials{}, fmt.Errorf("decode token response: %w", err)
	}

	creds := syncer.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if token.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return creds, nil
}

type cardTransaction struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurred_at"`
}

func (c *Connector) FetchTransactions(ctx context.Context, account *models.LinkedAccount) ([]syncer.ExternalTransaction, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/transactions", c.baseURL, url.PathEscape(account.AccountNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+*account.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transactions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transactions request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Transactions []cardTransaction `json:"transactions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode transactions response: %w", err)
	}

	out := make([]syncer.ExternalTransaction, 0, len(payload.Transactions))
	for _, txn := range payload.Transactions {
		amount, err := decimal.NewFromString(txn.Amount)
		if err != nil {
			return nil, fmt.Errorf("bad amount %q for transaction %s: %w", txn.Amount, txn.ID, err)
		}
		occurred, err := time.Parse(time.RFC3339, txn.OccurredAt)
		if err != nil {
			occurred = time.Time{}
		}
		kind := txn.Kind
		if kind == "" {
			// Card feeds are charges unless marked otherwise.
			kind = models.KindExpense
		}
		out = append(out, syncer.ExternalTransaction{
			ExternalID:  txn.ID,
			Kind:        kind,
			Amount:      amount,
			Description: txn.Description,
			OccurredAt:  occurred,
		})
	}
	return out, nil
}
