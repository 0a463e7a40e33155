// Package feedfake is a deterministic in-memory connector. Tests use it to
// script feed contents and failures; demo mode uses it in place of real
// institution credentials.
package feedfake

import (
	"context"
	"fmt"

	"homeledger-server/src/core/syncer"
	"homeledger-server/src/models"
)

type Connector struct {
	source string

	// Transactions is returned verbatim from FetchTransactions.
	Transactions []syncer.ExternalTransaction

	// FetchErr / ExchangeErr force the corresponding call to fail.
	FetchErr    error
	ExchangeErr error

	// Creds is returned from a successful ExchangeCode.
	Creds syncer.Credentials

	FetchCalls    int
	ExchangeCalls int
}

func NewBank() *Connector {
	return &Connector{
		source: models.ConnectionBankFeed,
		Creds:  syncer.Credentials{AccessToken: "fake-access-token", RefreshToken: "fake-refresh-token"},
	}
}

func NewCard() *Connector {
	return &Connector{
		source: models.ConnectionCardFeed,
		Creds:  syncer.Credentials{AccessToken: "fake-card-token"},
	}
}

func (c *Connector) Source() string { return c.source }

func (c *Connector) BuildAuthorizationURL(institutionCode string) (string, error) {
	return fmt.Sprintf("https://auth.example.test/%s/authorize?institution=%s", c.source, institutionCode), nil
}

func (c *Connector) ExchangeCode(ctx context.Context, account *models.LinkedAccount, authorizationCode string) (syncer.Credentials, error) {
	c.ExchangeCalls++
	if c.ExchangeErr != nil {
		return syncer.Credentials{}, c.ExchangeErr
	}
	return c.Creds, nil
}

func (c *Connector) FetchTransactions(ctx context.Context, account *models.LinkedAccount) ([]syncer.ExternalTransaction, error) {
	c.FetchCalls++
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	out := make([]syncer.ExternalTransaction, len(c.Transactions))
	copy(out, c.Transactions)
	return out, nil
}
