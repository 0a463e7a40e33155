package syncer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"homeledger-server/src/models"
)

// ExternalTransaction is one upstream item from a bank or card feed. The
// external id is opaque and deduplicates per owning actor; items without one
// cannot be deduplicated and are always persisted.
type ExternalTransaction struct {
	ExternalID  string
	Kind        string
	Amount      decimal.Decimal
	Description string
	OccurredAt  time.Time
}

// Credentials are the result of exchanging an authorization code. A zero
// ExpiresAt means the token does not expire.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Connector is the capability surface of one external feed. One
// implementation per connection kind, plus a deterministic fake for tests.
type Connector interface {
	// Source reports the connection kind this connector serves
	// (models.ConnectionBankFeed or models.ConnectionCardFeed).
	Source() string

	BuildAuthorizationURL(institutionCode string) (string, error)

	ExchangeCode(ctx context.Context, account *models.LinkedAccount, authorizationCode string) (Credentials, error)

	FetchTransactions(ctx context.Context, account *models.LinkedAccount) ([]ExternalTransaction, error)
}
