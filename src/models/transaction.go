package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  = "INCOME"
	KindExpense = "EXPENSE"
)

const (
	SourceManual   = "MANUAL"
	SourceBankFeed = "BANK_FEED"
	SourceCardFeed = "CARD_FEED"
)

type Transaction struct {
	ID              int64           `json:"id"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	ActorID         int64           `json:"actor_id"`
	CategoryID      *int64          `json:"category_id,omitempty"`
	SessionID       *int64          `json:"session_id,omitempty"`
	AccountID       *int64          `json:"account_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
	ExternalID      *string         `json:"external_id,omitempty"`
	SyncSource      string          `json:"sync_source,omitempty"`
}

// TransactionDraft carries the caller-supplied fields of a transaction.
// The owning actor, creation timestamp, and id are stamped by the ledger.
type TransactionDraft struct {
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CategoryID      *int64          `json:"category_id"`
	SessionID       *int64          `json:"session_id"`
	TransactionDate time.Time       `json:"transaction_date"`
}
