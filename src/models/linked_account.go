package models

import "time"

const (
	AccountKindChecking = "CHECKING"
	AccountKindSavings  = "SAVINGS"
	AccountKindCard     = "CARD"
)

const (
	ConnectionBankFeed = "BANK_FEED"
	ConnectionCardFeed = "CARD_FEED"
	ConnectionManual   = "MANUAL"
)

type LinkedAccount struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	InstitutionCode string     `json:"institution_code"`
	InstitutionName string     `json:"institution_name"`
	AccountNumber   string     `json:"account_number"`
	AccountKind     string     `json:"account_kind"`
	ConnectionKind  string     `json:"connection_kind"`
	AccessToken     *string    `json:"-"`
	RefreshToken    *string    `json:"-"`
	TokenExpiresAt  *time.Time `json:"-"`
	Active          bool       `json:"active"`
	ActorID         int64      `json:"actor_id"`
	CreatedAt       time.Time  `json:"created_at"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
}

func (a *LinkedAccount) Credentialed() bool {
	return a.AccessToken != nil && *a.AccessToken != ""
}

// AccountDraft carries the caller-supplied fields of a linked account.
// Credentials are never caller-supplied; they arrive through the OAuth
// callback.
type AccountDraft struct {
	Name            string `json:"name"`
	InstitutionCode string `json:"institution_code"`
	InstitutionName string `json:"institution_name"`
	AccountNumber   string `json:"account_number"`
	AccountKind     string `json:"account_kind"`
	ConnectionKind  string `json:"connection_kind"`
	Active          *bool  `json:"active"`
}
