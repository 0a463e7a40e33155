// Package store is the persistence layer for actors, transactions, linked
// accounts, budget sessions, and categories. Two implementations: Postgres
// for the server and Memory for tests and demo mode.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
)

// TransactionFilter narrows a transaction listing. Zero value means
// unfiltered. Filtered listings are ordered by transaction date descending;
// the unfiltered listing keeps insertion order.
type TransactionFilter struct {
	Kind      string
	SessionID *int64
}

func (f TransactionFilter) Empty() bool {
	return f.Kind == "" && f.SessionID == nil
}

type Store interface {
	CreateActor(ctx context.Context, a *models.Actor) (*models.Actor, error)
	GetActorByID(ctx context.Context, id int64) (*models.Actor, error)
	GetActorByEmail(ctx context.Context, email string) (*models.Actor, error)

	ListCategories(ctx context.Context, kind string) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountCategories(ctx context.Context) (int, error)

	ListTransactions(ctx context.Context, sc scope.Scope, f TransactionFilter) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	InsertTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	SumTransactions(ctx context.Context, sc scope.Scope, kind string) (decimal.Decimal, error)
	HasExternalTransaction(ctx context.Context, actorID int64, externalID string) (bool, error)

	ListAccounts(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.LinkedAccount, error)
	GetAccount(ctx context.Context, id int64) (*models.LinkedAccount, error)
	CreateAccount(ctx context.Context, a *models.LinkedAccount) (*models.LinkedAccount, error)
	UpdateAccount(ctx context.Context, a *models.LinkedAccount) (*models.LinkedAccount, error)
	DeleteAccount(ctx context.Context, id int64) error

	ListSessions(ctx context.Context, sc scope.Scope) ([]models.BudgetSession, error)
	GetSession(ctx context.Context, id int64) (*models.BudgetSession, error)
	CreateSession(ctx context.Context, s *models.BudgetSession) (*models.BudgetSession, error)
	UpdateSession(ctx context.Context, s *models.BudgetSession) (*models.BudgetSession, error)
	DeleteSession(ctx context.Context, id int64) error
	TouchSession(ctx context.Context, id int64, at time.Time) error

	// RunInTx executes fn against a store view whose writes commit together
	// or not at all.
	RunInTx(ctx context.Context, fn func(Store) error) error
}
