package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/db"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
)

// newTestPostgres connects to TEST_DATABASE_URL, runs migrations, and wipes
// all tables. Skips when the variable is unset so the suite runs without a
// database.
func newTestPostgres(t *testing.T) (*store.Postgres, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE transactions, linked_accounts, budget_sessions, categories, actors RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return store.NewPostgres(pool), pool
}

func pgActor(t *testing.T, st *store.Postgres, email string) *models.Actor {
	t.Helper()
	a, err := st.CreateActor(context.Background(), &models.Actor{
		Email: email, PasswordHash: "x", Name: email, Role: models.RoleOwner,
	})
	require.NoError(t, err)
	return a
}

func TestPostgresActorRoundTrip(t *testing.T) {
	st, _ := newTestPostgres(t)
	ctx := context.Background()

	created := pgActor(t, st, "pg@home.test")
	got, err := st.GetActorByEmail(ctx, "pg@home.test")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = st.CreateActor(ctx, &models.Actor{Email: "pg@home.test", PasswordHash: "x", Name: "x", Role: models.RoleOwner})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = st.GetActorByID(ctx, 999999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPostgresTransactionAmountsExact(t *testing.T) {
	st, _ := newTestPostgres(t)
	ctx := context.Background()
	actor := pgActor(t, st, "pg@home.test")

	_, err := st.InsertTransaction(ctx, &models.Transaction{
		Kind:            models.KindIncome,
		Amount:          decimal.RequireFromString("0.1"),
		Description:     "a",
		ActorID:         actor.ID,
		TransactionDate: time.Now(),
		SyncSource:      models.SourceManual,
	})
	require.NoError(t, err)
	_, err = st.InsertTransaction(ctx, &models.Transaction{
		Kind:            models.KindIncome,
		Amount:          decimal.RequireFromString("0.2"),
		Description:     "b",
		ActorID:         actor.ID,
		TransactionDate: time.Now(),
		SyncSource:      models.SourceManual,
	})
	require.NoError(t, err)

	total, err := st.SumTransactions(ctx, scope.Self(actor.ID), models.KindIncome)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("0.3")), "got %s", total)
}

func TestPostgresExternalIDUniquePerActor(t *testing.T) {
	st, _ := newTestPostgres(t)
	ctx := context.Background()
	actor := pgActor(t, st, "pg@home.test")
	other := pgActor(t, st, "pg2@home.test")

	extID := "ext-1"
	base := models.Transaction{
		Kind:            models.KindExpense,
		Amount:          decimal.RequireFromString("5"),
		Description:     "feed",
		ActorID:         actor.ID,
		TransactionDate: time.Now(),
		ExternalID:      &extID,
		SyncSource:      models.SourceBankFeed,
	}
	_, err := st.InsertTransaction(ctx, &base)
	require.NoError(t, err)

	seen, err := st.HasExternalTransaction(ctx, actor.ID, extID)
	require.NoError(t, err)
	assert.True(t, seen)

	// The index rejects a replay for the same actor.
	dup := base
	_, err = st.InsertTransaction(ctx, &dup)
	require.Error(t, err)

	// A different actor may carry the same external id.
	foreign := base
	foreign.ActorID = other.ID
	_, err = st.InsertTransaction(ctx, &foreign)
	require.NoError(t, err)
}

func TestPostgresRunInTxRollsBack(t *testing.T) {
	st, _ := newTestPostgres(t)
	ctx := context.Background()
	actor := pgActor(t, st, "pg@home.test")

	err := st.RunInTx(ctx, func(tx store.Store) error {
		_, err := tx.InsertTransaction(ctx, &models.Transaction{
			Kind:            models.KindIncome,
			Amount:          decimal.RequireFromString("10"),
			Description:     "doomed",
			ActorID:         actor.ID,
			TransactionDate: time.Now(),
			SyncSource:      models.SourceManual,
		})
		require.NoError(t, err)
		return assert.AnError
	})
	require.Error(t, err)

	listed, err := st.ListTransactions(ctx, scope.Self(actor.ID), store.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}
