package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
	"homeledger-server/src/store"
)

func newActor(t *testing.T, st store.Store, email, role string) *models.Actor {
	t.Helper()
	a, err := st.CreateActor(context.Background(), &models.Actor{
		Email: email, PasswordHash: "x", Name: email, Role: role,
	})
	require.NoError(t, err)
	return a
}

func insertTxn(t *testing.T, st store.Store, actorID int64, sessionID *int64, kind, amount string) {
	t.Helper()
	_, err := st.InsertTransaction(context.Background(), &models.Transaction{
		Kind:            kind,
		Amount:          decimal.RequireFromString(amount),
		Description:     "t",
		ActorID:         actorID,
		SessionID:       sessionID,
		TransactionDate: time.Now(),
		SyncSource:      models.SourceManual,
	})
	require.NoError(t, err)
}

func TestCreateSessionDefaults(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	owner := newActor(t, st, "owner@home.test", models.RoleOwner)

	created, err := svc.CreateSession(context.Background(), scope.Self(owner.ID), models.SessionDraft{Name: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "#0070f3", created.Color)
	assert.Equal(t, "💰", created.Icon)
	assert.Equal(t, owner.ID, created.ActorID)

	_, err = svc.CreateSession(context.Background(), scope.Self(owner.ID), models.SessionDraft{Name: "  "})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestDescribeEmptySession(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()
	owner := newActor(t, st, "owner@home.test", models.RoleOwner)
	sc := scope.Self(owner.ID)

	created, err := svc.CreateSession(ctx, sc, models.SessionDraft{Name: "Empty"})
	require.NoError(t, err)

	summary, err := svc.DescribeSession(ctx, sc, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TransactionCount)
	assert.True(t, summary.TotalIncome.IsZero())
	assert.True(t, summary.TotalExpense.IsZero())
	assert.True(t, summary.Balance.IsZero())
}

func TestDescribeSessionStats(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()
	owner := newActor(t, st, "owner@home.test", models.RoleOwner)
	sc := scope.Self(owner.ID)

	created, err := svc.CreateSession(ctx, sc, models.SessionDraft{Name: "Trip"})
	require.NoError(t, err)

	insertTxn(t, st, owner.ID, &created.ID, models.KindIncome, "300.00")
	insertTxn(t, st, owner.ID, &created.ID, models.KindExpense, "120.50")
	insertTxn(t, st, owner.ID, nil, models.KindExpense, "999") // outside the session

	summary, err := svc.DescribeSession(ctx, sc, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TransactionCount)
	assert.Equal(t, "300", summary.TotalIncome.String())
	assert.Equal(t, "120.5", summary.TotalExpense.String())
	assert.Equal(t, "179.5", summary.Balance.String())
}

func TestDescribeBumpsLastAccessed(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()
	owner := newActor(t, st, "owner@home.test", models.RoleOwner)
	sc := scope.Self(owner.ID)

	created, err := svc.CreateSession(ctx, sc, models.SessionDraft{Name: "Trip"})
	require.NoError(t, err)
	before := created.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	summary, err := svc.DescribeSession(ctx, sc, created.ID)
	require.NoError(t, err)
	assert.True(t, summary.LastAccessedAt.After(before))

	// Listing does not bump.
	listed, err := svc.ListSessions(ctx, sc)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, summary.LastAccessedAt, listed[0].LastAccessedAt)
}

// failingTxnStore breaks transaction listing while leaving session reads
// intact, to exercise the zero-stats fallback.
type failingTxnStore struct {
	store.Store
}

func (f *failingTxnStore) ListTransactions(ctx context.Context, sc scope.Scope, filter store.TransactionFilter) ([]models.Transaction, error) {
	return nil, errors.New("boom")
}

func TestStatsFailureFallsBackToZeros(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(&failingTxnStore{Store: mem})
	ctx := context.Background()
	owner := newActor(t, mem, "owner@home.test", models.RoleOwner)
	sc := scope.Self(owner.ID)

	created, err := mem.CreateSession(ctx, &models.BudgetSession{Name: "Trip", ActorID: owner.ID})
	require.NoError(t, err)
	insertTxn(t, mem, owner.ID, &created.ID, models.KindIncome, "100")

	// The session metadata survives; the stats degrade to zeros.
	summary, err := svc.DescribeSession(ctx, sc, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", summary.Name)
	assert.Equal(t, 0, summary.TransactionCount)
	assert.True(t, summary.Balance.IsZero())
}

func TestSessionOwnership(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()
	owner := newActor(t, st, "owner@home.test", models.RoleOwner)
	other := newActor(t, st, "other@home.test", models.RoleOwner)
	admin := newActor(t, st, "admin@home.test", models.RoleAdmin)

	created, err := svc.CreateSession(ctx, scope.Self(owner.ID), models.SessionDraft{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.DescribeSession(ctx, scope.Self(other.ID), created.ID)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	err = svc.DeleteSession(ctx, scope.Self(other.ID), created.ID)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.DescribeSession(ctx, scope.Resolve(admin), created.ID)
	require.NoError(t, err)
}

func TestUpdateSessionKeepsBlankColorAndIcon(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()
	owner := newActor(t, st, "owner@home.test", models.RoleOwner)
	sc := scope.Self(owner.ID)

	created, err := svc.CreateSession(ctx, sc, models.SessionDraft{Name: "Trip", Color: "#ff0000", Icon: "✈️"})
	require.NoError(t, err)

	updated, err := svc.UpdateSession(ctx, sc, created.ID, models.SessionDraft{Name: "Holiday"})
	require.NoError(t, err)
	assert.Equal(t, "Holiday", updated.Name)
	assert.Equal(t, "#ff0000", updated.Color)
	assert.Equal(t, "✈️", updated.Icon)
}
