package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
)

const transactionColumns = `id, kind, amount, description, actor_id, category_id, session_id,
	account_id, transaction_date, created_at, external_id, sync_source`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Kind, &t.Amount, &t.Description, &t.ActorID, &t.CategoryID,
		&t.SessionID, &t.AccountID, &t.TransactionDate, &t.CreatedAt, &t.ExternalID, &t.SyncSource)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Postgres) ListTransactions(ctx context.Context, sc scope.Scope, f TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var args []any
	var where []string

	if !sc.IsGlobal() {
		args = append(args, sc.ActorID())
		where = append(where, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if f.Kind != "" {
		args = append(args, f.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.SessionID != nil {
		args = append(args, *f.SessionID)
		where = append(where, fmt.Sprintf("session_id = $%d", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	// Filtered listings are newest-first; the unfiltered listing keeps
	// insertion order.
	if f.Empty() {
		query += " ORDER BY id"
	} else {
		query += " ORDER BY transaction_date DESC"
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func (p *Postgres) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("transaction not found: %d", id)
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (p *Postgres) InsertTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions
			(kind, amount, description, actor_id, category_id, session_id, account_id,
			 transaction_date, external_id, sync_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + transactionColumns
	out, err := scanTransaction(p.db.QueryRow(ctx, query,
		t.Kind, t.Amount, t.Description, t.ActorID, t.CategoryID, t.SessionID,
		t.AccountID, t.TransactionDate, t.ExternalID, t.SyncSource))
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return out, nil
}

func (p *Postgres) UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET kind = $1, amount = $2, description = $3, category_id = $4, session_id = $5,
			transaction_date = $6
		WHERE id = $7
		RETURNING ` + transactionColumns
	out, err := scanTransaction(p.db.QueryRow(ctx, query,
		t.Kind, t.Amount, t.Description, t.CategoryID, t.SessionID, t.TransactionDate, t.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("transaction not found: %d", t.ID)
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return out, nil
}

func (p *Postgres) DeleteTransaction(ctx context.Context, id int64) error {
	cmd, err := p.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("transaction not found: %d", id)
	}
	return nil
}

func (p *Postgres) SumTransactions(ctx context.Context, sc scope.Scope, kind string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE kind = $1`
	args := []any{kind}
	if !sc.IsGlobal() {
		query += ` AND actor_id = $2`
		args = append(args, sc.ActorID())
	}
	var total decimal.Decimal
	if err := p.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

func (p *Postgres) HasExternalTransaction(ctx context.Context, actorID int64, externalID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE actor_id = $1 AND external_id = $2)`
	var exists bool
	if err := p.db.QueryRow(ctx, query, actorID, externalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check external transaction: %w", err)
	}
	return exists, nil
}
