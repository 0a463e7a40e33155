package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
)

const accountColumns = `id, name, institution_code, institution_name, account_number,
	account_kind, connection_kind, access_token, refresh_token, token_expires_at,
	active, actor_id, created_at, last_synced_at`

func scanAccount(row pgx.Row) (*models.LinkedAccount, error) {
	var a models.LinkedAccount
	err := row.Scan(&a.ID, &a.Name, &a.InstitutionCode, &a.InstitutionName, &a.AccountNumber,
		&a.AccountKind, &a.ConnectionKind, &a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt,
		&a.Active, &a.ActorID, &a.CreatedAt, &a.LastSyncedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *Postgres) ListAccounts(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.LinkedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts`
	var args []any
	var where []string

	if !sc.IsGlobal() {
		args = append(args, sc.ActorID())
		where = append(where, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if activeOnly {
		where = append(where, "active")
	}
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY id"

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.LinkedAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (p *Postgres) GetAccount(ctx context.Context, id int64) (*models.LinkedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE id = $1`
	a, err := scanAccount(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("account not found: %d", id)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (p *Postgres) CreateAccount(ctx context.Context, a *models.LinkedAccount) (*models.LinkedAccount, error) {
	query := `
		INSERT INTO linked_accounts
			(name, institution_code, institution_name, account_number, account_kind,
			 connection_kind, access_token, refresh_token, token_expires_at, active, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + accountColumns
	out, err := scanAccount(p.db.QueryRow(ctx, query,
		a.Name, a.InstitutionCode, a.InstitutionName, a.AccountNumber, a.AccountKind,
		a.ConnectionKind, a.AccessToken, a.RefreshToken, a.TokenExpiresAt, a.Active, a.ActorID))
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return out, nil
}

func (p *Postgres) UpdateAccount(ctx context.Context, a *models.LinkedAccount) (*models.LinkedAccount, error) {
	query := `
		UPDATE linked_accounts
		SET name = $1, institution_code = $2, institution_name = $3, account_number = $4,
			account_kind = $5, connection_kind = $6, access_token = $7, refresh_token = $8,
			token_expires_at = $9, active = $10, last_synced_at = $11
		WHERE id = $12
		RETURNING ` + accountColumns
	out, err := scanAccount(p.db.QueryRow(ctx, query,
		a.Name, a.InstitutionCode, a.InstitutionName, a.AccountNumber, a.AccountKind,
		a.ConnectionKind, a.AccessToken, a.RefreshToken, a.TokenExpiresAt, a.Active,
		a.LastSyncedAt, a.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("account not found: %d", a.ID)
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return out, nil
}

func (p *Postgres) DeleteAccount(ctx context.Context, id int64) error {
	cmd, err := p.db.Exec(ctx, `DELETE FROM linked_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("account not found: %d", id)
	}
	return nil
}
