package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
)

const sessionColumns = `id, name, description, color, icon, actor_id, created_at, last_accessed_at`

func scanSession(row pgx.Row) (*models.BudgetSession, error) {
	var s models.BudgetSession
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Color, &s.Icon, &s.ActorID,
		&s.CreatedAt, &s.LastAccessedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) ListSessions(ctx context.Context, sc scope.Scope) ([]models.BudgetSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM budget_sessions ORDER BY last_accessed_at DESC`
	var args []any
	if !sc.IsGlobal() {
		query = `SELECT ` + sessionColumns + ` FROM budget_sessions WHERE actor_id = $1 ORDER BY last_accessed_at DESC`
		args = append(args, sc.ActorID())
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.BudgetSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (p *Postgres) GetSession(ctx context.Context, id int64) (*models.BudgetSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM budget_sessions WHERE id = $1`
	s, err := scanSession(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("session not found: %d", id)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (p *Postgres) CreateSession(ctx context.Context, s *models.BudgetSession) (*models.BudgetSession, error) {
	query := `
		INSERT INTO budget_sessions (name, description, color, icon, actor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns
	out, err := scanSession(p.db.QueryRow(ctx, query, s.Name, s.Description, s.Color, s.Icon, s.ActorID))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return out, nil
}

func (p *Postgres) UpdateSession(ctx context.Context, s *models.BudgetSession) (*models.BudgetSession, error) {
	query := `
		UPDATE budget_sessions
		SET name = $1, description = $2, color = $3, icon = $4
		WHERE id = $5
		RETURNING ` + sessionColumns
	out, err := scanSession(p.db.QueryRow(ctx, query, s.Name, s.Description, s.Color, s.Icon, s.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("session not found: %d", s.ID)
		}
		return nil, fmt.Errorf("update session: %w", err)
	}
	return out, nil
}

func (p *Postgres) DeleteSession(ctx context.Context, id int64) error {
	cmd, err := p.db.Exec(ctx, `DELETE FROM budget_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("session not found: %d", id)
	}
	return nil
}

func (p *Postgres) TouchSession(ctx context.Context, id int64, at time.Time) error {
	cmd, err := p.db.Exec(ctx, `UPDATE budget_sessions SET last_accessed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("session not found: %d", id)
	}
	return nil
}
