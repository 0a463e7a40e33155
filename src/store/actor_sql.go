package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"homeledger-server/src/apperr"
	"homeledger-server/src/models"
)

// Postgres unique_violation error code.
const pgUniqueViolation = "23505"

func (p *Postgres) CreateActor(ctx context.Context, a *models.Actor) (*models.Actor, error) {
	query := `
		INSERT INTO actors (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, name, role, created_at
	`
	var out models.Actor
	err := p.db.QueryRow(ctx, query, a.Email, a.PasswordHash, a.Name, a.Role).
		Scan(&out.ID, &out.Email, &out.PasswordHash, &out.Name, &out.Role, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.InvalidArgument("email already registered: %s", a.Email)
		}
		return nil, fmt.Errorf("create actor: %w", err)
	}
	return &out, nil
}

func (p *Postgres) GetActorByID(ctx context.Context, id int64) (*models.Actor, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at
		FROM actors
		WHERE id = $1
	`
	var out models.Actor
	err := p.db.QueryRow(ctx, query, id).
		Scan(&out.ID, &out.Email, &out.PasswordHash, &out.Name, &out.Role, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("actor not found: %d", id)
		}
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return &out, nil
}

func (p *Postgres) GetActorByEmail(ctx context.Context, email string) (*models.Actor, error) {
	query := `
		SELECT id, email, password_hash, name, role, created_at
		FROM actors
		WHERE email = $1
	`
	var out models.Actor
	err := p.db.QueryRow(ctx, query, email).
		Scan(&out.ID, &out.Email, &out.PasswordHash, &out.Name, &out.Role, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("actor not found: %s", email)
		}
		return nil, fmt.Errorf("get actor by email: %w", err)
	}
	return &out, nil
}
