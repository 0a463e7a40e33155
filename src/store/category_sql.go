package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"homeledger-server/src/apperr"
	"homeledger-server/src/models"
)

func (p *Postgres) ListCategories(ctx context.Context, kind string) ([]models.Category, error) {
	query := `SELECT id, name, kind, description FROM categories ORDER BY id`
	args := []any{}
	if kind != "" {
		query = `SELECT id, name, kind, description FROM categories WHERE kind = $1 ORDER BY id`
		args = append(args, kind)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (p *Postgres) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT id, name, kind, description FROM categories WHERE id = $1`
	var c models.Category
	err := p.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Kind, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("category not found: %d", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (p *Postgres) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, kind, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, kind, description
	`
	var out models.Category
	err := p.db.QueryRow(ctx, query, c.Name, c.Kind, c.Description).
		Scan(&out.ID, &out.Name, &out.Kind, &out.Description)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &out, nil
}

func (p *Postgres) UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = $1, kind = $2, description = $3
		WHERE id = $4
		RETURNING id, name, kind, description
	`
	var out models.Category
	err := p.db.QueryRow(ctx, query, c.Name, c.Kind, c.Description, c.ID).
		Scan(&out.ID, &out.Name, &out.Kind, &out.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("category not found: %d", c.ID)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &out, nil
}

func (p *Postgres) DeleteCategory(ctx context.Context, id int64) error {
	cmd, err := p.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("category not found: %d", id)
	}
	return nil
}

func (p *Postgres) CountCategories(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
