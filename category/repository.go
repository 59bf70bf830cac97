package category

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *repository {
	return &repository{db: db}
}

const selectCategory = `SELECT id, name, COALESCE(icon, ''), COALESCE(color, ''), created_at FROM categories`

func (r *repository) Create(ctx context.Context, c Category) error {
	query := `INSERT INTO categories (id, name, icon, color, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Icon, c.Color, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c Category) error {
	query := `UPDATE categories SET name = $1, icon = $2, color = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, c.Name, c.Icon, c.Color, c.ID)
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return r.getOne(ctx, selectCategory+` WHERE id = $1`, id)
}

func (r *repository) GetByName(ctx context.Context, name string) (*Category, error) {
	return r.getOne(ctx, selectCategory+` WHERE name = $1 ORDER BY created_at ASC LIMIT 1`, name)
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, selectCategory+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

// SeedDefaults fills an empty categories table with Defaults.
func SeedDefaults(ctx context.Context, repo Repository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if n > 0 {
		return nil
	}

	now := time.Now().UTC()
	for i, d := range Defaults {
		d.ID = uuid.New()
		// keeps the default order when listing by created_at
		d.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := repo.Create(ctx, d); err != nil {
			return err
		}
	}

	slog.Info("seeded default categories", "count", len(Defaults))
	return nil
}
