package app

import (
	"context"
	"fmt"

	"github.com/billbatista/acasinha-ledger/category"
	"github.com/google/uuid"
)

type CategoryInput struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (s *State) ListCategories(ctx context.Context) ([]category.Category, error) {
	return s.categories.List(ctx)
}

func (s *State) CreateCategory(ctx context.Context, in CategoryInput) (*category.Category, error) {
	c, err := category.New(in.Name, in.Icon, in.Color)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *State) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*category.Category, error) {
	current, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := category.New(in.Name, in.Icon, in.Color)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt

	if err := s.categories.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}
	return &updated, nil
}

// DeleteCategory keeps at least one category around. Expenses that used
// the deleted category keep the dangling id.
func (s *State) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getCategory(ctx, id); err != nil {
		return err
	}

	count, err := s.categories.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count <= 1 {
		return category.ErrLastCategory
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

func (s *State) getCategory(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching category: %w", err)
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}
