package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups expenses for reporting. Name may be a translation key
// ("cat_Food") or free text; Icon and Color are UI tokens.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

const OtherName = "cat_Other"

var Defaults = []Category{
	{Name: "cat_Food", Icon: "Utensils", Color: "bg-orange-100 text-orange-600"},
	{Name: "cat_Transport", Icon: "Bus", Color: "bg-blue-100 text-blue-600"},
	{Name: "cat_Shopping", Icon: "ShoppingBag", Color: "bg-purple-100 text-purple-600"},
	{Name: "cat_Entertainment", Icon: "Film", Color: "bg-pink-100 text-pink-600"},
	{Name: "cat_Housing", Icon: "Home", Color: "bg-green-100 text-green-600"},
	{Name: OtherName, Icon: "MoreHorizontal", Color: "bg-gray-100 text-gray-600"},
}

var (
	ErrEmptyName    = errors.New("category name can't be empty")
	ErrLastCategory = errors.New("cannot delete the last category")
)

func New(name, icon, color string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrEmptyName
	}
	if icon == "" {
		icon = "Tag"
	}
	if color == "" {
		color = "bg-stone-100 text-stone-600"
	}

	return Category{
		ID:        uuid.New(),
		Name:      name,
		Icon:      icon,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type Repository interface {
	Create(ctx context.Context, c Category) error
	Update(ctx context.Context, c Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Count(ctx context.Context) (int, error)
}
