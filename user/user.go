package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultColor is the display color for members added without one.
const DefaultColor = "bg-stone-500"

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Email        string    `json:"email,omitempty"`
	Avatar       []byte    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasAccount reports whether the user can sign in. Members added to a
// ledger by someone else have no credentials.
func (u User) HasAccount() bool {
	return u.Email != "" && u.PasswordHash != ""
}

var (
	ErrEmailExists   = errors.New("email already exists")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrBlankPassword = errors.New("password can't be blank")
	ErrBlankName     = errors.New("name can't be blank")
	ErrLastUser      = errors.New("cannot delete the last remaining user")
)

// NewMember builds a user that exists only as a ledger participant.
func NewMember(name, color string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, ErrBlankName
	}
	if color == "" {
		color = DefaultColor
	}

	return User{
		ID:        uuid.New(),
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}, nil
}

type Repository interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Create(ctx context.Context, u User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int, error)
	VerifyPassword(hashedPassword, password string) error
	UpdateName(ctx context.Context, userID uuid.UUID, name string) error
	UpdateAvatar(ctx context.Context, img []byte, userID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
