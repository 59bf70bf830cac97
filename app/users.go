package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/billbatista/acasinha-ledger/user"
	"github.com/google/uuid"
)

const (
	EventUserAdded         = "user.added"
	EventUserDeleted       = "user.deleted"
	EventUserAvatarUpdated = "user.avatar_updated"
)

func (s *State) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

func (s *State) GetUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// AddMember creates a user without credentials, to be placed in ledgers.
func (s *State) AddMember(ctx context.Context, actorID uuid.UUID, name, color string) (*user.User, error) {
	u, err := user.NewMember(name, color)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}

	s.record(EventUserAdded, actorID, uuid.Nil, map[string]string{
		"user_id": u.ID.String(),
		"name":    u.Name,
	})
	return &u, nil
}

func (s *State) RenameUser(ctx context.Context, userID uuid.UUID, name string) (*user.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	renamed, err := user.NewMember(name, u.Color)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateName(ctx, userID, renamed.Name); err != nil {
		return nil, fmt.Errorf("updating name: %w", err)
	}
	u.Name = renamed.Name
	return u, nil
}

// DeleteUser removes a user from every ledger and signs them out. Expenses
// they paid stay in place. The last remaining user can't be deleted.
func (s *State) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count <= 1 {
		return user.ErrLastUser
	}

	if err := s.ledgers.RemoveMember(ctx, userID); err != nil {
		return fmt.Errorf("removing user from ledgers: %w", err)
	}
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.record(EventUserDeleted, actorID, uuid.Nil, map[string]string{"user_id": userID.String()})
	return nil
}

// MaxAvatarSize caps uploaded avatar images.
const MaxAvatarSize = 10 << 20

var ErrAvatarTooLarge = errors.New("avatar exceeds 10 MB")

func (s *State) UpdateAvatar(ctx context.Context, userID uuid.UUID, img []byte) error {
	if len(img) > MaxAvatarSize {
		return ErrAvatarTooLarge
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.UpdateAvatar(ctx, img, userID); err != nil {
		return fmt.Errorf("updating avatar: %w", err)
	}

	s.record(EventUserAvatarUpdated, userID, uuid.Nil, map[string]string{"user_id": userID.String()})
	return nil
}
