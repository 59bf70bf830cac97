package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/billbatista/acasinha-ledger/session"
	"github.com/billbatista/acasinha-ledger/user"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const (
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
)

// Register creates an account and signs it in.
func (s *State) Register(ctx context.Context, name, email, password string) (*user.User, *session.Session, error) {
	u, err := s.users.Register(ctx, name, email, password)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	s.record(EventUserRegistered, u.ID, uuid.Nil, map[string]string{
		"user_id":    u.ID.String(),
		"email":      u.Email,
		"session_id": sess.ID.String(),
	})
	return u, sess, nil
}

func (s *State) Login(ctx context.Context, email, password string) (*user.User, *session.Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching user: %w", err)
	}
	if u == nil || !u.HasAccount() {
		return nil, nil, ErrInvalidCredentials
	}
	if err := s.users.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	s.record(EventUserLoggedIn, u.ID, uuid.Nil, map[string]string{
		"user_id":    u.ID.String(),
		"session_id": sess.ID.String(),
	})
	return u, sess, nil
}

func (s *State) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *State) Sessions() session.Repository {
	return s.sessions
}
