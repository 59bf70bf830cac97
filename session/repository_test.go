package session

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateStoresHashOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db, time.Hour)
	userID := uuid.New()

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(sqlmock.AnyArg(), userID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s, err := repo.Create(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)
	assert.NotEqual(t, s.Token, hashToken(s.Token))
	assert.Len(t, hashToken(s.Token), 64)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db, 0)
	userID := uuid.New()
	columns := []string{"id", "user_id", "expires_at", "created_at"}

	t.Run("valid", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id").WithArgs(hashToken("tok")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(uuid.NewString(), userID.String(), time.Now().Add(time.Hour), time.Now()))

		s, err := repo.GetByToken(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, userID, s.UserID)
	})

	t.Run("unknown", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id").WithArgs(hashToken("nope")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetByToken(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired is removed", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id").WithArgs(hashToken("old")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(uuid.NewString(), userID.String(), time.Now().Add(-time.Minute), time.Now().Add(-time.Hour)))
		mock.ExpectExec("DELETE FROM sessions WHERE token_hash").WithArgs(hashToken("old")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := repo.GetByToken(context.Background(), "old")
		assert.ErrorIs(t, err, ErrExpiredSession)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
