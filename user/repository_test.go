package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "color", "email", "password_hash", "created_at", "avatar"}

func TestNewMember(t *testing.T) {
	u, err := NewMember(" Sam ", "")
	require.NoError(t, err)
	assert.Equal(t, "Sam", u.Name)
	assert.Equal(t, DefaultColor, u.Color)
	assert.False(t, u.HasAccount())

	_, err = NewMember("", "bg-clay-500")
	assert.ErrorIs(t, err, ErrBlankName)
}

func TestRepository_Register(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "alex", DefaultColor, "alex@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		u, err := repo.Register(ctx, "", " Alex@Example.com", "secret")
		require.NoError(t, err)
		assert.True(t, u.HasAccount())
		assert.NoError(t, repo.VerifyPassword(u.PasswordHash, "secret"))
		assert.Error(t, repo.VerifyPassword(u.PasswordHash, "wrong"))
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: uniqueViolation})

		_, err := repo.Register(ctx, "Alex", "alex@example.com", "secret")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := repo.Register(ctx, "Alex", "not-an-email", "secret")
		assert.ErrorIs(t, err, ErrInvalidEmail)

		_, err = repo.Register(ctx, "Alex", "alex@example.com", "")
		assert.ErrorIs(t, err, ErrBlankPassword)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateMemberWithoutAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	u, _ := NewMember("Sam", "bg-clay-500")
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, "Sam", "bg-clay-500", nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewRepository(db).Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, name").WithArgs("sam@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "Sam", "bg-clay-500", "sam@example.com", "hash", time.Now(), nil))

	u, err := repo.GetByEmail(context.Background(), "Sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	mock.ExpectQuery("SELECT id, name").WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	u, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT id, name").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(uuid.NewString(), "Alex", "bg-softblue-500", "", "", now, nil).
			AddRow(uuid.NewString(), "Sam", "bg-clay-500", "", "", now, nil))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Sam", users[1].Name)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
