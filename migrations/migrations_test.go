package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCoversRepositories(t *testing.T) {
	for _, table := range []string{"users", "sessions", "categories", "ledgers", "ledger_users", "ledger_expenses", "ledger_expense_splits", "events"} {
		assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestApply(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(Schema).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Apply(context.Background(), db))

	mock.ExpectExec(Schema).WillReturnError(errors.New("permission denied"))
	assert.ErrorContains(t, Apply(context.Background(), db), "permission denied")

	assert.NoError(t, mock.ExpectationsWereMet())
}
