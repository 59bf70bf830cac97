package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billbatista/acasinha-ledger/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expenseColumns = []string{
	"id", "ledger_id", "amount", "currency", "description", "category_id", "date", "paid_by",
	"split_type", "beneficiary_id", "is_settlement", "notes", "receipt_image", "tags", "is_pinned", "created_at",
}

func TestRepository_CreateNew(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	l, err := NewLedger("Home", TypeDaily, []uuid.UUID{alice, bob}, alice)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledgers").
		WithArgs(l.ID, l.Name, l.Type, l.CreatedBy, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ledger_users").
		WithArgs(l.ID, alice, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ledger_users").
		WithArgs(l.ID, bob, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateNew(context.Background(), l))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateNewRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	l, _ := NewLedger("Home", TypeDaily, []uuid.UUID{alice}, alice)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledgers").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ledger_users").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err = repo.CreateNew(context.Background(), l)
	assert.ErrorContains(t, err, "inserting ledger member")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetLedgerByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "type", "created_by", "created_at", "members"}).
			AddRow(id.String(), "Home", "daily", alice.String(), now, "{"+bob.String()+","+alice.String()+"}")
		mock.ExpectQuery("SELECT l.id, l.name").WithArgs(id).WillReturnRows(rows)

		l, err := repo.GetLedgerByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, l)
		assert.Equal(t, TypeDaily, l.Type)
		assert.Equal(t, []uuid.UUID{bob, alice}, l.Members)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT l.id, l.name").WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "created_by", "created_at", "members"}))

		l, err := repo.GetLedgerByID(context.Background(), id)
		assert.NoError(t, err)
		assert.Nil(t, l)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM ledger_expenses WHERE ledger_id").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM ledgers WHERE id").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteLedger(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveExpense(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	e, err := NewExpense(pair(), ExpenseInput{
		Amount:      d("100"),
		Currency:    currency.USD,
		Description: "Tickets",
		PaidBy:      alice,
		SplitType:   SplitTypeAmount,
		Splits:      map[uuid.UUID]decimal.Decimal{alice: d("60"), bob: d("40")},
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_expenses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ledger_expense_splits").
		WithArgs(e.ID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ledger_expense_splits").
		WithArgs(e.ID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveExpense(context.Background(), *e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveExpenseBindsEmptyTags(t *testing.T) {
	untagged, err := NewExpense(pair(), ExpenseInput{
		Amount:      d("80"),
		Currency:    currency.TWD,
		Description: "Groceries",
		PaidBy:      alice,
		SplitType:   SplitTypeEqual,
	})
	require.NoError(t, err)
	settlement, ok := SettleUp(pair(), alice, bob, d("-50"), currency.TWD)
	require.True(t, ok)

	tests := []struct {
		name    string
		expense Expense
	}{
		{"untagged expense", *untagged},
		{"settlement", *settlement},
		{"duplicate of untagged", *untagged.AsTemplate()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Nil(t, tt.expense.Tags)

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			arg := sqlmock.AnyArg()
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO ledger_expenses").
				WithArgs(arg, arg, arg, arg, arg, arg, arg, arg, arg, arg, arg, arg, arg, "{}", false, arg).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			require.NoError(t, NewRepository(db).SaveExpense(context.Background(), tt.expense))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_UpdateExpenseBindsEmptyTags(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := expense("10", alice, SplitTypeEqual)
	e.Tags = nil
	e.Pinned = true

	arg := sqlmock.AnyArg()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ledger_expenses SET").
		WithArgs(arg, arg, arg, arg, arg, arg, arg, arg, arg, arg, arg, "{}", true, e.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM ledger_expense_splits").WithArgs(e.ID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, NewRepository(db).UpdateExpense(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateExpenseReplacesSplits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	e := expense("10", alice, SplitTypeEqual)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ledger_expenses SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM ledger_expense_splits").WithArgs(e.ID).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateExpense(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetExpenses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ledgerID := uuid.New()
	equalID := uuid.New()
	pctID := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows(expenseColumns).
		AddRow(equalID.String(), ledgerID.String(), "100", "TWD", "Dinner", nil, now, alice.String(),
			"equal", nil, false, "", "", "{}", false, now).
		AddRow(pctID.String(), ledgerID.String(), "250.50", "USD", "Hotel", nil, now, bob.String(),
			"percentage", nil, false, "", "", "{trip,hotel}", true, now)
	mock.ExpectQuery("SELECT id, ledger_id, amount").WithArgs(ledgerID).WillReturnRows(rows)

	splitRows := sqlmock.NewRows([]string{"expense_id", "user_id", "value"}).
		AddRow(pctID.String(), alice.String(), "25").
		AddRow(pctID.String(), bob.String(), "75")
	mock.ExpectQuery("SELECT es.expense_id").WithArgs(ledgerID).WillReturnRows(splitRows)

	expenses, err := repo.GetExpenses(context.Background(), ledgerID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)

	assert.Nil(t, expenses[0].Splits)
	assert.Equal(t, currency.USD, expenses[1].Currency)
	assert.Equal(t, SplitTypePercentage, expenses[1].SplitType)
	assert.Equal(t, []string{"trip", "hotel"}, expenses[1].Tags)
	assert.False(t, expenses[0].Pinned)
	assert.True(t, expenses[1].Pinned)
	assert.Equal(t, "75", expenses[1].Splits[bob].String())

	balance := CalculateBalance(Ledger{Members: []uuid.UUID{alice, bob}}, expenses, alice, currency.USD, identity)
	assertAmount(t, 50-62.625, balance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RemoveMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM ledger_users WHERE user_id").WithArgs(carol).WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewRepository(db).RemoveMember(context.Background(), carol))
	assert.NoError(t, mock.ExpectationsWereMet())
}
