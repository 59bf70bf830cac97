package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *repository {
	return &repository{db: db}
}

const selectLedger = `SELECT l.id, l.name, l.type, l.created_by, l.created_at,
              COALESCE(array_agg(lu.user_id ORDER BY lu.position) FILTER (WHERE lu.user_id IS NOT NULL), '{}')
              FROM ledgers l
              LEFT JOIN ledger_users lu ON l.id = lu.ledger_id`

const selectExpense = `SELECT id, ledger_id, amount, currency, description, category_id, date, paid_by,
              split_type, beneficiary_id, is_settlement, COALESCE(notes, ''), COALESCE(receipt_image, ''), tags, is_pinned, created_at
              FROM ledger_expenses`

func (r *repository) CreateNew(ctx context.Context, ledger Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertLedger := `INSERT INTO ledgers (id, name, type, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err = tx.ExecContext(
		ctx,
		insertLedger,
		ledger.ID,
		ledger.Name,
		ledger.Type,
		ledger.CreatedBy,
		ledger.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting ledger: %w", err)
	}

	if err := insertMembers(ctx, tx, ledger.ID, ledger.Members); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateLedger rewrites name, type and the member list.
func (r *repository) UpdateLedger(ctx context.Context, ledger Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE ledgers SET name = $1, type = $2 WHERE id = $3`, ledger.Name, ledger.Type, ledger.ID)
	if err != nil {
		return fmt.Errorf("updating ledger: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM ledger_users WHERE ledger_id = $1`, ledger.ID)
	if err != nil {
		return fmt.Errorf("clearing ledger members: %w", err)
	}

	if err := insertMembers(ctx, tx, ledger.ID, ledger.Members); err != nil {
		return err
	}

	return tx.Commit()
}

func insertMembers(ctx context.Context, tx *sql.Tx, ledgerID uuid.UUID, members []uuid.UUID) error {
	insertLedgerUser := `INSERT INTO ledger_users (ledger_id, user_id, position) VALUES ($1, $2, $3)`
	for i, userID := range members {
		_, err := tx.ExecContext(ctx, insertLedgerUser, ledgerID, userID, i)
		if err != nil {
			return fmt.Errorf("inserting ledger member: %w", err)
		}
	}
	return nil
}

func (r *repository) GetLedgerByID(ctx context.Context, ledgerID uuid.UUID) (*Ledger, error) {
	query := selectLedger + ` WHERE l.id = $1 GROUP BY l.id`

	ledger, err := scanLedger(r.db.QueryRowContext(ctx, query, ledgerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return ledger, nil
}

func (r *repository) ListLedgers(ctx context.Context) ([]Ledger, error) {
	query := selectLedger + ` GROUP BY l.id ORDER BY l.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledgers []Ledger
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, *ledger)
	}

	return ledgers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedger(row rowScanner) (*Ledger, error) {
	var ledger Ledger
	var members pq.StringArray
	err := row.Scan(
		&ledger.ID,
		&ledger.Name,
		&ledger.Type,
		&ledger.CreatedBy,
		&ledger.CreatedAt,
		&members,
	)
	if err != nil {
		return nil, err
	}

	ledger.Members = make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			return nil, fmt.Errorf("parsing member id: %w", err)
		}
		ledger.Members = append(ledger.Members, id)
	}

	return &ledger, nil
}

// DeleteLedger removes the ledger's expenses and then the ledger. The two
// statements are not in one transaction; a failure in between leaves the
// ledger without expenses.
func (r *repository) DeleteLedger(ctx context.Context, ledgerID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ledger_expenses WHERE ledger_id = $1`, ledgerID)
	if err != nil {
		return fmt.Errorf("deleting ledger expenses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM ledgers WHERE id = $1`, ledgerID)
	if err != nil {
		return fmt.Errorf("deleting ledger: %w", err)
	}

	return nil
}

// RemoveMember drops userID from every ledger. Expenses that reference the
// user are left as they are.
func (r *repository) RemoveMember(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ledger_users WHERE user_id = $1`, userID)
	return err
}

func (r *repository) SaveExpense(ctx context.Context, expense Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO ledger_expenses (id, ledger_id, amount, currency, description, category_id, date, paid_by,
              split_type, beneficiary_id, is_settlement, notes, receipt_image, tags, is_pinned, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = tx.ExecContext(
		ctx,
		query,
		expense.ID,
		expense.LedgerID,
		expense.Amount,
		expense.Currency,
		expense.Description,
		expense.CategoryID,
		expense.Date,
		expense.PaidBy,
		expense.SplitType,
		expense.BeneficiaryID,
		expense.IsSettlement,
		expense.Notes,
		expense.ReceiptImage,
		tagsArray(expense.Tags),
		expense.Pinned,
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.SplitRows()); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) UpdateExpense(ctx context.Context, expense Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE ledger_expenses SET amount = $1, currency = $2, description = $3, category_id = $4, date = $5,
              paid_by = $6, split_type = $7, beneficiary_id = $8, is_settlement = $9, notes = $10,
              receipt_image = $11, tags = $12, is_pinned = $13
              WHERE id = $14`
	_, err = tx.ExecContext(
		ctx,
		query,
		expense.Amount,
		expense.Currency,
		expense.Description,
		expense.CategoryID,
		expense.Date,
		expense.PaidBy,
		expense.SplitType,
		expense.BeneficiaryID,
		expense.IsSettlement,
		expense.Notes,
		expense.ReceiptImage,
		tagsArray(expense.Tags),
		expense.Pinned,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM ledger_expense_splits WHERE expense_id = $1`, expense.ID)
	if err != nil {
		return fmt.Errorf("clearing expense splits: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.SplitRows()); err != nil {
		return err
	}

	return tx.Commit()
}

// tagsArray binds nil tags as an empty array; the column is NOT NULL.
func tagsArray(tags []string) any {
	if tags == nil {
		tags = []string{}
	}
	return pq.Array(tags)
}

func insertSplits(ctx context.Context, tx *sql.Tx, splits []ExpenseSplit) error {
	query := `INSERT INTO ledger_expense_splits (expense_id, user_id, value) VALUES ($1, $2, $3)`
	for _, split := range splits {
		_, err := tx.ExecContext(ctx, query, split.ExpenseID, split.UserID, split.Value)
		if err != nil {
			return fmt.Errorf("inserting expense split: %w", err)
		}
	}
	return nil
}

func (r *repository) DeleteExpense(ctx context.Context, expenseID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ledger_expenses WHERE id = $1`, expenseID)
	return err
}

func (r *repository) GetExpense(ctx context.Context, expenseID uuid.UUID) (*Expense, error) {
	expense, err := scanExpense(r.db.QueryRowContext(ctx, selectExpense+` WHERE id = $1`, expenseID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT expense_id, user_id, value FROM ledger_expense_splits WHERE expense_id = $1`, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	splits, err := scanSplits(rows)
	if err != nil {
		return nil, err
	}
	attachSplits([]*Expense{expense}, splits)

	return expense, nil
}

// GetExpenses returns every expense of the ledger, newest first, with their
// split values attached.
func (r *repository) GetExpenses(ctx context.Context, ledgerID uuid.UUID) ([]Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpense+` WHERE ledger_id = $1 ORDER BY date DESC`, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	splits, err := r.GetExpenseSplits(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	ptrs := make([]*Expense, len(expenses))
	for i := range expenses {
		ptrs[i] = &expenses[i]
	}
	attachSplits(ptrs, splits)

	return expenses, nil
}

func (r *repository) GetExpenseSplits(ctx context.Context, ledgerID uuid.UUID) ([]ExpenseSplit, error) {
	query := `SELECT es.expense_id, es.user_id, es.value
              FROM ledger_expense_splits es
              INNER JOIN ledger_expenses e ON es.expense_id = e.id
              WHERE e.ledger_id = $1`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSplits(rows)
}

func scanExpense(row rowScanner) (*Expense, error) {
	var expense Expense
	err := row.Scan(
		&expense.ID,
		&expense.LedgerID,
		&expense.Amount,
		&expense.Currency,
		&expense.Description,
		&expense.CategoryID,
		&expense.Date,
		&expense.PaidBy,
		&expense.SplitType,
		&expense.BeneficiaryID,
		&expense.IsSettlement,
		&expense.Notes,
		&expense.ReceiptImage,
		pq.Array(&expense.Tags),
		&expense.Pinned,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func scanSplits(rows *sql.Rows) ([]ExpenseSplit, error) {
	var splits []ExpenseSplit
	for rows.Next() {
		var split ExpenseSplit
		if err := rows.Scan(&split.ExpenseID, &split.UserID, &split.Value); err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	return splits, rows.Err()
}

func attachSplits(expenses []*Expense, splits []ExpenseSplit) {
	byID := make(map[uuid.UUID]*Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}

	for _, s := range splits {
		e, ok := byID[s.ExpenseID]
		if !ok {
			continue
		}
		if e.Splits == nil {
			e.Splits = make(map[uuid.UUID]decimal.Decimal)
		}
		e.Splits[s.UserID] = s.Value
	}
}
