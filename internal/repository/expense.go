package repository

import (
	"context"
	"database/sql"

	"healthops-dashboard/internal/domain"

	"github.com/google/uuid"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, sl_no, expense_date, category, details, paid_by, paid_to, amount,
	mode_of_transaction, transaction_id, created_by, created_at, updated_at`

func (r *ExpenseRepository) List(ctx context.Context) ([]domain.OfficeExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM office_expenses ORDER BY expense_date DESC, sl_no DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OfficeExpense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (domain.OfficeExpense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM office_expenses WHERE id = $1", id))
	if err != nil {
		return domain.OfficeExpense{}, notFound(err)
	}
	return e, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.OfficeExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO office_expenses (`+expenseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.SlNo, e.Date, string(e.Category), e.Details, e.PaidBy, e.PaidTo, e.Amount,
		e.ModeOfTransaction, e.TransactionID, e.CreatedBy, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *ExpenseRepository) Update(ctx context.Context, e domain.OfficeExpense) error {
	res, err := r.db.ExecContext(ctx, `UPDATE office_expenses SET
			expense_date = $2, category = $3, details = $4, paid_by = $5, paid_to = $6, amount = $7,
			mode_of_transaction = $8, transaction_id = $9, updated_at = $10
		WHERE id = $1`,
		e.ID, e.Date, string(e.Category), e.Details, e.PaidBy, e.PaidTo, e.Amount,
		e.ModeOfTransaction, e.TransactionID, e.UpdatedAt)
	if err != nil {
		return err
	}
	return expectAffected(res, "expense "+e.ID)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM office_expenses WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, "expense "+id)
}

func scanExpense(s rowScanner) (domain.OfficeExpense, error) {
	var (
		e        domain.OfficeExpense
		category string
		txn      sql.NullString
	)
	if err := s.Scan(
		&e.ID,
		&e.SlNo,
		&e.Date,
		&category,
		&e.Details,
		&e.PaidBy,
		&e.PaidTo,
		&e.Amount,
		&e.ModeOfTransaction,
		&txn,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return domain.OfficeExpense{}, err
	}
	e.Category = domain.ExpenseCategory(category)
	e.TransactionID = txn.String
	return e, nil
}
