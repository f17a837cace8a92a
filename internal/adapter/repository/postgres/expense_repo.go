package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository. The computed split
// and the weights it was derived from are stored as JSONB alongside the
// expense so aggregation never recomputes them.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create inserts a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	split, weights, err := marshalShares(expense)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (id, group_id, payer_id, description, amount_cents, policy, split, weights, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		expense.ID,
		expense.GroupID,
		expense.PayerID,
		expense.Description,
		int64(expense.Amount),
		string(expense.Policy),
		split,
		weights,
		expense.CreatedAt,
		expense.UpdatedAt,
	)

	return err
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, amount_cents, policy, split, weights, created_at, updated_at
		FROM expenses
		WHERE id = $1
	`

	expense, err := scanExpense(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExpenseNotFound
	}

	return expense, err
}

// Update updates an expense in place.
func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	split, weights, err := marshalShares(expense)
	if err != nil {
		return err
	}

	query := `
		UPDATE expenses
		SET description = $2, amount_cents = $3, policy = $4, split = $5, weights = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		expense.ID,
		expense.Description,
		int64(expense.Amount),
		string(expense.Policy),
		split,
		weights,
		expense.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// DeleteTx deletes an expense inside an existing transaction.
func (r *ExpenseRepository) DeleteTx(ctx context.Context, tx usecase.Transaction, id string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// ListByGroup retrieves the complete expense set for a group.
func (r *ExpenseRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, amount_cents, policy, split, weights, created_at, updated_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// ListAll retrieves every expense.
func (r *ExpenseRepository) ListAll(ctx context.Context) ([]*domain.Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, amount_cents, policy, split, weights, created_at, updated_at
		FROM expenses
		ORDER BY created_at DESC, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExpenses(rows)
}

func marshalShares(expense *domain.Expense) (split, weights []byte, err error) {
	split, err = json.Marshal(expense.Split)
	if err != nil {
		return nil, nil, err
	}
	if expense.Weights != nil {
		weights, err = json.Marshal(expense.Weights)
		if err != nil {
			return nil, nil, err
		}
	}
	return split, weights, nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		expense domain.Expense
		amount  int64
		policy  string
		split   []byte
		weights []byte
	)

	if err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&amount,
		&policy,
		&split,
		&weights,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	); err != nil {
		return nil, err
	}

	expense.Amount = domain.Cents(amount)
	expense.Policy = domain.SplitPolicy(policy)
	if err := json.Unmarshal(split, &expense.Split); err != nil {
		return nil, err
	}
	if len(weights) > 0 {
		if err := json.Unmarshal(weights, &expense.Weights); err != nil {
			return nil, err
		}
	}

	return &expense, nil
}

func collectExpenses(rows pgx.Rows) ([]*domain.Expense, error) {
	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}
