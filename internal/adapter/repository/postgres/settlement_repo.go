package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

// Create inserts a new settlement.
func (r *SettlementRepository) Create(ctx context.Context, settlement *domain.Settlement) error {
	query := `
		INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount_cents, status, expense_id, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		settlement.ID,
		settlement.GroupID,
		settlement.FromUserID,
		settlement.ToUserID,
		int64(settlement.Amount),
		string(settlement.Status),
		settlement.ExpenseID,
		settlement.Note,
		settlement.CreatedAt,
		settlement.UpdatedAt,
	)

	return err
}

// GetByID retrieves a settlement by ID.
func (r *SettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	query := `
		SELECT id, group_id, from_user_id, to_user_id, amount_cents, status, COALESCE(expense_id, ''), note, created_at, updated_at
		FROM settlements
		WHERE id = $1
	`

	settlement, err := scanSettlement(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSettlementNotFound
	}

	return settlement, err
}

// UpdateStatus transitions a settlement out of the pending state. The status
// check is part of the statement so concurrent transitions cannot both win.
func (r *SettlementRepository) UpdateStatus(ctx context.Context, id string, status domain.SettlementStatus, updatedAt time.Time) error {
	query := `
		UPDATE settlements
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	tag, err := r.pool.Exec(ctx, query, id, string(status), updatedAt, string(domain.SettlementPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSettlementNotPending
	}

	return nil
}

// CancelPendingByExpenseTx cancels every pending settlement raised against
// an expense, inside the transaction that deletes the expense.
func (r *SettlementRepository) CancelPendingByExpenseTx(ctx context.Context, tx usecase.Transaction, expenseID string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE settlements
		SET status = $2, updated_at = $3
		WHERE expense_id = $1 AND status = $4
	`

	_, err := pgxTx.Exec(ctx, query,
		expenseID,
		string(domain.SettlementCancelled),
		updatedAt,
		string(domain.SettlementPending),
	)

	return err
}

// ListByGroup retrieves the complete settlement set for a group.
func (r *SettlementRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	query := `
		SELECT id, group_id, from_user_id, to_user_id, amount_cents, status, COALESCE(expense_id, ''), note, created_at, updated_at
		FROM settlements
		WHERE group_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSettlements(rows)
}

// ListByUser retrieves settlements where the user is the paying party.
func (r *SettlementRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Settlement, error) {
	query := `
		SELECT id, group_id, from_user_id, to_user_id, amount_cents, status, COALESCE(expense_id, ''), note, created_at, updated_at
		FROM settlements
		WHERE from_user_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSettlements(rows)
}

func scanSettlement(row pgx.Row) (*domain.Settlement, error) {
	var (
		settlement domain.Settlement
		amount     int64
		status     string
	)

	if err := row.Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.FromUserID,
		&settlement.ToUserID,
		&amount,
		&status,
		&settlement.ExpenseID,
		&settlement.Note,
		&settlement.CreatedAt,
		&settlement.UpdatedAt,
	); err != nil {
		return nil, err
	}

	settlement.Amount = domain.Cents(amount)
	settlement.Status = domain.SettlementStatus(status)

	return &settlement, nil
}

func collectSettlements(rows pgx.Rows) ([]*domain.Settlement, error) {
	var settlements []*domain.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, settlement)
	}

	return settlements, rows.Err()
}
