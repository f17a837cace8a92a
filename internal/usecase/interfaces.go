package usecase

import (
	"context"
	"time"

	"github.com/splitpot/splitpot/internal/domain"
)

// ExpenseRepository defines data access for expenses. ListByGroup returns
// the complete record set for a group; balance aggregation always recomputes
// from the full set.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	Update(ctx context.Context, expense *domain.Expense) error
	DeleteTx(ctx context.Context, tx Transaction, id string) error
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error)
	ListAll(ctx context.Context) ([]*domain.Expense, error)
}

// SettlementRepository defines data access for settlements.
type SettlementRepository interface {
	Create(ctx context.Context, settlement *domain.Settlement) error
	GetByID(ctx context.Context, id string) (*domain.Settlement, error)
	UpdateStatus(ctx context.Context, id string, status domain.SettlementStatus, updatedAt time.Time) error
	// CancelPendingByExpenseTx cancels every pending settlement linked to an
	// expense, inside the transaction that deletes the expense.
	CancelPendingByExpenseTx(ctx context.Context, tx Transaction, expenseID string, updatedAt time.Time) error
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Settlement, error)
}

// GroupRepository defines data access for groups and their member lists.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, id string) error
	ListByMember(ctx context.Context, userID string) ([]*domain.Group, error)
	AddMember(ctx context.Context, groupID, userID string, updatedAt time.Time) error
	RemoveMember(ctx context.Context, groupID, userID string, updatedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ChangeNotifier fans mutation events out to whoever listens; the cache
// invalidation worker is the main consumer.
type ChangeNotifier interface {
	Publish(event domain.ChangeEvent)
}

// IdempotencyStore handles idempotency key storage for the HTTP layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
