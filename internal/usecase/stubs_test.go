// Hand-rolled fakes for the usecase interfaces, for tests where stateful
// fallbacks beat per-call expectations. Each stub acts as a simple in-memory
// implementation unless a Func field overrides the behavior.
package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/usecase"
)

// stubExpenseRepository is a hand-rolled stub of ExpenseRepository.
type stubExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*domain.Expense

	CreateFunc      func(ctx context.Context, expense *domain.Expense) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Expense, error)
	UpdateFunc      func(ctx context.Context, expense *domain.Expense) error
	DeleteTxFunc    func(ctx context.Context, tx usecase.Transaction, id string) error
	ListByGroupFunc func(ctx context.Context, groupID string) ([]*domain.Expense, error)
	ListAllFunc     func(ctx context.Context) ([]*domain.Expense, error)
}

func newStubExpenseRepository() *stubExpenseRepository {
	return &stubExpenseRepository{expenses: make(map[string]*domain.Expense)}
}

func (m *stubExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = expense
	return nil
}

func (m *stubExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.expenses[id]; ok {
		return e, nil
	}
	return nil, domain.ErrExpenseNotFound
}

func (m *stubExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[expense.ID]; !ok {
		return domain.ErrExpenseNotFound
	}
	m.expenses[expense.ID] = expense
	return nil
}

func (m *stubExpenseRepository) DeleteTx(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteTxFunc != nil {
		return m.DeleteTxFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return domain.ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *stubExpenseRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Expense
	for _, e := range m.expenses {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *stubExpenseRepository) ListAll(ctx context.Context) ([]*domain.Expense, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		out = append(out, e)
	}
	return out, nil
}

// stubSettlementRepository is a hand-rolled stub of SettlementRepository.
type stubSettlementRepository struct {
	mu          sync.RWMutex
	settlements map[string]*domain.Settlement

	CreateFunc                   func(ctx context.Context, settlement *domain.Settlement) error
	GetByIDFunc                  func(ctx context.Context, id string) (*domain.Settlement, error)
	UpdateStatusFunc             func(ctx context.Context, id string, status domain.SettlementStatus, updatedAt time.Time) error
	CancelPendingByExpenseTxFunc func(ctx context.Context, tx usecase.Transaction, expenseID string, updatedAt time.Time) error
	ListByGroupFunc              func(ctx context.Context, groupID string) ([]*domain.Settlement, error)
	ListByUserFunc               func(ctx context.Context, userID string) ([]*domain.Settlement, error)
}

func newStubSettlementRepository() *stubSettlementRepository {
	return &stubSettlementRepository{settlements: make(map[string]*domain.Settlement)}
}

func (m *stubSettlementRepository) Create(ctx context.Context, settlement *domain.Settlement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, settlement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements[settlement.ID] = settlement
	return nil
}

func (m *stubSettlementRepository) GetByID(ctx context.Context, id string) (*domain.Settlement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settlements[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSettlementNotFound
}

func (m *stubSettlementRepository) UpdateStatus(ctx context.Context, id string, status domain.SettlementStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settlements[id]
	if !ok {
		return domain.ErrSettlementNotFound
	}
	s.Status = status
	s.UpdatedAt = updatedAt
	return nil
}

func (m *stubSettlementRepository) CancelPendingByExpenseTx(ctx context.Context, tx usecase.Transaction, expenseID string, updatedAt time.Time) error {
	if m.CancelPendingByExpenseTxFunc != nil {
		return m.CancelPendingByExpenseTxFunc(ctx, tx, expenseID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.settlements {
		if s.ExpenseID == expenseID && s.Status == domain.SettlementPending {
			s.Status = domain.SettlementCancelled
			s.UpdatedAt = updatedAt
		}
	}
	return nil
}

func (m *stubSettlementRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Settlement
	for _, s := range m.settlements {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *stubSettlementRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Settlement, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Settlement
	for _, s := range m.settlements {
		if s.FromUserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

// stubGroupRepository is a hand-rolled stub of GroupRepository.
type stubGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]*domain.Group

	CreateFunc       func(ctx context.Context, group *domain.Group) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Group, error)
	UpdateFunc       func(ctx context.Context, group *domain.Group) error
	DeleteFunc       func(ctx context.Context, id string) error
	ListByMemberFunc func(ctx context.Context, userID string) ([]*domain.Group, error)
	AddMemberFunc    func(ctx context.Context, groupID, userID string, updatedAt time.Time) error
	RemoveMemberFunc func(ctx context.Context, groupID, userID string, updatedAt time.Time) error
}

func newStubGroupRepository() *stubGroupRepository {
	return &stubGroupRepository{groups: make(map[string]*domain.Group)}
}

func (m *stubGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, group)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group.ID] = group
	return nil
}

func (m *stubGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGroupNotFound
}

func (m *stubGroupRepository) Update(ctx context.Context, group *domain.Group) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, group)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[group.ID]; !ok {
		return domain.ErrGroupNotFound
	}
	m.groups[group.ID] = group
	return nil
}

func (m *stubGroupRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return domain.ErrGroupNotFound
	}
	delete(m.groups, id)
	return nil
}

func (m *stubGroupRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Group, error) {
	if m.ListByMemberFunc != nil {
		return m.ListByMemberFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Group
	for _, g := range m.groups {
		if g.HasMember(userID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *stubGroupRepository) AddMember(ctx context.Context, groupID, userID string, updatedAt time.Time) error {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, groupID, userID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	g.Members = append(g.Members, userID)
	g.UpdatedAt = updatedAt
	return nil
}

func (m *stubGroupRepository) RemoveMember(ctx context.Context, groupID, userID string, updatedAt time.Time) error {
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(ctx, groupID, userID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	kept := g.Members[:0]
	for _, member := range g.Members {
		if member != userID {
			kept = append(kept, member)
		}
	}
	g.Members = kept
	g.UpdatedAt = updatedAt
	return nil
}

// stubIDGenerator is a hand-rolled stub of IDGenerator.
type stubIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func newStubIDGenerator() *stubIDGenerator {
	return &stubIDGenerator{}
}

func (m *stubIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// stubNotifier records published events.
type stubNotifier struct {
	mu     sync.Mutex
	Events []domain.ChangeEvent

	PublishFunc func(event domain.ChangeEvent)
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{}
}

func (m *stubNotifier) Publish(event domain.ChangeEvent) {
	if m.PublishFunc != nil {
		m.PublishFunc(event)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Published returns a copy of the recorded events.
func (m *stubNotifier) Published() []domain.ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChangeEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// stubTx is a no-op transaction.
type stubTx struct {
	Committed  bool
	RolledBack bool
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// stubTxManager hands out stubTx transactions.
type stubTxManager struct {
	mu  sync.Mutex
	Txs []*stubTx

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func newStubTxManager() *stubTxManager {
	return &stubTxManager{}
}

func (m *stubTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &stubTx{}
	m.Txs = append(m.Txs, tx)
	return tx, nil
}
