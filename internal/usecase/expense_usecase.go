package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/infrastructure/metrics"
	"github.com/splitpot/splitpot/internal/resultcache"
)

// ExpenseUseCase handles expense business logic: splits are computed once at
// creation or edit time and stored on the record.
type ExpenseUseCase struct {
	expenseRepo    ExpenseRepository
	settlementRepo SettlementRepository
	groupRepo      GroupRepository
	txManager      TransactionManager
	cache          *resultcache.Store
	notifier       ChangeNotifier
	idGen          IDGenerator
	logger         zerolog.Logger
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	expenseRepo ExpenseRepository,
	settlementRepo SettlementRepository,
	groupRepo GroupRepository,
	txManager TransactionManager,
	cache *resultcache.Store,
	notifier ChangeNotifier,
	idGen IDGenerator,
	logger zerolog.Logger,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		expenseRepo:    expenseRepo,
		settlementRepo: settlementRepo,
		groupRepo:      groupRepo,
		txManager:      txManager,
		cache:          cache,
		notifier:       notifier,
		idGen:          idGen,
		logger:         logger,
	}
}

// SplitMemberInput is one member's parameters in an expense request.
type SplitMemberInput struct {
	MemberID string
	Weight   float64
	Amount   decimal.Decimal
}

// CreateExpenseInput represents input for creating an expense.
type CreateExpenseInput struct {
	GroupID     string
	PayerID     string
	Description string
	Amount      decimal.Decimal
	Policy      string
	// Members may be empty for the equal policy, in which case the expense
	// is split across the whole group.
	Members []SplitMemberInput
}

// CreateExpense validates the input, computes the split and stores the
// expense. The new record is inserted into the cached group list before the
// durable write so readers see it immediately; a failed write removes it
// again.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	policy, amount, memberInputs, weights, err := uc.resolveSplitInput(ctx, input.GroupID, input.PayerID, input.Amount, input.Policy, input.Members)
	if err != nil {
		return nil, err
	}

	split, err := domain.ComputeSplit(amount, policy, memberInputs)
	if err != nil {
		metrics.SplitErrors.Inc()
		return nil, err
	}
	metrics.SplitsComputed.WithLabelValues(string(policy)).Inc()

	now := time.Now().UTC()
	expense := &domain.Expense{
		ID:          uc.idGen.Generate(),
		GroupID:     input.GroupID,
		PayerID:     input.PayerID,
		Description: input.Description,
		Amount:      amount,
		Policy:      policy,
		Split:       split,
		Weights:     weights,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	scope := domain.ScopeGroupExpenses(expense.GroupID)
	uc.cache.OptimisticInsert(ctx, scope, expense)

	if err := uc.expenseRepo.Create(ctx, expense); err != nil {
		uc.cache.OptimisticRemove(ctx, scope, expense.ID)
		return nil, err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventExpenseAdded,
		GroupID:    expense.GroupID,
		UserID:     expense.PayerID,
		RecordID:   expense.ID,
		OccurredAt: now,
	})

	return expense, nil
}

// UpdateExpenseInput represents input for editing an expense. The split is
// recomputed from scratch.
type UpdateExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Policy      string
	Members     []SplitMemberInput
}

// UpdateExpense recomputes the split and updates the stored record.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, id string, input UpdateExpenseInput) (*domain.Expense, error) {
	expense, err := uc.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	policy, amount, memberInputs, weights, err := uc.resolveSplitInput(ctx, expense.GroupID, expense.PayerID, input.Amount, input.Policy, input.Members)
	if err != nil {
		return nil, err
	}

	split, err := domain.ComputeSplit(amount, policy, memberInputs)
	if err != nil {
		metrics.SplitErrors.Inc()
		return nil, err
	}
	metrics.SplitsComputed.WithLabelValues(string(policy)).Inc()

	now := time.Now().UTC()
	expense.Description = input.Description
	expense.Amount = amount
	expense.Policy = policy
	expense.Split = split
	expense.Weights = weights
	expense.UpdatedAt = now

	if err := uc.expenseRepo.Update(ctx, expense); err != nil {
		return nil, err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventExpenseUpdated,
		GroupID:    expense.GroupID,
		UserID:     expense.PayerID,
		RecordID:   expense.ID,
		OccurredAt: now,
	})

	return expense, nil
}

// DeleteExpense removes an expense and cancels any pending settlement that
// was raised against it, in one transaction.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, id string) error {
	expense, err := uc.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.settlementRepo.CancelPendingByExpenseTx(ctx, tx, id, now); err != nil {
		return err
	}
	if err := uc.expenseRepo.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventExpenseDeleted,
		GroupID:    expense.GroupID,
		UserID:     expense.PayerID,
		RecordID:   expense.ID,
		OccurredAt: now,
	})

	return nil
}

// GetExpense retrieves an expense by ID.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return uc.expenseRepo.GetByID(ctx, id)
}

// ListGroupExpenses lists a group's expenses, serving from the result cache
// when possible.
func (uc *ExpenseUseCase) ListGroupExpenses(ctx context.Context, groupID string) ([]*domain.Expense, error) {
	scope := domain.ScopeGroupExpenses(groupID)
	if raw, ok := uc.cache.Get(ctx, scope); ok {
		var cached []*domain.Expense
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(expenses); err == nil {
		uc.cache.Put(ctx, scope, raw)
	}
	return expenses, nil
}

// ListAllExpenses lists every expense, served from the global expense scope.
func (uc *ExpenseUseCase) ListAllExpenses(ctx context.Context) ([]*domain.Expense, error) {
	if raw, ok := uc.cache.Get(ctx, domain.ScopeExpensesAll); ok {
		var cached []*domain.Expense
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	expenses, err := uc.expenseRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(expenses); err == nil {
		uc.cache.Put(ctx, domain.ScopeExpensesAll, raw)
	}
	return expenses, nil
}

// PreviewSplit computes a split without storing anything.
func (uc *ExpenseUseCase) PreviewSplit(amount decimal.Decimal, policy string, members []SplitMemberInput) (domain.Split, error) {
	parsed, err := domain.ParseSplitPolicy(policy)
	if err != nil {
		return nil, err
	}

	split, err := domain.ComputeSplit(domain.CentsFromDecimal(amount), parsed, toMemberInputs(members))
	if err != nil {
		metrics.SplitErrors.Inc()
		return nil, err
	}
	metrics.SplitsComputed.WithLabelValues(string(parsed)).Inc()
	return split, nil
}

// resolveSplitInput validates common expense input and expands an empty
// member list to the whole group for equal splits.
func (uc *ExpenseUseCase) resolveSplitInput(
	ctx context.Context,
	groupID, payerID string,
	rawAmount decimal.Decimal,
	rawPolicy string,
	members []SplitMemberInput,
) (domain.SplitPolicy, domain.Cents, []domain.MemberInput, map[string]float64, error) {
	policy, err := domain.ParseSplitPolicy(rawPolicy)
	if err != nil {
		return "", 0, nil, nil, err
	}

	amount := domain.CentsFromDecimal(rawAmount)
	if err := domain.ValidateAmount(amount); err != nil {
		return "", 0, nil, nil, err
	}

	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return "", 0, nil, nil, err
	}
	if !group.HasMember(payerID) {
		return "", 0, nil, nil, fmt.Errorf("%w: payer %s", domain.ErrNotGroupMember, payerID)
	}

	if len(members) == 0 && policy == domain.SplitEqual {
		members = make([]SplitMemberInput, len(group.Members))
		for i, m := range group.Members {
			members[i] = SplitMemberInput{MemberID: m}
		}
	}
	for _, m := range members {
		if !group.HasMember(m.MemberID) {
			return "", 0, nil, nil, fmt.Errorf("%w: %s", domain.ErrNotGroupMember, m.MemberID)
		}
	}

	var weights map[string]float64
	if policy == domain.SplitPercentage || policy == domain.SplitShares {
		weights = make(map[string]float64, len(members))
		for _, m := range members {
			weights[m.MemberID] = m.Weight
		}
	}

	return policy, amount, toMemberInputs(members), weights, nil
}

func toMemberInputs(members []SplitMemberInput) []domain.MemberInput {
	out := make([]domain.MemberInput, len(members))
	for i, m := range members {
		out[i] = domain.MemberInput{
			MemberID: m.MemberID,
			Weight:   m.Weight,
			Amount:   m.Amount,
		}
	}
	return out
}

func (uc *ExpenseUseCase) publish(event domain.ChangeEvent) {
	metrics.EventsPublished.WithLabelValues(event.Kind).Inc()
	uc.notifier.Publish(event)
}
