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

// SettlementUseCase handles settlement business logic. Settlements start
// pending and only affect balances once completed.
type SettlementUseCase struct {
	settlementRepo SettlementRepository
	groupRepo      GroupRepository
	cache          *resultcache.Store
	notifier       ChangeNotifier
	idGen          IDGenerator
	logger         zerolog.Logger
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	settlementRepo SettlementRepository,
	groupRepo GroupRepository,
	cache *resultcache.Store,
	notifier ChangeNotifier,
	idGen IDGenerator,
	logger zerolog.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		settlementRepo: settlementRepo,
		groupRepo:      groupRepo,
		cache:          cache,
		notifier:       notifier,
		idGen:          idGen,
		logger:         logger,
	}
}

// CreateSettlementInput represents input for recording a settlement.
type CreateSettlementInput struct {
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	// ExpenseID links the settlement to the expense it pays for; empty for
	// free-standing settlements.
	ExpenseID string
	Note      string
}

// CreateSettlement records a pending settlement between two group members.
func (uc *SettlementUseCase) CreateSettlement(ctx context.Context, input CreateSettlementInput) (*domain.Settlement, error) {
	if input.FromUserID == input.ToUserID {
		return nil, domain.ErrSameUser
	}

	amount := domain.CentsFromDecimal(input.Amount)
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	group, err := uc.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	for _, userID := range []string{input.FromUserID, input.ToUserID} {
		if !group.HasMember(userID) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotGroupMember, userID)
		}
	}

	now := time.Now().UTC()
	settlement := &domain.Settlement{
		ID:         uc.idGen.Generate(),
		GroupID:    input.GroupID,
		FromUserID: input.FromUserID,
		ToUserID:   input.ToUserID,
		Amount:     amount,
		Status:     domain.SettlementPending,
		ExpenseID:  input.ExpenseID,
		Note:       input.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	scope := domain.ScopeGroupSettlements(settlement.GroupID)
	uc.cache.OptimisticInsert(ctx, scope, settlement)

	if err := uc.settlementRepo.Create(ctx, settlement); err != nil {
		uc.cache.OptimisticRemove(ctx, scope, settlement.ID)
		return nil, err
	}

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventSettlementAdded,
		GroupID:    settlement.GroupID,
		UserID:     settlement.FromUserID,
		RecordID:   settlement.ID,
		OccurredAt: now,
	})

	return settlement, nil
}

// CompleteSettlement marks a pending settlement as completed, at which point
// it starts paying down balances.
func (uc *SettlementUseCase) CompleteSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.transition(ctx, id, domain.SettlementCompleted)
}

// CancelSettlement marks a pending settlement as cancelled.
func (uc *SettlementUseCase) CancelSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return uc.transition(ctx, id, domain.SettlementCancelled)
}

func (uc *SettlementUseCase) transition(ctx context.Context, id string, status domain.SettlementStatus) (*domain.Settlement, error) {
	settlement, err := uc.settlementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement.Status != domain.SettlementPending {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrSettlementNotPending, id, settlement.Status)
	}

	now := time.Now().UTC()
	if err := uc.settlementRepo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	settlement.Status = status
	settlement.UpdatedAt = now

	uc.publish(domain.ChangeEvent{
		Kind:       domain.EventSettlementUpdated,
		GroupID:    settlement.GroupID,
		UserID:     settlement.FromUserID,
		RecordID:   settlement.ID,
		OccurredAt: now,
	})

	return settlement, nil
}

// ListGroupSettlements lists a group's settlements, serving from the result
// cache when possible.
func (uc *SettlementUseCase) ListGroupSettlements(ctx context.Context, groupID string) ([]*domain.Settlement, error) {
	scope := domain.ScopeGroupSettlements(groupID)
	if raw, ok := uc.cache.Get(ctx, scope); ok {
		var cached []*domain.Settlement
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	settlements, err := uc.settlementRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(settlements); err == nil {
		uc.cache.Put(ctx, scope, raw)
	}
	return settlements, nil
}

// ListUserSettlements lists settlements a user is the paying party of.
func (uc *SettlementUseCase) ListUserSettlements(ctx context.Context, userID string) ([]*domain.Settlement, error) {
	scope := domain.ScopeUserSettlements(userID)
	if raw, ok := uc.cache.Get(ctx, scope); ok {
		var cached []*domain.Settlement
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	settlements, err := uc.settlementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(settlements); err == nil {
		uc.cache.Put(ctx, scope, raw)
	}
	return settlements, nil
}

func (uc *SettlementUseCase) publish(event domain.ChangeEvent) {
	metrics.EventsPublished.WithLabelValues(event.Kind).Inc()
	uc.notifier.Publish(event)
}
