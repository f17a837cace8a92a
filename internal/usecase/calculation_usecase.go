package usecase

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/infrastructure/metrics"
	"github.com/splitpot/splitpot/internal/resultcache"
)

// GroupBalancesResult is the cached output of one balance computation: net
// balances plus the transfer plan that settles them.
type GroupBalancesResult struct {
	GroupID    string            `json:"group_id"`
	Balances   domain.Balance    `json:"balances"`
	Transfers  []domain.Transfer `json:"transfers"`
	ComputedAt time.Time         `json:"computed_at"`
}

// CalculationUseCase recomputes balances and settlement plans from the full
// record set and memoizes them in the result cache.
//
// Aggregation and minimization are pure, so no lock is held across a
// recomputation. Instead each computation snapshots a generation counter
// that every mutation event bumps; if the counter moved while the
// computation ran, its result is served to the caller but not cached, and
// the next reader recomputes from the newer record set. Concurrent requests
// for the same group share one computation via singleflight.
type CalculationUseCase struct {
	expenseRepo    ExpenseRepository
	settlementRepo SettlementRepository
	cache          *resultcache.Store
	logger         zerolog.Logger

	flight     singleflight.Group
	generation atomic.Uint64
}

// NewCalculationUseCase creates a new CalculationUseCase.
func NewCalculationUseCase(
	expenseRepo ExpenseRepository,
	settlementRepo SettlementRepository,
	cache *resultcache.Store,
	logger zerolog.Logger,
) *CalculationUseCase {
	return &CalculationUseCase{
		expenseRepo:    expenseRepo,
		settlementRepo: settlementRepo,
		cache:          cache,
		logger:         logger,
	}
}

// MarkStale notes that the record set changed, superseding any computation
// currently in flight. Called by the invalidation worker before it drops the
// calculation scopes.
func (uc *CalculationUseCase) MarkStale() {
	uc.generation.Add(1)
}

// GroupBalances returns the group's net balances and settlement plan,
// serving from the result cache when possible.
func (uc *CalculationUseCase) GroupBalances(ctx context.Context, groupID string) (*GroupBalancesResult, error) {
	scope := domain.ScopeGroupBalances(groupID)

	if raw, ok := uc.cache.Get(ctx, scope); ok {
		var cached GroupBalancesResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	value, err, _ := uc.flight.Do(string(scope), func() (any, error) {
		return uc.compute(ctx, groupID, scope)
	})
	if err != nil {
		return nil, err
	}
	return value.(*GroupBalancesResult), nil
}

func (uc *CalculationUseCase) compute(ctx context.Context, groupID string, scope domain.Scope) (*GroupBalancesResult, error) {
	start := time.Now()
	gen := uc.generation.Load()

	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := uc.settlementRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, warnings := domain.Aggregate(expenses, settlements)
	uc.logWarnings(groupID, warnings)

	result := &GroupBalancesResult{
		GroupID:    groupID,
		Balances:   balances,
		Transfers:  domain.Minimize(balances),
		ComputedAt: time.Now().UTC(),
	}

	metrics.BalanceComputations.Inc()
	metrics.BalanceComputeDuration.Observe(time.Since(start).Seconds())

	if uc.generation.Load() != gen {
		// a mutation landed while we were computing; serve the result but
		// leave the cache empty so the next reader sees the newer records
		metrics.BalanceComputationsDiscarded.Inc()
		uc.logger.Debug().Str("group_id", groupID).Msg("balance computation superseded, not cached")
		return result, nil
	}

	if raw, err := json.Marshal(result); err == nil {
		uc.cache.Put(ctx, scope, raw)
	}
	return result, nil
}

// CheckConsistency verifies that a group's balances sum to zero. A non-zero
// sum means some stored record is corrupt; it is reported, never fixed
// silently.
func (uc *CalculationUseCase) CheckConsistency(ctx context.Context, groupID string) (bool, domain.Cents, error) {
	expenses, err := uc.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return false, 0, err
	}
	settlements, err := uc.settlementRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return false, 0, err
	}

	balances, warnings := domain.Aggregate(expenses, settlements)
	uc.logWarnings(groupID, warnings)

	sum := balances.Sum()
	return sum.Abs() <= domain.Epsilon, sum, nil
}

func (uc *CalculationUseCase) logWarnings(groupID string, warnings []domain.Warning) {
	for _, w := range warnings {
		switch w.Kind {
		case domain.WarnBalanceIntegrity:
			metrics.IntegrityWarnings.Inc()
			uc.logger.Warn().
				Str("group_id", groupID).
				Str("detail", w.Detail).
				Msg("balances do not sum to zero")
		case domain.WarnUnparsableRecord:
			metrics.RecordsSkipped.Inc()
			uc.logger.Warn().
				Str("group_id", groupID).
				Str("record_id", w.RecordID).
				Str("detail", w.Detail).
				Msg("skipped malformed record")
		}
	}
}
