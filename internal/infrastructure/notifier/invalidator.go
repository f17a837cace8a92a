package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/resultcache"
	"github.com/splitpot/splitpot/internal/usecase"
)

// BalanceRefresher is the slice of the calculation use case the worker
// needs: supersede in-flight computations and, when eager mode is on,
// recompute a group's balances.
type BalanceRefresher interface {
	MarkStale()
	GroupBalances(ctx context.Context, groupID string) (*usecase.GroupBalancesResult, error)
}

// Invalidator consumes change events and drops the affected cache scopes.
// With eager recompute enabled it also repopulates the group's balance scope
// right away instead of waiting for the next read.
type Invalidator struct {
	broker *Broker
	cache  *resultcache.Store
	calc   BalanceRefresher
	eager  bool
	logger *slog.Logger
}

// Config for Invalidator.
type Config struct {
	Broker         *Broker
	Cache          *resultcache.Store
	Calc           BalanceRefresher
	EagerRecompute bool
	Logger         *slog.Logger
}

// NewInvalidator creates a new Invalidator.
func NewInvalidator(cfg Config) *Invalidator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Invalidator{
		broker: cfg.Broker,
		cache:  cfg.Cache,
		calc:   cfg.Calc,
		eager:  cfg.EagerRecompute,
		logger: cfg.Logger,
	}
}

// Run consumes events until the context is cancelled.
func (w *Invalidator) Run(ctx context.Context) error {
	w.logger.Info("cache invalidator started", slog.Bool("eager_recompute", w.eager))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cache invalidator shutting down")
			return ctx.Err()
		case event := <-w.broker.Events():
			w.handle(ctx, event)
		}
	}
}

// handle supersedes in-flight computations before dropping scopes so a
// computation racing this event can never re-cache a stale result.
func (w *Invalidator) handle(ctx context.Context, event domain.ChangeEvent) {
	w.calc.MarkStale()
	w.cache.InvalidateByEvent(ctx, event)

	if !w.eager || !touchesBalances(event) || event.GroupID == "" {
		return
	}
	w.recompute(ctx, event.GroupID)
}

func touchesBalances(event domain.ChangeEvent) bool {
	switch event.Kind {
	case domain.EventExpenseAdded, domain.EventExpenseUpdated, domain.EventExpenseDeleted,
		domain.EventSettlementAdded, domain.EventSettlementUpdated:
		return true
	}
	return false
}

func (w *Invalidator) recompute(ctx context.Context, groupID string) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second

	err := backoff.Retry(func() error {
		_, err := w.calc.GroupBalances(ctx, groupID)
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		w.logger.Error("eager balance recompute failed",
			slog.String("group_id", groupID),
			slog.String("error", err.Error()))
	}
}
