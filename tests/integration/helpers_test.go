package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	adaptershttp "github.com/splitpot/splitpot/internal/adapter/http"
	"github.com/splitpot/splitpot/internal/adapter/http/handler"
	"github.com/splitpot/splitpot/internal/adapter/repository/memory"
	"github.com/splitpot/splitpot/internal/adapter/repository/postgres"
	"github.com/splitpot/splitpot/internal/infrastructure/notifier"
	"github.com/splitpot/splitpot/internal/resultcache"
	"github.com/splitpot/splitpot/internal/usecase"
)

// newTestRouter wires the full stack against the test database: memory
// cache backend, change broker and invalidation worker included.
func newTestRouter(t *testing.T, pool *pgxpool.Pool) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	memCache := memory.NewCache(0)
	t.Cleanup(memCache.Close)
	cache := resultcache.New(memCache, logger)

	txManager := postgres.NewTxManager(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	settlementRepo := postgres.NewSettlementRepository(pool)
	idGen := postgres.NewULIDGenerator()

	broker := notifier.NewBroker(64, slogger)

	groupUC := usecase.NewGroupUseCase(groupRepo, cache, broker, idGen, logger)
	expenseUC := usecase.NewExpenseUseCase(expenseRepo, settlementRepo, groupRepo, txManager, cache, broker, idGen, logger)
	settlementUC := usecase.NewSettlementUseCase(settlementRepo, groupRepo, cache, broker, idGen, logger)
	calcUC := usecase.NewCalculationUseCase(expenseRepo, settlementRepo, cache, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	t.Cleanup(stopWorker)
	invalidator := notifier.NewInvalidator(notifier.Config{
		Broker: broker,
		Cache:  cache,
		Calc:   calcUC,
		Logger: slogger,
	})
	go func() { _ = invalidator.Run(workerCtx) }()

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		GroupHandler:      handler.NewGroupHandler(groupUC),
		ExpenseHandler:    handler.NewExpenseHandler(expenseUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC),
		BalanceHandler:    handler.NewBalanceHandler(calcUC),
		HealthHandler:     handler.NewHealthHandler(pool, nil),
		Logger:            logger,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, body)
	if payload != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// waitFor polls until the condition holds, for changes that travel through
// the async invalidation worker.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
