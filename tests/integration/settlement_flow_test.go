package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitpot/splitpot/internal/adapter/http/dto"
	"github.com/splitpot/splitpot/tests/testutil"
)

func TestSettlementFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	router := newTestRouter(t, testDB.Pool)

	t.Run("completed settlement clears debt", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		group := testDB.CreateTestGroup(ctx, "flat", "alice", "bob")

		w := doJSON(t, router, http.MethodPost, "/api/v1/expenses", dto.CreateExpenseRequest{
			GroupID:     group.ID,
			PayerID:     "alice",
			Description: "groceries",
			Amount:      decimal.RequireFromString("50.00"),
			Policy:      "equal",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		w = doJSON(t, router, http.MethodPost, "/api/v1/settlements", dto.CreateSettlementRequest{
			GroupID:    group.ID,
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     decimal.RequireFromString("25.00"),
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var settlement dto.SettlementResponse
		decodeJSON(t, w, &settlement)
		if settlement.Status != "pending" {
			t.Fatalf("expected pending settlement, got %s", settlement.Status)
		}

		// Pending settlements do not move balances.
		w = doJSON(t, router, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var balances dto.GroupBalancesResponse
		decodeJSON(t, w, &balances)
		if !balances.Balances["bob"].Equal(decimal.RequireFromString("-25.00")) {
			t.Fatalf("expected bob balance -25.00, got %s", balances.Balances["bob"])
		}

		w = doJSON(t, router, http.MethodPost, "/api/v1/settlements/"+settlement.ID+"/complete", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		waitFor(t, 2*time.Second, func() bool {
			w := doJSON(t, router, http.MethodGet, "/api/v1/groups/"+group.ID+"/balances", nil)
			if w.Code != http.StatusOK {
				return false
			}
			var balances dto.GroupBalancesResponse
			decodeJSON(t, w, &balances)
			return balances.Balances["bob"].IsZero() && len(balances.Transfers) == 0
		})

		// A completed settlement cannot transition again.
		w = doJSON(t, router, http.MethodPost, "/api/v1/settlements/"+settlement.ID+"/cancel", nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("consistency check passes for settled group", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		group := testDB.CreateTestGroup(ctx, "ski", "alice", "bob", "carol")

		w := doJSON(t, router, http.MethodPost, "/api/v1/expenses", dto.CreateExpenseRequest{
			GroupID:     group.ID,
			PayerID:     "carol",
			Description: "lift passes",
			Amount:      decimal.RequireFromString("90.00"),
			Policy:      "shares",
			Members: []dto.SplitMemberItem{
				{MemberID: "alice", Weight: 1},
				{MemberID: "bob", Weight: 1},
				{MemberID: "carol", Weight: 1},
			},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		w = doJSON(t, router, http.MethodGet, "/api/v1/groups/"+group.ID+"/consistency", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var report dto.ConsistencyResponse
		decodeJSON(t, w, &report)
		if !report.Consistent {
			t.Fatalf("expected consistent group, got drift %s", report.Drift)
		}
	})
}
