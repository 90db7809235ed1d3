package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/agentpay/flux-ledger/internal/ledger"
	"github.com/agentpay/flux-ledger/internal/models"
	"github.com/agentpay/flux-ledger/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *ledger.Ledger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	ledgerService := ledger.New(store, nil, logger)
	handlers := NewHandlers(logger, ledgerService)
	return NewRouter(logger, handlers, store, nil), ledgerService
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegisterAgentEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body := map[string]any{
		"name":         "data-analyst-001",
		"display_name": "Data Analyst AI",
		"type":         "earner",
		"categories":   []string{"Data Analysis"},
		"hourly_rate":  25.0,
	}

	rec := doJSON(t, router, http.MethodPost, "/api/agents", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first registration, got %d: %s", rec.Code, rec.Body.String())
	}

	var agent models.Agent
	if err := json.Unmarshal(rec.Body.Bytes(), &agent); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if agent.ID == "" || agent.Name != "data-analyst-001" {
		t.Errorf("unexpected agent in response: %+v", agent)
	}

	// Re-registering the same name is idempotent.
	rec = doJSON(t, router, http.MethodPost, "/api/agents", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on re-registration, got %d", rec.Code)
	}
}

func TestRegisterAgentRequiresName(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/agents", map[string]any{"display_name": "No Name"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRecordEarningEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/agents", map[string]any{"name": "data-analyst-001"})

	rec := doJSON(t, router, http.MethodPost, "/api/earnings", map[string]any{
		"agent_name":  "data-analyst-001",
		"client_name": "acme-corp",
		"amount":      2500,
		"purpose":     "Q4 sales analysis",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.TransactionID == "" {
		t.Error("expected a transaction_id")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/agents/data-analyst-001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var agent models.Agent
	if err := json.Unmarshal(rec.Body.Bytes(), &agent); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if agent.TotalEarned != 2500 || agent.TransactionCount != 1 {
		t.Errorf("stats not updated: earned=%d count=%d", agent.TotalEarned, agent.TransactionCount)
	}
}

func TestRecordEarningUnknownAgentReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/earnings", map[string]any{
		"agent_name":  "ghost-001",
		"client_name": "acme-corp",
		"amount":      100,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAgentStatsUnknownReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/agents/nobody", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransferEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/agents", map[string]any{
		"name": "orchestrator-001", "type": "spender", "initial_balance": 100000,
	})
	doJSON(t, router, http.MethodPost, "/api/agents", map[string]any{"name": "researcher-001"})

	rec := doJSON(t, router, http.MethodPost, "/api/transfers", map[string]any{
		"from_agent": "orchestrator-001",
		"to_agent":   "researcher-001",
		"amount":     3500,
		"purpose":    "Research task",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/agents/orchestrator-001/balance", nil)
	var summary ledger.BalanceSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if summary.CurrentBalance != 96_500 || summary.TotalSpent != 3500 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestEarningsHistoryEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/agents", map[string]any{"name": "researcher-001"})
	for i := 0; i < 3; i++ {
		doJSON(t, router, http.MethodPost, "/api/earnings", map[string]any{
			"agent_name": "researcher-001", "client_name": "acme-corp", "amount": 1000,
		})
	}

	rec := doJSON(t, router, http.MethodGet, "/api/agents/researcher-001/earnings?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var history ledger.EarningsHistory
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if history.TransactionCount != 3 {
		t.Errorf("transaction count = %d, want 3", history.TransactionCount)
	}
	if len(history.Transactions) != 2 {
		t.Errorf("expected 2 transactions with limit=2, got %d", len(history.Transactions))
	}
}

func TestQuoteEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/quotes?service_type=data_analysis&complexity=complex&urgency=urgent", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var quote struct {
		FinalPrice int64 `json:"final_price"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if quote.FinalPrice != 4875 {
		t.Errorf("final price = %d, want 4875", quote.FinalPrice)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/quotes", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without service_type, got %d", rec.Code)
	}
}
