package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentpay/flux-ledger/internal/models"
)

func testAgent(id, name string) models.Agent {
	now := time.Now().UTC()
	return models.Agent{
		ID:          id,
		Name:        name,
		DisplayName: name,
		Type:        models.AgentTypeEarner,
		Status:      models.AgentStatusActive,
		Categories:  []string{"Testing"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateAgentRejectsDuplicateName(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAgent(ctx, testAgent("id-1", "data-analyst-001")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := store.CreateAgent(ctx, testAgent("id-2", "data-analyst-001"))
	if !errors.Is(err, models.ErrAgentExists) {
		t.Fatalf("expected ErrAgentExists, got %v", err)
	}
}

func TestGetAgentByNameReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAgent(ctx, testAgent("id-1", "researcher-001")); err != nil {
		t.Fatal(err)
	}

	first, err := store.GetAgentByName(ctx, "researcher-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Balance = 99999
	first.Categories[0] = "mutated"

	second, _ := store.GetAgentByName(ctx, "researcher-001")
	if second.Balance != 0 {
		t.Error("mutating a returned agent must not affect the store")
	}
	if second.Categories[0] != "Testing" {
		t.Error("mutating a returned slice must not affect the store")
	}
}

func TestApplyTransactionIsAllOrNothing(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAgent(ctx, testAgent("id-1", "orchestrator-001")); err != nil {
		t.Fatal(err)
	}

	tx := models.Transaction{
		ID:            "tx-1",
		Type:          models.TransactionTypePayment,
		FromAgentName: "orchestrator-001",
		ToAgentName:   "ghost-001",
		Amount:        500,
		Status:        models.TransactionStatusCompleted,
		Timestamp:     time.Now().UTC(),
	}
	deltas := []models.StatsDelta{
		{AgentID: "id-1", SpentCents: 500},
		{AgentID: "missing", EarnedCents: 500},
	}

	err := store.ApplyTransaction(ctx, tx, deltas)
	if !errors.Is(err, models.ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}

	agent, _ := store.GetAgentByName(ctx, "orchestrator-001")
	if agent.TotalSpent != 0 || agent.TransactionCount != 0 {
		t.Errorf("no delta may be applied when one target is missing: %+v", agent)
	}
	txs, _ := store.ListTransactions(ctx, 10)
	if len(txs) != 0 {
		t.Errorf("transaction must not be recorded on failure, got %d", len(txs))
	}
}

func TestListTransactionsToFiltersAndLimits(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.CreateAgent(ctx, testAgent("id-1", "researcher-001")); err != nil {
		t.Fatal(err)
	}

	for i, to := range []string{"researcher-001", "someone-else", "researcher-001", "researcher-001"} {
		tx := models.Transaction{
			ID:            "tx-" + string(rune('a'+i)),
			Type:          models.TransactionTypePayment,
			FromAgentName: "client",
			ToAgentName:   to,
			Amount:        int64(100 * (i + 1)),
			Status:        models.TransactionStatusCompleted,
			Timestamp:     time.Now().UTC(),
		}
		if err := store.ApplyTransaction(ctx, tx, nil); err != nil {
			t.Fatal(err)
		}
	}

	txs, err := store.ListTransactionsTo(ctx, "researcher-001", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	// Newest first: the last applied transaction comes back first.
	if txs[0].Amount != 400 || txs[1].Amount != 300 {
		t.Errorf("expected amounts (400, 300), got (%d, %d)", txs[0].Amount, txs[1].Amount)
	}
}

func TestListAgentsSortedByName(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, name := range []string{"researcher-001", "coding-specialist-001", "data-analyst-001"} {
		if err := store.CreateAgent(ctx, testAgent("id-"+name, name)); err != nil {
			t.Fatal(err)
		}
	}

	agents, err := store.ListAgents(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"coding-specialist-001", "data-analyst-001", "researcher-001"}
	for i, name := range want {
		if agents[i].Name != name {
			t.Errorf("agents[%d] = %s, want %s", i, agents[i].Name, name)
		}
	}
}
