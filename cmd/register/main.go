// Command register is the one-shot setup tool: it registers the
// built-in roster (five specialists plus the orchestrator) against the
// configured store and prints each agent's current stats.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agentpay/flux-ledger/internal/config"
	"github.com/agentpay/flux-ledger/internal/interfaces"
	"github.com/agentpay/flux-ledger/internal/ledger"
	"github.com/agentpay/flux-ledger/internal/logging"
	"github.com/agentpay/flux-ledger/internal/pricing"
	"github.com/agentpay/flux-ledger/internal/roster"
	"github.com/agentpay/flux-ledger/internal/storage/memory"
	"github.com/agentpay/flux-ledger/internal/storage/postgres"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	store, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ledgerService := ledger.New(store, nil, logger)

	fmt.Println("Registering agent roster")
	fmt.Println("========================")

	definitions := append(roster.Specialists(), roster.Orchestrator(roster.DefaultOrchestratorBudgetCents))
	for _, params := range definitions {
		agent, created, err := ledgerService.RegisterAgent(ctx, params)
		if err != nil {
			logger.Error("registration failed", "agent", params.Name, "error", err)
			os.Exit(1)
		}
		if created {
			fmt.Printf("registered %s (%s) [%s]\n", agent.Name, agent.DisplayName, agent.ID)
		} else {
			fmt.Printf("%s already registered\n", agent.Name)
		}
	}

	fmt.Println()
	fmt.Println("Current agent status")
	fmt.Println("====================")
	for _, params := range definitions {
		stats, err := ledgerService.AgentStats(ctx, params.Name)
		if err != nil {
			logger.Error("failed to fetch stats", "agent", params.Name, "error", err)
			continue
		}
		fmt.Printf("\n%s (%s)\n", stats.DisplayName, stats.Name)
		fmt.Printf("  Type:         %s\n", stats.Type)
		fmt.Printf("  Status:       %s\n", stats.Status)
		fmt.Printf("  Balance:      %s\n", pricing.FormatCents(stats.Balance))
		fmt.Printf("  Total Earned: %s\n", pricing.FormatCents(stats.TotalEarned))
		fmt.Printf("  Transactions: %d\n", stats.TransactionCount)
		fmt.Printf("  Rating:       %.1f/5.0\n", stats.Rating)
	}
}

func buildStore(ctx context.Context, cfg config.Config) (interfaces.LedgerStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		store, err := postgres.Open(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return memory.New(), nil
	}
}
