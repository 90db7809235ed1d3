// Command demo runs one scripted round of the agent economy against the
// in-memory store: the orchestrator is seeded with a budget, obtains
// quotes, hires specialists within that budget, a specialist books an
// earning from an outside client, and the final stats are printed.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/agentpay/flux-ledger/internal/ledger"
	"github.com/agentpay/flux-ledger/internal/pricing"
	"github.com/agentpay/flux-ledger/internal/roster"
	"github.com/agentpay/flux-ledger/internal/storage/memory"
)

type scriptedTask struct {
	specialist  string
	serviceType string
	complexity  string
	urgency     string
	description string
}

var tasks = []scriptedTask{
	{
		specialist:  "data-analyst-001",
		serviceType: "data_analysis",
		complexity:  pricing.ComplexityComplex,
		urgency:     pricing.UrgencyNormal,
		description: "Analyze Q4 sales data and generate insights report",
	},
	{
		specialist:  "content-writer-001",
		serviceType: "content_writing",
		complexity:  pricing.ComplexityMedium,
		urgency:     pricing.UrgencyUrgent,
		description: "Write launch announcement blog post",
	},
	{
		specialist:  "coding-specialist-001",
		serviceType: "code_review",
		complexity:  pricing.ComplexitySimple,
		urgency:     pricing.UrgencyNormal,
		description: "Review payment module pull request",
	},
}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ledgerService := ledger.New(memory.New(), nil, logger)

	fmt.Println("Agent economy demo")
	fmt.Println("==================")

	definitions := append(roster.Specialists(), roster.Orchestrator(roster.DefaultOrchestratorBudgetCents))
	for _, params := range definitions {
		if _, _, err := ledgerService.RegisterAgent(ctx, params); err != nil {
			fmt.Fprintf(os.Stderr, "register %s: %v\n", params.Name, err)
			os.Exit(1)
		}
	}
	fmt.Printf("registered %d agents, orchestrator budget %s\n\n",
		len(definitions), pricing.FormatCents(roster.DefaultOrchestratorBudgetCents))

	for _, task := range tasks {
		quote := pricing.Estimate(task.serviceType, task.complexity, task.urgency)
		fmt.Printf("task: %s\n", task.description)
		fmt.Printf("  quote for %s (%s/%s): %s\n", quote.ServiceType, quote.Complexity, quote.Urgency, quote.PriceFormatted)

		summary, err := ledgerService.BalanceSummary(ctx, roster.OrchestratorName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "budget check: %v\n", err)
			os.Exit(1)
		}
		if summary.CurrentBalance < quote.FinalPriceCents {
			fmt.Printf("  skipped: budget %s is below quote\n\n", pricing.FormatCents(summary.CurrentBalance))
			continue
		}

		txID, err := ledgerService.Transfer(ctx, roster.OrchestratorName, task.specialist,
			quote.FinalPriceCents, task.description, map[string]any{
				"service_type": task.serviceType,
				"complexity":   task.complexity,
				"urgency":      task.urgency,
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "payment failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  paid %s to %s (tx %s)\n\n", quote.PriceFormatted, task.specialist, txID)
	}

	// An outside client pays a specialist directly.
	txID, err := ledgerService.RecordEarning(ctx, "researcher-001", "acme-corp", 3500,
		"Fact-check whitepaper claims", map[string]any{"pages": 12})
	if err != nil {
		fmt.Fprintf(os.Stderr, "record earning: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("researcher-001 earned %s from acme-corp (tx %s)\n\n", pricing.FormatCents(3500), txID)

	fmt.Println("Final economy summary")
	fmt.Println("=====================")
	agents, err := ledgerService.ListAgents(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list agents: %v\n", err)
		os.Exit(1)
	}
	for _, agent := range agents {
		fmt.Printf("%-26s balance %10s  earned %10s  spent %10s  txs %d\n",
			agent.Name,
			pricing.FormatCents(agent.Balance),
			pricing.FormatCents(agent.TotalEarned),
			pricing.FormatCents(agent.TotalSpent),
			agent.TransactionCount,
		)
	}
}
