// Package roster holds the built-in agent definitions: the five
// specialist earners and the orchestrator that hires them.
package roster

import (
	"github.com/shopspring/decimal"

	"github.com/agentpay/flux-ledger/internal/ledger"
	"github.com/agentpay/flux-ledger/internal/models"
)

// OrchestratorName is the well-known name of the coordinating agent.
const OrchestratorName = "orchestrator-001"

// DefaultOrchestratorBudgetCents is the orchestrator's starting budget
// when it is registered for the first time ($1000).
const DefaultOrchestratorBudgetCents int64 = 100_000

// Specialists returns the registration parameters for the five
// specialist agents. The content writer has no hourly rate; it prices
// per word.
func Specialists() []ledger.RegisterParams {
	return []ledger.RegisterParams{
		{
			Name:        "data-analyst-001",
			DisplayName: "Data Analyst AI",
			Type:        models.AgentTypeEarner,
			Categories:  []string{"Data Analysis", "Statistics", "Visualization"},
			HourlyRate:  rate(25),
		},
		{
			Name:        "content-writer-001",
			DisplayName: "Content Writer AI",
			Type:        models.AgentTypeEarner,
			Categories:  []string{"Content Writing", "Copywriting", "Blogging"},
		},
		{
			Name:        "researcher-001",
			DisplayName: "Research Specialist AI",
			Type:        models.AgentTypeEarner,
			Categories:  []string{"Research", "Fact-Checking", "Analysis"},
			HourlyRate:  rate(35),
		},
		{
			Name:        "coding-specialist-001",
			DisplayName: "Coding Specialist AI",
			Type:        models.AgentTypeEarner,
			Categories:  []string{"Code Review", "Debugging", "Optimization"},
			HourlyRate:  rate(50),
		},
		{
			Name:        "marketing-specialist-001",
			DisplayName: "Marketing Specialist AI",
			Type:        models.AgentTypeEarner,
			Categories:  []string{"Marketing Strategy", "Campaigns", "Analytics"},
			HourlyRate:  rate(40),
		},
	}
}

// Orchestrator returns the registration parameters for the coordinating
// spender agent, seeded with the given budget.
func Orchestrator(budgetCents int64) ledger.RegisterParams {
	return ledger.RegisterParams{
		Name:           OrchestratorName,
		DisplayName:    "AI Orchestrator (Generalized Agent)",
		Type:           models.AgentTypeSpender,
		Categories:     []string{"Orchestration", "Coordination", "Management"},
		InitialBalance: budgetCents,
	}
}

func rate(dollarsPerHour int64) *decimal.Decimal {
	d := decimal.NewFromInt(dollarsPerHour)
	return &d
}
