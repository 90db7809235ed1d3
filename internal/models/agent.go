package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAgentNotFound indicates that no agent with the given name is registered.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrAgentExists indicates that an agent with the given name is already registered.
	ErrAgentExists = errors.New("agent already registered")
	// ErrInvalidAmount indicates a zero or negative transaction amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// AgentType classifies how an agent participates in the economy.
type AgentType string

const (
	// AgentTypeEarner marks agents whose balance grows by providing services.
	AgentTypeEarner AgentType = "earner"
	// AgentTypeSpender marks agents that pay others out of a budget.
	AgentTypeSpender AgentType = "spender"
)

// AgentStatus tracks whether an agent is taking work.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
)

// Agent is a registered participant in the agent economy.
// Monetary fields are integer minor currency units (cents).
type Agent struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	DisplayName        string           `json:"display_name"`
	Type               AgentType        `json:"type"`
	Balance            int64            `json:"balance"`
	Hold               int64            `json:"hold"`
	TotalEarned        int64            `json:"total_earned"`
	TotalSpent         int64            `json:"total_spent"`
	TransactionCount   int64            `json:"transaction_count"`
	AvgTransactionSize int64            `json:"avg_transaction_size"`
	Status             AgentStatus      `json:"status"`
	Rating             float64          `json:"rating"`
	CompletionRate     float64          `json:"completion_rate"`
	ApprovalRate       float64          `json:"approval_rate"`
	Categories         []string         `json:"categories"`
	HourlyRate         *decimal.Decimal `json:"hourly_rate,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// StatsDelta describes the additive stat changes one completed
// transaction applies to a single agent row. Derived fields (balance,
// transaction count, average size) are recomputed by the store when the
// delta is applied, so the whole adjustment lands atomically with the
// transaction insert.
type StatsDelta struct {
	AgentID     string
	EarnedCents int64
	SpentCents  int64
}

// Apply folds the delta into the agent and recomputes the derived fields.
func (d StatsDelta) Apply(a *Agent, now time.Time) {
	a.TotalEarned += d.EarnedCents
	a.TotalSpent += d.SpentCents
	a.Balance += d.EarnedCents - d.SpentCents
	a.TransactionCount++
	if a.TransactionCount > 0 {
		a.AvgTransactionSize = (a.TotalEarned + a.TotalSpent) / a.TransactionCount
	}
	a.UpdatedAt = now
}
