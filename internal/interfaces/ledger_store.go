package interfaces

import (
	"context"

	"github.com/agentpay/flux-ledger/internal/models"
)

// LedgerStore persists agents and transactions. Implementations must
// apply a transaction insert and its stat deltas atomically.
type LedgerStore interface {
	CreateAgent(ctx context.Context, agent models.Agent) error
	GetAgentByName(ctx context.Context, name string) (*models.Agent, error)
	ListAgents(ctx context.Context) ([]models.Agent, error)

	// ApplyTransaction records the transaction and applies every delta,
	// or none of them.
	ApplyTransaction(ctx context.Context, tx models.Transaction, deltas []models.StatsDelta) error

	ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	// ListTransactionsTo returns transactions received by the named
	// agent, newest first.
	ListTransactionsTo(ctx context.Context, agentName string, limit int) ([]models.Transaction, error)

	Ping(ctx context.Context) error
	Close() error
}
