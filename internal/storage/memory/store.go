package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentpay/flux-ledger/internal/interfaces"
	"github.com/agentpay/flux-ledger/internal/models"
)

// Store is an in-memory implementation of interfaces.LedgerStore.
// It backs the tests and the demo command; it is safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	agentsByID   map[string]*models.Agent
	agentsByName map[string]*models.Agent
	transactions []models.Transaction
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		agentsByID:   make(map[string]*models.Agent),
		agentsByName: make(map[string]*models.Agent),
	}
}

func (s *Store) CreateAgent(_ context.Context, agent models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agentsByName[agent.Name]; exists {
		return fmt.Errorf("create agent %q: %w", agent.Name, models.ErrAgentExists)
	}
	clone := cloneAgent(&agent)
	s.agentsByID[agent.ID] = clone
	s.agentsByName[agent.Name] = clone
	return nil
}

func (s *Store) GetAgentByName(_ context.Context, name string) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.agentsByName[name]
	if !ok {
		return nil, models.ErrAgentNotFound
	}
	return cloneAgent(agent), nil
}

func (s *Store) ListAgents(_ context.Context) ([]models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents := make([]models.Agent, 0, len(s.agentsByName))
	for _, agent := range s.agentsByName {
		agents = append(agents, *cloneAgent(agent))
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents, nil
}

// ApplyTransaction appends the transaction and applies every stat delta
// under a single lock, so readers never observe a half-applied payment.
func (s *Store) ApplyTransaction(_ context.Context, tx models.Transaction, deltas []models.StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate all targets before mutating anything.
	for _, delta := range deltas {
		if _, ok := s.agentsByID[delta.AgentID]; !ok {
			return fmt.Errorf("apply transaction %s: agent %s: %w", tx.ID, delta.AgentID, models.ErrAgentNotFound)
		}
	}

	now := time.Now().UTC()
	for _, delta := range deltas {
		delta.Apply(s.agentsByID[delta.AgentID], now)
	}
	s.transactions = append(s.transactions, cloneTransaction(tx))
	return nil
}

func (s *Store) ListTransactions(_ context.Context, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(limit, func(models.Transaction) bool { return true }), nil
}

func (s *Store) ListTransactionsTo(_ context.Context, agentName string, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(limit, func(tx models.Transaction) bool { return tx.ToAgentName == agentName }), nil
}

// collect returns matching transactions newest first. Callers must hold s.mu.
func (s *Store) collect(limit int, match func(models.Transaction) bool) []models.Transaction {
	result := make([]models.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		if match(s.transactions[i]) {
			result = append(result, cloneTransaction(s.transactions[i]))
		}
	}
	return result
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func cloneAgent(agent *models.Agent) *models.Agent {
	clone := *agent
	if agent.Categories != nil {
		clone.Categories = append([]string(nil), agent.Categories...)
	}
	if agent.HourlyRate != nil {
		rate := *agent.HourlyRate
		clone.HourlyRate = &rate
	}
	return &clone
}

func cloneTransaction(tx models.Transaction) models.Transaction {
	clone := tx
	if tx.Memo != nil {
		clone.Memo = make(map[string]any, len(tx.Memo))
		for k, v := range tx.Memo {
			clone.Memo[k] = v
		}
	}
	return clone
}

// Compile-time check: Store implements the LedgerStore interface.
var _ interfaces.LedgerStore = (*Store)(nil)
