package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agentpay/flux-ledger/internal/interfaces"
	"github.com/agentpay/flux-ledger/internal/models"
	"github.com/agentpay/flux-ledger/internal/models/events"
)

// Ledger is the core of the agent economy: it registers agents and
// records payments, keeping each agent's aggregate stats consistent
// with the transactions that touch it.
//
// Serialization is per agent: a named mutex guards each agent's stats,
// and operations touching two agents take both locks in name order to
// avoid deadlocks. The store applies the transaction insert and the
// stat updates atomically, so a crash between steps cannot leave a
// transaction without its stat adjustment.
type Ledger struct {
	store     interfaces.LedgerStore
	publisher interfaces.EventPublisher
	logger    *slog.Logger

	muMap map[string]*sync.Mutex // per-agent-name locks
	mapMu sync.Mutex             // protects muMap itself
}

// New creates a Ledger. publisher may be nil when no event feed is wired.
func New(store interfaces.LedgerStore, publisher interfaces.EventPublisher, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		store:     store,
		publisher: publisher,
		logger:    logger,
		muMap:     make(map[string]*sync.Mutex),
	}
}

// RegisterParams carries the descriptive fields for a new agent.
type RegisterParams struct {
	Name           string
	DisplayName    string
	Type           models.AgentType
	Categories     []string
	HourlyRate     *decimal.Decimal
	InitialBalance int64
}

// BalanceSummary is the financial snapshot agents query after tasks.
type BalanceSummary struct {
	AgentName      string `json:"agent_name"`
	CurrentBalance int64  `json:"current_balance"`
	TotalEarned    int64  `json:"total_earned"`
	TotalSpent     int64  `json:"total_spent"`
	NetProfit      int64  `json:"net_profit"`
}

// EarningsHistory lists an agent's recent incoming payments.
type EarningsHistory struct {
	AgentName        string               `json:"agent_name"`
	TotalEarned      int64                `json:"total_earned"`
	TransactionCount int64                `json:"transaction_count"`
	Transactions     []models.Transaction `json:"transactions"`
}

func (l *Ledger) getAgentLock(name string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[name]; !exists {
		l.muMap[name] = &sync.Mutex{}
	}
	return l.muMap[name]
}

// RegisterAgent creates the agent row if absent. Re-registering an
// existing name is not an error: the existing row is returned unchanged
// and the second result is false.
func (l *Ledger) RegisterAgent(ctx context.Context, params RegisterParams) (*models.Agent, bool, error) {
	if params.Name == "" {
		return nil, false, errors.New("agent name is required")
	}

	mu := l.getAgentLock(params.Name)
	mu.Lock()
	defer mu.Unlock()

	existing, err := l.store.GetAgentByName(ctx, params.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrAgentNotFound) {
		return nil, false, fmt.Errorf("register agent %q: %w", params.Name, err)
	}

	agentType := params.Type
	if agentType == "" {
		agentType = models.AgentTypeEarner
	}
	displayName := params.DisplayName
	if displayName == "" {
		displayName = params.Name
	}

	now := time.Now().UTC()
	agent := models.Agent{
		ID:             uuid.New().String(),
		Name:           params.Name,
		DisplayName:    displayName,
		Type:           agentType,
		Balance:        params.InitialBalance,
		Status:         models.AgentStatusActive,
		Rating:         5.0,
		CompletionRate: 100.0,
		ApprovalRate:   100.0,
		Categories:     params.Categories,
		HourlyRate:     params.HourlyRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := l.store.CreateAgent(ctx, agent); err != nil {
		return nil, false, fmt.Errorf("register agent %q: %w", params.Name, err)
	}

	l.publish(events.TopicAgentRegistered, events.AgentRegistered{
		AgentID:      agent.ID,
		Name:         agent.Name,
		DisplayName:  agent.DisplayName,
		Type:         string(agent.Type),
		RegisteredAt: agent.CreatedAt,
	})
	return &agent, true, nil
}

// RecordEarning records a payment received by agentName from a client.
// The client does not have to be registered; if it is, its ID is linked
// on the transaction but its stats are untouched (the client side books
// its own spending separately).
func (l *Ledger) RecordEarning(ctx context.Context, agentName, clientName string, amountCents int64, purpose string, details map[string]any) (string, error) {
	if amountCents <= 0 {
		return "", models.ErrInvalidAmount
	}

	mu := l.getAgentLock(agentName)
	mu.Lock()
	defer mu.Unlock()

	agent, err := l.store.GetAgentByName(ctx, agentName)
	if err != nil {
		return "", fmt.Errorf("record earning for %q: %w", agentName, err)
	}

	tx := models.Transaction{
		ID:            uuid.New().String(),
		Type:          models.TransactionTypePayment,
		FromAgentName: clientName,
		ToAgentID:     agent.ID,
		ToAgentName:   agent.Name,
		Amount:        amountCents,
		Purpose:       purpose,
		Memo:          details,
		Status:        models.TransactionStatusCompleted,
		Timestamp:     time.Now().UTC(),
	}
	if client, err := l.store.GetAgentByName(ctx, clientName); err == nil {
		tx.FromAgentID = client.ID
	}

	deltas := []models.StatsDelta{{AgentID: agent.ID, EarnedCents: amountCents}}
	if err := l.store.ApplyTransaction(ctx, tx, deltas); err != nil {
		return "", fmt.Errorf("record earning for %q: %w", agentName, err)
	}

	l.publishCompleted(tx)
	return tx.ID, nil
}

// RecordSpending records a payment made by agentName to a recipient.
// Only the spender's stats are adjusted; a registered recipient is
// linked on the transaction by ID.
func (l *Ledger) RecordSpending(ctx context.Context, agentName, recipientName string, amountCents int64, purpose string, details map[string]any) (string, error) {
	if amountCents <= 0 {
		return "", models.ErrInvalidAmount
	}

	mu := l.getAgentLock(agentName)
	mu.Lock()
	defer mu.Unlock()

	agent, err := l.store.GetAgentByName(ctx, agentName)
	if err != nil {
		return "", fmt.Errorf("record spending for %q: %w", agentName, err)
	}

	tx := models.Transaction{
		ID:            uuid.New().String(),
		Type:          models.TransactionTypePayment,
		FromAgentID:   agent.ID,
		FromAgentName: agent.Name,
		ToAgentName:   recipientName,
		Amount:        amountCents,
		Purpose:       purpose,
		Memo:          details,
		Status:        models.TransactionStatusCompleted,
		Timestamp:     time.Now().UTC(),
	}
	if recipient, err := l.store.GetAgentByName(ctx, recipientName); err == nil {
		tx.ToAgentID = recipient.ID
	}

	deltas := []models.StatsDelta{{AgentID: agent.ID, SpentCents: amountCents}}
	if err := l.store.ApplyTransaction(ctx, tx, deltas); err != nil {
		return "", fmt.Errorf("record spending for %q: %w", agentName, err)
	}

	l.publishCompleted(tx)
	return tx.ID, nil
}

// Transfer moves money between two registered agents, booking the spend
// and the earning in one transaction.
func (l *Ledger) Transfer(ctx context.Context, fromName, toName string, amountCents int64, purpose string, details map[string]any) (string, error) {
	if amountCents <= 0 {
		return "", models.ErrInvalidAmount
	}
	if fromName == toName {
		return "", fmt.Errorf("transfer from %q to itself: %w", fromName, models.ErrInvalidAmount)
	}

	fromMu := l.getAgentLock(fromName)
	toMu := l.getAgentLock(toName)

	// Lock in name order to avoid deadlocks.
	if fromName < toName {
		fromMu.Lock()
		toMu.Lock()
	} else {
		toMu.Lock()
		fromMu.Lock()
	}
	defer fromMu.Unlock()
	defer toMu.Unlock()

	from, err := l.store.GetAgentByName(ctx, fromName)
	if err != nil {
		return "", fmt.Errorf("transfer from %q: %w", fromName, err)
	}
	to, err := l.store.GetAgentByName(ctx, toName)
	if err != nil {
		return "", fmt.Errorf("transfer to %q: %w", toName, err)
	}

	tx := models.Transaction{
		ID:            uuid.New().String(),
		Type:          models.TransactionTypePayment,
		FromAgentID:   from.ID,
		FromAgentName: from.Name,
		ToAgentID:     to.ID,
		ToAgentName:   to.Name,
		Amount:        amountCents,
		Purpose:       purpose,
		Memo:          details,
		Status:        models.TransactionStatusCompleted,
		Timestamp:     time.Now().UTC(),
	}
	deltas := []models.StatsDelta{
		{AgentID: from.ID, SpentCents: amountCents},
		{AgentID: to.ID, EarnedCents: amountCents},
	}
	if err := l.store.ApplyTransaction(ctx, tx, deltas); err != nil {
		return "", fmt.Errorf("transfer %q -> %q: %w", fromName, toName, err)
	}

	l.publishCompleted(tx)
	return tx.ID, nil
}

// AgentStats returns the agent's current row.
func (l *Ledger) AgentStats(ctx context.Context, name string) (*models.Agent, error) {
	return l.store.GetAgentByName(ctx, name)
}

// BalanceSummary returns the compact financial snapshot for an agent.
func (l *Ledger) BalanceSummary(ctx context.Context, name string) (BalanceSummary, error) {
	agent, err := l.store.GetAgentByName(ctx, name)
	if err != nil {
		return BalanceSummary{}, err
	}
	return BalanceSummary{
		AgentName:      agent.Name,
		CurrentBalance: agent.Balance,
		TotalEarned:    agent.TotalEarned,
		TotalSpent:     agent.TotalSpent,
		NetProfit:      agent.TotalEarned - agent.TotalSpent,
	}, nil
}

// EarningsHistory returns the agent's recent incoming payments, newest first.
func (l *Ledger) EarningsHistory(ctx context.Context, name string, limit int) (EarningsHistory, error) {
	agent, err := l.store.GetAgentByName(ctx, name)
	if err != nil {
		return EarningsHistory{}, err
	}
	txs, err := l.store.ListTransactionsTo(ctx, name, limit)
	if err != nil {
		return EarningsHistory{}, fmt.Errorf("earnings history for %q: %w", name, err)
	}
	return EarningsHistory{
		AgentName:        agent.Name,
		TotalEarned:      agent.TotalEarned,
		TransactionCount: agent.TransactionCount,
		Transactions:     txs,
	}, nil
}

// ListAgents returns every registered agent.
func (l *Ledger) ListAgents(ctx context.Context) ([]models.Agent, error) {
	return l.store.ListAgents(ctx)
}

// ListTransactions returns recent transactions, newest first.
func (l *Ledger) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return l.store.ListTransactions(ctx, limit)
}

func (l *Ledger) publishCompleted(tx models.Transaction) {
	l.publish(events.TopicTransactionCompleted, events.TransactionCompleted{
		TransactionID: tx.ID,
		Type:          string(tx.Type),
		FromAgent:     tx.FromAgentName,
		ToAgent:       tx.ToAgentName,
		Amount:        tx.Amount,
		Purpose:       tx.Purpose,
		OccurredAt:    tx.Timestamp,
	})
}

// publish is best-effort: the ledger write is already durable, so feed
// failures are logged and swallowed.
func (l *Ledger) publish(topic string, event any) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(topic, event); err != nil {
		l.logger.Warn("event publish failed", "topic", topic, "error", err)
	}
}
