package models

import "time"

// TransactionType classifies a transaction.
type TransactionType string

const (
	// TransactionTypePayment is a payment for services rendered.
	TransactionTypePayment TransactionType = "payment"
)

// TransactionStatus tracks a transaction's lifecycle state.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is an immutable record of a payment between two parties.
// Either side may be an unregistered counterparty, in which case only
// its name is recorded and the agent ID stays empty.
type Transaction struct {
	ID                string            `json:"id"`
	Type              TransactionType   `json:"type"`
	FromAgentID       string            `json:"from_agent_id,omitempty"`
	FromAgentName     string            `json:"from_agent_name"`
	ToAgentID         string            `json:"to_agent_id,omitempty"`
	ToAgentName       string            `json:"to_agent_name"`
	Amount            int64             `json:"amount"`
	Purpose           string            `json:"purpose"`
	Memo              map[string]any    `json:"memo,omitempty"`
	Status            TransactionStatus `json:"status"`
	ConsensusRequired bool              `json:"consensus_required"`
	ConsensusResult   string            `json:"consensus_result,omitempty"`
	Timestamp         time.Time         `json:"timestamp"`
}
