package events

import "time"

// Topic names for the dashboard event feed.
const (
	TopicTransactionCompleted = "transaction_completed"
	TopicAgentRegistered      = "agent_registered"
)

// TransactionCompleted is emitted after a payment has been durably
// recorded and the agent stats updated.
type TransactionCompleted struct {
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	FromAgent     string    `json:"from_agent"`
	ToAgent       string    `json:"to_agent"`
	Amount        int64     `json:"amount"`
	Purpose       string    `json:"purpose"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AgentRegistered is emitted when a new agent row is created.
type AgentRegistered struct {
	AgentID      string    `json:"agent_id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	Type         string    `json:"type"`
	RegisteredAt time.Time `json:"registered_at"`
}
