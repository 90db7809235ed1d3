package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/agentpay/flux-ledger/internal/interfaces"
	"github.com/agentpay/flux-ledger/internal/models"
)

// Store is the Postgres-backed implementation of interfaces.LedgerStore.
type Store struct {
	db *sql.DB
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db), nil
}

const agentColumns = `id, name, display_name, type, balance, hold, total_earned, total_spent,
	transaction_count, avg_transaction_size, status, rating, completion_rate, approval_rate,
	categories, hourly_rate, created_at, updated_at`

const transactionColumns = `id, type, from_agent_id, from_agent_name, to_agent_id, to_agent_name,
	amount, purpose, memo, status, consensus_required, consensus_result, occurred_at`

func (s *Store) CreateAgent(ctx context.Context, agent models.Agent) error {
	const query = `INSERT INTO agents (` + agentColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	var rate decimal.NullDecimal
	if agent.HourlyRate != nil {
		rate = decimal.NullDecimal{Decimal: *agent.HourlyRate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		agent.ID, agent.Name, agent.DisplayName, string(agent.Type),
		agent.Balance, agent.Hold, agent.TotalEarned, agent.TotalSpent,
		agent.TransactionCount, agent.AvgTransactionSize,
		string(agent.Status), agent.Rating, agent.CompletionRate, agent.ApprovalRate,
		pq.Array(agent.Categories), rate, agent.CreatedAt, agent.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("create agent %q: %w", agent.Name, models.ErrAgentExists)
	}
	if err != nil {
		return fmt.Errorf("create agent %q: %w", agent.Name, err)
	}
	return nil
}

func (s *Store) GetAgentByName(ctx context.Context, name string) (*models.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents WHERE name = $1`
	agent, err := scanAgent(s.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get agent %q: %w", name, err)
	}
	return agent, nil
}

func (s *Store) ListAgents(ctx context.Context) ([]models.Agent, error) {
	const query = `SELECT ` + agentColumns + ` FROM agents ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("list agents: %w", err)
		}
		agents = append(agents, *agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// ApplyTransaction inserts the transaction row and applies every stat
// delta inside one database transaction, so a failure at any step rolls
// the whole payment back.
func (s *Store) ApplyTransaction(ctx context.Context, tx models.Transaction, deltas []models.StatsDelta) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply transaction %s: %w", tx.ID, err)
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if err = s.insertTransaction(ctx, dbTx, tx); err != nil {
		return err
	}
	for _, delta := range deltas {
		if err = s.applyDelta(ctx, dbTx, tx, delta); err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

func (s *Store) insertTransaction(ctx context.Context, dbTx *sql.Tx, tx models.Transaction) error {
	const query = `INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	var memo []byte
	if tx.Memo != nil {
		var err error
		memo, err = json.Marshal(tx.Memo)
		if err != nil {
			return fmt.Errorf("insert transaction %s: marshal memo: %w", tx.ID, err)
		}
	}

	_, err := dbTx.ExecContext(ctx, query,
		tx.ID, string(tx.Type),
		nullString(tx.FromAgentID), tx.FromAgentName,
		nullString(tx.ToAgentID), tx.ToAgentName,
		tx.Amount, tx.Purpose, memo, string(tx.Status),
		tx.ConsensusRequired, nullString(tx.ConsensusResult), tx.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (s *Store) applyDelta(ctx context.Context, dbTx *sql.Tx, tx models.Transaction, delta models.StatsDelta) error {
	// balance moves additively; average size is integer division of
	// lifetime volume over transaction count.
	const query = `UPDATE agents SET
		total_earned = total_earned + $2,
		total_spent = total_spent + $3,
		balance = balance + $2 - $3,
		transaction_count = transaction_count + 1,
		avg_transaction_size = (total_earned + $2 + total_spent + $3) / (transaction_count + 1),
		updated_at = $4
	WHERE id = $1`

	res, err := dbTx.ExecContext(ctx, query, delta.AgentID, delta.EarnedCents, delta.SpentCents, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("apply stats for agent %s: %w", delta.AgentID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply stats for agent %s: %w", delta.AgentID, err)
	}
	if affected == 0 {
		return fmt.Errorf("apply stats for agent %s: %w", delta.AgentID, models.ErrAgentNotFound)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions
	ORDER BY occurred_at DESC LIMIT $1`
	return s.queryTransactions(ctx, query, normalizeLimit(limit))
}

func (s *Store) ListTransactionsTo(ctx context.Context, agentName string, limit int) ([]models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions
	WHERE to_agent_name = $1 ORDER BY occurred_at DESC LIMIT $2`
	return s.queryTransactions(ctx, query, agentName, normalizeLimit(limit))
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var (
			tx                      models.Transaction
			fromID, toID, consensus sql.NullString
			memo                    []byte
		)
		err := rows.Scan(
			&tx.ID, &tx.Type, &fromID, &tx.FromAgentName, &toID, &tx.ToAgentName,
			&tx.Amount, &tx.Purpose, &memo, &tx.Status,
			&tx.ConsensusRequired, &consensus, &tx.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.FromAgentID = fromID.String
		tx.ToAgentID = toID.String
		tx.ConsensusResult = consensus.String
		if len(memo) > 0 {
			if err := json.Unmarshal(memo, &tx.Memo); err != nil {
				return nil, fmt.Errorf("unmarshal memo for %s: %w", tx.ID, err)
			}
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*models.Agent, error) {
	var (
		agent models.Agent
		rate  decimal.NullDecimal
	)
	err := row.Scan(
		&agent.ID, &agent.Name, &agent.DisplayName, &agent.Type,
		&agent.Balance, &agent.Hold, &agent.TotalEarned, &agent.TotalSpent,
		&agent.TransactionCount, &agent.AvgTransactionSize,
		&agent.Status, &agent.Rating, &agent.CompletionRate, &agent.ApprovalRate,
		pq.Array(&agent.Categories), &rate, &agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rate.Valid {
		agent.HourlyRate = &rate.Decimal
	}
	return &agent, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

var _ interfaces.LedgerStore = (*Store)(nil)
