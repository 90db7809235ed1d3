package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/agentpay/flux-ledger/internal/ledger"
	"github.com/agentpay/flux-ledger/internal/models"
	"github.com/agentpay/flux-ledger/internal/pricing"
)

// Handlers exposes the dashboard REST API over the ledger.
type Handlers struct {
	logger *slog.Logger
	ledger *ledger.Ledger
}

// NewHandlers constructs a Handlers instance.
func NewHandlers(logger *slog.Logger, l *ledger.Ledger) *Handlers {
	return &Handlers{logger: logger, ledger: l}
}

type registerAgentRequest struct {
	Name           string   `json:"name" binding:"required"`
	DisplayName    string   `json:"display_name"`
	Type           string   `json:"type"`
	Categories     []string `json:"categories"`
	HourlyRate     *float64 `json:"hourly_rate"`
	InitialBalance int64    `json:"initial_balance"`
}

func (h *Handlers) registerAgent(c *gin.Context) {
	var req registerAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := ledger.RegisterParams{
		Name:           req.Name,
		DisplayName:    req.DisplayName,
		Type:           models.AgentType(req.Type),
		Categories:     req.Categories,
		InitialBalance: req.InitialBalance,
	}
	if req.HourlyRate != nil {
		rate := decimal.NewFromFloat(*req.HourlyRate)
		params.HourlyRate = &rate
	}

	agent, created, err := h.ledger.RegisterAgent(c.Request.Context(), params)
	if err != nil {
		h.fail(c, "register agent", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, agent)
}

func (h *Handlers) listAgents(c *gin.Context) {
	agents, err := h.ledger.ListAgents(c.Request.Context())
	if err != nil {
		h.fail(c, "list agents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

func (h *Handlers) agentStats(c *gin.Context) {
	agent, err := h.ledger.AgentStats(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, "agent stats", err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handlers) agentBalance(c *gin.Context) {
	summary, err := h.ledger.BalanceSummary(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, "balance summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handlers) agentEarnings(c *gin.Context) {
	history, err := h.ledger.EarningsHistory(c.Request.Context(), c.Param("name"), parseLimit(c, 10))
	if err != nil {
		h.fail(c, "earnings history", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

type earningRequest struct {
	AgentName  string         `json:"agent_name" binding:"required"`
	ClientName string         `json:"client_name" binding:"required"`
	Amount     int64          `json:"amount" binding:"required"`
	Purpose    string         `json:"purpose"`
	Details    map[string]any `json:"details"`
}

func (h *Handlers) recordEarning(c *gin.Context) {
	var req earningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txID, err := h.ledger.RecordEarning(c.Request.Context(), req.AgentName, req.ClientName, req.Amount, req.Purpose, req.Details)
	if err != nil {
		h.fail(c, "record earning", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction_id": txID})
}

type spendingRequest struct {
	AgentName     string         `json:"agent_name" binding:"required"`
	RecipientName string         `json:"recipient_name" binding:"required"`
	Amount        int64          `json:"amount" binding:"required"`
	Purpose       string         `json:"purpose"`
	Details       map[string]any `json:"details"`
}

func (h *Handlers) recordSpending(c *gin.Context) {
	var req spendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txID, err := h.ledger.RecordSpending(c.Request.Context(), req.AgentName, req.RecipientName, req.Amount, req.Purpose, req.Details)
	if err != nil {
		h.fail(c, "record spending", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction_id": txID})
}

type transferRequest struct {
	FromAgent string         `json:"from_agent" binding:"required"`
	ToAgent   string         `json:"to_agent" binding:"required"`
	Amount    int64          `json:"amount" binding:"required"`
	Purpose   string         `json:"purpose"`
	Details   map[string]any `json:"details"`
}

func (h *Handlers) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txID, err := h.ledger.Transfer(c.Request.Context(), req.FromAgent, req.ToAgent, req.Amount, req.Purpose, req.Details)
	if err != nil {
		h.fail(c, "transfer", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction_id": txID})
}

func (h *Handlers) listTransactions(c *gin.Context) {
	txs, err := h.ledger.ListTransactions(c.Request.Context(), parseLimit(c, 50))
	if err != nil {
		h.fail(c, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

func (h *Handlers) quote(c *gin.Context) {
	serviceType := c.Query("service_type")
	if serviceType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_type is required"})
		return
	}
	quote := pricing.Estimate(serviceType, c.DefaultQuery("complexity", pricing.ComplexityMedium), c.DefaultQuery("urgency", pricing.UrgencyNormal))
	c.JSON(http.StatusOK, quote)
}

// fail maps domain errors to HTTP statuses and logs server-side failures.
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, models.ErrAgentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
	case errors.Is(err, models.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidAmount.Error()})
	default:
		h.logger.Error(op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseLimit(c *gin.Context, fallback int) int {
	v := c.Query("limit")
	if v == "" {
		return fallback
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
