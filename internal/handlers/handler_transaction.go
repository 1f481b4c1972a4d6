package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	portssvc "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/services"
	"github.com/oguzbenturk/ukcworld-rates/internal/dto"
	"github.com/oguzbenturk/ukcworld-rates/internal/middleware"
)

// transactionHandler exposes the conversion transparency snapshot used when
// ledger transactions are created in a non-ledger currency.
type transactionHandler struct {
	transparency portssvc.TransactionPreparerSvc
}

func newTransactionHandler(tp portssvc.TransactionPreparerSvc) *transactionHandler {
	return &transactionHandler{transparency: tp}
}

// RegisterTransactionRoutes registers routes related to transaction
// preparation.
func RegisterTransactionRoutes(rg *gin.RouterGroup, transparency portssvc.TransactionPreparerSvc) {
	h := newTransactionHandler(transparency)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/prepare", h.prepareTransaction)
	}
}

// prepareTransaction returns the amount converted into the ledger currency
// together with the exact rate used, so the caller can persist the snapshot.
func (h *transactionHandler) prepareTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PrepareTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for prepareTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("entered_currency", req.CurrencyCode),
		slog.String("ledger_currency", req.LedgerCurrency),
	)

	txn, err := h.transparency.PrepareTransaction(c.Request.Context(), req.Amount, req.CurrencyCode, req.LedgerCurrency)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoRateAvailable), errors.Is(err, apperrors.ErrInvalidRate):
			logger.Warn("No usable rate for conversion", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			respondServiceError(c, logger, err, "prepare transaction")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
