package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	portssvc "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/services"
	"github.com/oguzbenturk/ukcworld-rates/internal/dto"
	"github.com/oguzbenturk/ukcworld-rates/internal/middleware"
)

// currencyHandler handles HTTP requests related to currencies and their
// rate-update configuration.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
	rateUpdater     portssvc.RateUpdaterSvc
}

// newCurrencyHandler creates a new currencyHandler.
func newCurrencyHandler(cs portssvc.CurrencySvcFacade, ru portssvc.RateUpdaterSvc) *currencyHandler {
	return &currencyHandler{
		currencyService: cs,
		rateUpdater:     ru,
	}
}

// RegisterCurrencyRoutes registers routes related to currencies.
func RegisterCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade, rateUpdater portssvc.RateUpdaterSvc) {
	h := newCurrencyHandler(currencyService, rateUpdater)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.POST("/run-now", h.runNow)
		currencies.GET("/:code", h.getCurrencyByCode)
		currencies.PATCH("/:code/auto-update", h.setAutoUpdate)
		currencies.PATCH("/:code/frequency", h.setFrequency)
		currencies.PUT("/:code/rate", h.setRate)
		currencies.GET("/:code/logs", h.listLogs)
	}
}

// respondServiceError maps service-layer errors to HTTP responses.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Currency not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Service call failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// createCurrency adds a new currency to the registry (admin operation).
func (h *currencyHandler) createCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("currency_code", req.CurrencyCode))
	createdCurrency, err := h.currencyService.CreateCurrency(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Currency code '%s' already exists", req.CurrencyCode)})
			return
		}
		respondServiceError(c, logger, err, "create currency")
		return
	}

	logger.Info("Currency created successfully")
	c.JSON(http.StatusCreated, dto.ToCurrencyResponse(createdCurrency))
}

// getCurrencyByCode retrieves details for a specific currency.
func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("currency_code", c.Param("code")))

	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, logger, err, "retrieve currency")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// listCurrencies retrieves all available currencies.
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "list currencies")
		return
	}

	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}

// setAutoUpdate toggles scheduled refresh for a currency.
func (h *currencyHandler) setAutoUpdate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("currency_code", c.Param("code")))

	var req dto.SetAutoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for setAutoUpdate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field 'enabled' must be a boolean"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	currency, err := h.currencyService.SetAutoUpdate(c.Request.Context(), c.Param("code"), *req.Enabled, userID)
	if err != nil {
		respondServiceError(c, logger, err, "update auto-update flag")
		return
	}

	logger.Info("Auto-update flag changed", slog.Bool("enabled", *req.Enabled))
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// setFrequency changes the refresh interval for a currency.
func (h *currencyHandler) setFrequency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("currency_code", c.Param("code")))

	var req dto.SetFrequencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for setFrequency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field 'hours' must be an integer"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	currency, err := h.currencyService.SetUpdateFrequency(c.Request.Context(), c.Param("code"), req.Hours, userID)
	if err != nil {
		respondServiceError(c, logger, err, "update frequency")
		return
	}

	logger.Info("Update frequency changed", slog.Int("hours", req.Hours))
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// setRate applies an admin rate override for a currency.
func (h *currencyHandler) setRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("currency_code", c.Param("code")))

	var req dto.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for setRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field 'rate' must be a positive number"})
		return
	}

	adminUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	currency, err := h.currencyService.SetRateManually(c.Request.Context(), c.Param("code"), req.Rate, adminUserID)
	if err != nil {
		respondServiceError(c, logger, err, "set rate")
		return
	}

	logger.Info("Rate set manually", slog.String("rate", req.Rate.String()))
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// listLogs retrieves the paginated rate update audit trail for a currency.
// The limit defaults to 50 and is capped at 100 server-side.
func (h *currencyHandler) listLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("currency_code", c.Param("code")))

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'limit' must be an integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'offset' must be an integer"})
		return
	}

	entries, err := h.currencyService.ListRateUpdateLogs(c.Request.Context(), c.Param("code"), limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "list rate update logs")
		return
	}

	c.JSON(http.StatusOK, dto.ToListRateUpdateLogResponse(entries))
}

// runNow triggers an out-of-band update pass over all currently due
// currencies.
func (h *currencyHandler) runNow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.rateUpdater.RunTick(c.Request.Context(), domain.TriggerManual)
	if err != nil {
		respondServiceError(c, logger, err, "run update pass")
		return
	}

	logger.Info("Manual update pass finished",
		slog.Int("attempted", summary.Attempted),
		slog.Int("failed", len(summary.Failed)),
	)
	c.JSON(http.StatusOK, dto.ToTickSummaryResponse(summary))
}
