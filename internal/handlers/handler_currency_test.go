package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oguzbenturk/ukcworld-rates/internal/apperrors"
	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	portssvc "github.com/oguzbenturk/ukcworld-rates/internal/core/ports/services"
	"github.com/oguzbenturk/ukcworld-rates/internal/dto"
	"github.com/oguzbenturk/ukcworld-rates/internal/handlers"
	"github.com/oguzbenturk/ukcworld-rates/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListAutoUpdateCandidates(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListRateUpdateLogs(ctx context.Context, currencyCode string, limit, offset int) ([]domain.RateUpdateLog, error) {
	args := m.Called(ctx, currencyCode, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateUpdateLog), args.Error(1)
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ApplyRateUpdate(ctx context.Context, currencyCode string, newRate decimal.Decimal, source string, trigger domain.UpdateTrigger, metadata map[string]string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode, newRate, source, trigger, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) SetRateManually(ctx context.Context, currencyCode string, rate decimal.Decimal, adminUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode, rate, adminUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) RecordFailedUpdate(ctx context.Context, currencyCode string, source string, trigger domain.UpdateTrigger, errMsg string, metadata map[string]string) error {
	args := m.Called(ctx, currencyCode, source, trigger, errMsg, metadata)
	return args.Error(0)
}

func (m *MockCurrencyService) SetAutoUpdate(ctx context.Context, currencyCode string, enabled bool, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode, enabled, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) SetUpdateFrequency(ctx context.Context, currencyCode string, hours int, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode, hours, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

// --- Mock RateUpdater ---
type MockRateUpdater struct {
	mock.Mock
}

func (m *MockRateUpdater) RunTick(ctx context.Context, trigger domain.UpdateTrigger) (*domain.TickSummary, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TickSummary), args.Error(1)
}

var _ portssvc.RateUpdaterSvc = (*MockRateUpdater)(nil)

// --- Test Suite ---
type CurrencyHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockCurrencyService *MockCurrencyService
	mockRateUpdater     *MockRateUpdater
	jwtSecret           string
}

func (suite *CurrencyHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "rates-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *CurrencyHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockCurrencyService = new(MockCurrencyService)
	suite.mockRateUpdater = new(MockRateUpdater)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterCurrencyRoutes(v1, suite.mockCurrencyService, suite.mockRateUpdater)
}

func (suite *CurrencyHandlerTestSuite) doJSON(method, url string, body any, userID string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *CurrencyHandlerTestSuite) TestSetAutoUpdate_Success() {
	userID := uuid.NewString()
	updated := &domain.Currency{CurrencyCode: "TRY", AutoUpdateEnabled: true, UpdateFrequencyHours: 6}

	suite.mockCurrencyService.On("SetAutoUpdate", mock.Anything, "TRY", true, userID).
		Return(updated, nil).Once()

	w := suite.doJSON(http.MethodPatch, "/api/v1/currencies/TRY/auto-update", gin.H{"enabled": true}, userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("TRY", resp.CurrencyCode)
	suite.True(resp.AutoUpdateEnabled)
	suite.mockCurrencyService.AssertExpectations(suite.T())
}

func (suite *CurrencyHandlerTestSuite) TestSetAutoUpdate_MissingEnabledRejected() {
	w := suite.doJSON(http.MethodPatch, "/api/v1/currencies/TRY/auto-update", gin.H{}, uuid.NewString())

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCurrencyService.AssertNotCalled(suite.T(), "SetAutoUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyHandlerTestSuite) TestSetAutoUpdate_NonBooleanRejected() {
	w := suite.doJSON(http.MethodPatch, "/api/v1/currencies/TRY/auto-update", gin.H{"enabled": "yes"}, uuid.NewString())

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *CurrencyHandlerTestSuite) TestSetFrequency_WhitelistViolationIs400() {
	userID := uuid.NewString()

	suite.mockCurrencyService.On("SetUpdateFrequency", mock.Anything, "TRY", 5, userID).
		Return(nil, apperrors.ErrValidation).Once()

	w := suite.doJSON(http.MethodPatch, "/api/v1/currencies/TRY/frequency", gin.H{"hours": 5}, userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCurrencyService.AssertExpectations(suite.T())
}

func (suite *CurrencyHandlerTestSuite) TestSetRate_Success() {
	userID := uuid.NewString()
	rate := decimal.RequireFromString("30.00")
	updated := &domain.Currency{CurrencyCode: "TRY", Rate: rate, AuditFields: domain.AuditFields{LastUpdatedBy: userID}}

	suite.mockCurrencyService.On("SetRateManually", mock.Anything, "TRY", mock.MatchedBy(func(r decimal.Decimal) bool {
		return r.Equal(rate)
	}), userID).Return(updated, nil).Once()

	w := suite.doJSON(http.MethodPut, "/api/v1/currencies/TRY/rate", gin.H{"rate": "30.00"}, userID)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockCurrencyService.AssertExpectations(suite.T())
}

func (suite *CurrencyHandlerTestSuite) TestSetRate_UnknownCurrencyIs404() {
	userID := uuid.NewString()

	suite.mockCurrencyService.On("SetRateManually", mock.Anything, "XXX", mock.Anything, userID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodPut, "/api/v1/currencies/XXX/rate", gin.H{"rate": "30.00"}, userID)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CurrencyHandlerTestSuite) TestSetRate_MissingTokenIs401() {
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/currencies/TRY/rate", bytes.NewReader([]byte(`{"rate":"30.00"}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockCurrencyService.AssertNotCalled(suite.T(), "SetRateManually", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyHandlerTestSuite) TestListLogs_DefaultPagination() {
	userID := uuid.NewString()

	suite.mockCurrencyService.On("ListRateUpdateLogs", mock.Anything, "TRY", 50, 0).
		Return([]domain.RateUpdateLog{}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/currencies/TRY/logs", nil, userID)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockCurrencyService.AssertExpectations(suite.T())
}

func (suite *CurrencyHandlerTestSuite) TestListLogs_ExplicitPagination() {
	userID := uuid.NewString()

	suite.mockCurrencyService.On("ListRateUpdateLogs", mock.Anything, "TRY", 10, 20).
		Return([]domain.RateUpdateLog{}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/currencies/TRY/logs?limit=10&offset=20", nil, userID)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockCurrencyService.AssertExpectations(suite.T())
}

func (suite *CurrencyHandlerTestSuite) TestListLogs_NonIntegerLimitIs400() {
	w := suite.doJSON(http.MethodGet, "/api/v1/currencies/TRY/logs?limit=abc", nil, uuid.NewString())

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCurrencyService.AssertNotCalled(suite.T(), "ListRateUpdateLogs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyHandlerTestSuite) TestRunNow_ReturnsSummary() {
	userID := uuid.NewString()
	summary := &domain.TickSummary{
		StartedAt: time.Now().UTC(),
		Attempted: 2,
		Succeeded: []string{"TRY"},
		Failed:    []domain.FailedUpdate{{CurrencyCode: "EUR", ErrorMessage: "chain exhausted"}},
	}

	suite.mockRateUpdater.On("RunTick", mock.Anything, domain.TriggerManual).
		Return(summary, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/currencies/run-now", nil, userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TickSummaryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(2, resp.Attempted)
	suite.Equal([]string{"TRY"}, resp.Succeeded)
	suite.Require().Len(resp.Failed, 1)
	suite.Equal("EUR", resp.Failed[0].CurrencyCode)
	suite.mockRateUpdater.AssertExpectations(suite.T())
}

func (suite *CurrencyHandlerTestSuite) TestCreateCurrency_InvalidCodeIs400() {
	w := suite.doJSON(http.MethodPost, "/api/v1/currencies", gin.H{
		"currencyCode": "usd",
		"symbol":       "$",
		"name":         "US Dollar",
	}, uuid.NewString())

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockCurrencyService.AssertNotCalled(suite.T(), "CreateCurrency", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyHandlerTestSuite) TestGetCurrency_Success() {
	userID := uuid.NewString()
	rate := decimal.RequireFromString("32.45")
	now := time.Now().UTC()

	suite.mockCurrencyService.On("GetCurrencyByCode", mock.Anything, "TRY").
		Return(&domain.Currency{CurrencyCode: "TRY", Rate: rate, LastUpdatedAt: &now}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/currencies/TRY", nil, userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("TRY", resp.CurrencyCode)
	suite.True(resp.Rate.Equal(rate))
	suite.NotNil(resp.LastUpdatedAt)
}

func TestCurrencyHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyHandlerTestSuite))
}
