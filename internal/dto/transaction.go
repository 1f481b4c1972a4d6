package dto

import (
	"github.com/oguzbenturk/ukcworld-rates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PrepareTransactionRequest asks for a conversion snapshot of an amount
// entered in one currency against the ledger currency.
type PrepareTransactionRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,uppercase,alpha,len=3"`
	LedgerCurrency string          `json:"ledgerCurrency" binding:"required,uppercase,alpha,len=3"`
}

// TransactionResponse is the transparency snapshot returned to the client.
// TransactionExchangeRate is null when no conversion took place.
type TransactionResponse struct {
	Amount                  decimal.Decimal  `json:"amount"`
	CurrencyCode            string           `json:"currencyCode"`
	OriginalAmount          decimal.Decimal  `json:"originalAmount"`
	OriginalCurrency        string           `json:"originalCurrency"`
	TransactionExchangeRate *decimal.Decimal `json:"transactionExchangeRate"`
}

// ToTransactionResponse converts a domain.Transaction to a TransactionResponse.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		Amount:                  txn.Amount,
		CurrencyCode:            txn.CurrencyCode,
		OriginalAmount:          txn.OriginalAmount,
		OriginalCurrency:        txn.OriginalCurrency,
		TransactionExchangeRate: txn.ExchangeRate,
	}
}
