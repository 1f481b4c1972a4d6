package domain

import "github.com/shopspring/decimal"

// Transaction carries the transparency snapshot recorded when a ledger
// transaction is created. Amount is the normalized value in the ledger
// currency; OriginalAmount/OriginalCurrency preserve the value as entered by
// the paying party. ExchangeRate is the exact ratio used for the conversion
// and is nil if and only if no conversion took place.
//
// The snapshot is written once at creation time and never recomputed; later
// changes to a currency's rate do not alter past transactions.
type Transaction struct {
	Amount           decimal.Decimal  `json:"amount"`
	CurrencyCode     string           `json:"currencyCode"`
	OriginalAmount   decimal.Decimal  `json:"originalAmount"`
	OriginalCurrency string           `json:"originalCurrency"`
	ExchangeRate     *decimal.Decimal `json:"transactionExchangeRate"`
}
