package services

// ServiceContainer bundles the service interfaces handed to the HTTP layer.
type ServiceContainer struct {
	Currency     CurrencySvcFacade
	RateUpdater  RateUpdaterSvc
	Transparency TransactionPreparerSvc
}
