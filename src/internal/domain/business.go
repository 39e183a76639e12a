package domain

// Business is a view assembled from live ledger reads. It is never stored.
type Business struct {
	Name        string
	Account     Identity
	Symbol      string
	TotalSupply string
}
