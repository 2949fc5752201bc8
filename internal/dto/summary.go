package dto

import "github.com/shopspring/decimal"

type CategoryTotal struct {
	Category string          `json:"category" example:"Food"`
	Total    decimal.Decimal `json:"total" swaggertype:"string" example:"1250.00"`
}

// SummaryResponse holds the monthly metrics for one calendar month.
type SummaryResponse struct {
	Month            string          `json:"month" example:"2024-01"`
	Income           decimal.Decimal `json:"income" swaggertype:"string" example:"50000.00"`
	Expenses         decimal.Decimal `json:"expenses" swaggertype:"string" example:"32000.00"`
	Savings          decimal.Decimal `json:"savings" swaggertype:"string" example:"18000.00"`
	SavingsRate      int64           `json:"savings_rate" example:"36"`
	TransactionCount int             `json:"transaction_count"`
	ByCategory       []CategoryTotal `json:"by_category"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
