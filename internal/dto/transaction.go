package dto

import (
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/parser"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type TransactionResponse struct {
	ID          string          `json:"id,omitempty"`
	StatementID string          `json:"statement_id,omitempty"`
	Date        string          `json:"date" example:"2024-01-15"`
	Description string          `json:"description" example:"SWIGGY ORDER 1234"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"450.00"`
	Type        string          `json:"type" example:"expense"`
	Category    string          `json:"category" example:"Food"`
	Source      string          `json:"source,omitempty" example:"csv_upload"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		StatementID: tx.StatementID.String(),
		Date:        tx.Date.Format(DateLayout),
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Source:      string(tx.Source),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

// NewParsedTransactionResponse renders a transaction that was not persisted.
func NewParsedTransactionResponse(tx parser.ParsedTransaction) TransactionResponse {
	return TransactionResponse{
		Date:        tx.Date.Format(DateLayout),
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Category:    tx.Category,
	}
}

type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}
