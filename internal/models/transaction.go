package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionSource records how a transaction entered the system.
type TransactionSource string

const (
	SourceCSVUpload TransactionSource = "csv_upload"
	SourcePDFUpload TransactionSource = "pdf_upload"
)

type Transaction struct {
	ID          uuid.UUID         `db:"id"`
	UserID      uuid.UUID         `db:"user_id"`
	StatementID uuid.UUID         `db:"statement_id"`
	Date        time.Time         `db:"date"`
	Description string            `db:"description"`
	Amount      decimal.Decimal   `db:"amount"`
	Type        TransactionType   `db:"type"`
	Category    string            `db:"category"`
	Source      TransactionSource `db:"source"`
	CreatedAt   time.Time         `db:"created_at"`
}
