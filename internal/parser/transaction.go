package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// CategoryUncategorized is assigned when no rule matches a description.
const CategoryUncategorized = "Uncategorized"

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// ParseTransactionType accepts "income"/"expense" in any case.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// ParsedTransaction is one statement line in canonical form. Amount may be
// signed while a producer is building it; after Normalize it is always a
// non-negative magnitude and Type carries the direction.
type ParsedTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
}

// Method records which path produced a result.
type Method string

const (
	MethodCSV          Method = "csv"
	MethodPDFHeuristic Method = "pdf_heuristic"
	MethodPDFAI        Method = "pdf_ai"
)

// Result is the output of a successful parse.
type Result struct {
	Transactions []ParsedTransaction
	Format       Format
	Method       Method
}
