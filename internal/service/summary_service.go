package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const monthLayout = "2006-01"

type TransactionLister interface {
	ListByUserID(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Transaction, error)
}

type SummaryService struct {
	transactions TransactionLister
	logger       *zap.Logger
}

func NewSummaryService(transactions TransactionLister, logger *zap.Logger) *SummaryService {
	return &SummaryService{transactions: transactions, logger: logger}
}

// ParseMonth reads a YYYY-MM month. An empty string is the current month.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	month, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return month, nil
}

// MonthlySummary computes income, expenses and savings for the month that
// starts at month.
func (s *SummaryService) MonthlySummary(ctx context.Context, userID uuid.UUID, month time.Time) (*dto.SummaryResponse, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	transactions, err := s.transactions.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	summary := ComputeSummary(from, transactions)
	s.logger.Debug("Monthly summary computed",
		zap.String("user_id", userID.String()),
		zap.String("month", summary.Month),
		zap.Int("transactions", summary.TransactionCount),
	)
	return summary, nil
}

// ComputeSummary aggregates transactions. The savings rate is savings as a
// whole percent of income, rounded half up, and 0 without income.
func ComputeSummary(month time.Time, transactions []*models.Transaction) *dto.SummaryResponse {
	income := decimal.Zero
	expenses := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionTypeIncome:
			income = income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			amount := tx.Amount.Abs()
			expenses = expenses.Add(amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(amount)
		}
	}

	savings := income.Sub(expenses)
	var rate int64
	if income.IsPositive() {
		rate = savings.Div(income).Mul(decimal.NewFromInt(100)).Add(decimal.NewFromFloat(0.5)).Floor().IntPart()
	}

	totals := make([]dto.CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		totals = append(totals, dto.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].Category < totals[j].Category
	})

	return &dto.SummaryResponse{
		Month:            month.Format(monthLayout),
		Income:           income,
		Expenses:         expenses,
		Savings:          savings,
		SavingsRate:      rate,
		TransactionCount: len(transactions),
		ByCategory:       totals,
	}
}
