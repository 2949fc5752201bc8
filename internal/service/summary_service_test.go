package service

import (
	"context"
	"testing"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func summaryTx(typ models.TransactionType, amount, category string) *models.Transaction {
	return &models.Transaction{
		ID:       uuid.New(),
		Date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.RequireFromString(amount),
		Type:     typ,
		Category: category,
	}
}

func TestComputeSummary(t *testing.T) {
	month := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	summary := ComputeSummary(month, []*models.Transaction{
		summaryTx(models.TransactionTypeIncome, "50000.00", "Income"),
		summaryTx(models.TransactionTypeExpense, "450.00", "Food"),
		summaryTx(models.TransactionTypeExpense, "1200.00", "Transport"),
		summaryTx(models.TransactionTypeExpense, "550.00", "Food"),
	})

	assert.Equal(t, "2024-01", summary.Month)
	assert.True(t, summary.Income.Equal(decimal.RequireFromString("50000")))
	assert.True(t, summary.Expenses.Equal(decimal.RequireFromString("2200")))
	assert.True(t, summary.Savings.Equal(decimal.RequireFromString("47800")))
	assert.EqualValues(t, 96, summary.SavingsRate)
	assert.Equal(t, 4, summary.TransactionCount)

	require.Len(t, summary.ByCategory, 2)
	assert.Equal(t, "Transport", summary.ByCategory[0].Category)
	assert.Equal(t, "Food", summary.ByCategory[1].Category)
	assert.True(t, summary.ByCategory[1].Total.Equal(decimal.RequireFromString("1000")))
}

func TestComputeSummary_SavingsRate(t *testing.T) {
	month := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		income   string
		expenses string
		want     int64
	}{
		{"no income", "0", "100", 0},
		{"half rounds up", "200", "199", 1},
		{"overspent", "1000", "1500", -50},
		{"negative half rounds toward zero", "200", "201", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []*models.Transaction{summaryTx(models.TransactionTypeExpense, tt.expenses, "Other")}
			if tt.income != "0" {
				txs = append(txs, summaryTx(models.TransactionTypeIncome, tt.income, "Income"))
			}
			assert.Equal(t, tt.want, ComputeSummary(month, txs).SavingsRate)
		})
	}
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2024, 3, 17, 10, 30, 0, 0, time.UTC)

	m, err := ParseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m)

	m, err = ParseMonth("2023-11", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), m)

	_, err = ParseMonth("11/2023", now)
	assert.Error(t, err)
}

func TestSummaryService_MonthlySummary(t *testing.T) {
	userID := uuid.New()
	lister := &mockTransactionStore{
		ListByUserIDFunc: func(_ context.Context, gotUser uuid.UUID, from, to time.Time) ([]*models.Transaction, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), from)
			assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), to)
			return []*models.Transaction{summaryTx(models.TransactionTypeIncome, "100", "Income")}, nil
		},
	}
	svc := NewSummaryService(lister, zap.NewNop())

	summary, err := svc.MonthlySummary(context.Background(), userID, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-12", summary.Month)
	assert.EqualValues(t, 100, summary.SavingsRate)
}
