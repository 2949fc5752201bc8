package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOne(t *testing.T) {
	in := ParsedTransaction{
		Date:        time.Date(2024, time.May, 3, 17, 45, 0, 0, time.FixedZone("IST", 19800)),
		Description: "  Zomato \t order\n #42 ",
		Amount:      decimal.RequireFromString("-250.50"),
		Type:        "Expense",
		Category:    "  ",
	}

	got, ok := NormalizeOne(in)
	require.True(t, ok)
	assert.True(t, day(2024, time.May, 3).Equal(got.Date))
	assert.Equal(t, "Zomato order #42", got.Description)
	assert.True(t, decimal.RequireFromString("250.50").Equal(got.Amount))
	assert.Equal(t, TypeExpense, got.Type)
	assert.Equal(t, CategoryUncategorized, got.Category)
}

func TestNormalizeOne_DerivesType(t *testing.T) {
	neg, ok := NormalizeOne(ParsedTransaction{Date: day(2024, 1, 1), Amount: decimal.NewFromInt(-5)})
	require.True(t, ok)
	assert.Equal(t, TypeExpense, neg.Type)
	assert.True(t, decimal.NewFromInt(5).Equal(neg.Amount))

	pos, ok := NormalizeOne(ParsedTransaction{Date: day(2024, 1, 1), Amount: decimal.NewFromInt(5), Type: "refund"})
	require.True(t, ok)
	assert.Equal(t, TypeIncome, pos.Type)
}

func TestNormalizeOne_Description(t *testing.T) {
	got, ok := NormalizeOne(ParsedTransaction{Date: day(2024, 1, 1), Description: "Café \xffLatte"})
	require.True(t, ok)
	assert.Equal(t, "Café Latte", got.Description)
}

func TestNormalize_DropsUndatedRows(t *testing.T) {
	txs := []ParsedTransaction{
		{Date: day(2024, 1, 1), Description: "a", Amount: decimal.NewFromInt(1), Type: TypeIncome},
		{Description: "no date", Amount: decimal.NewFromInt(2), Type: TypeIncome},
		{Date: day(2024, 1, 3), Description: "c", Amount: decimal.NewFromInt(-3), Type: TypeExpense},
	}

	got := Normalize(txs)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Description)
	assert.Equal(t, "c", got[1].Description)
	for _, tx := range got {
		assert.False(t, tx.Amount.IsNegative())
	}
}
