package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTx(desc string, amount string, typ TransactionType) ParsedTransaction {
	return ParsedTransaction{
		Date:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    CategoryUncategorized,
	}
}

func TestCategorizer_DefaultRules(t *testing.T) {
	c := NewCategorizer(nil)

	tests := []struct {
		name         string
		desc         string
		amount       string
		typ          TransactionType
		wantCategory string
		wantType     TransactionType
		wantAmount   string
	}{
		{"food forces expense", "ZOMATO ORDER 1234", "450", TypeIncome, "Food", TypeExpense, "-450"},
		{"restaurant", "Blue Restaurant", "-900", TypeExpense, "Food", TypeExpense, "-900"},
		{"transport", "Uber trip", "300", TypeIncome, "Transport", TypeExpense, "-300"},
		{"fuel", "HP Fuel station", "-2000", TypeExpense, "Transport", TypeExpense, "-2000"},
		{"salary forces income", "Salary credit", "-50000", TypeExpense, "Income", TypeIncome, "50000"},
		{"deposit", "Cash deposit", "1000", TypeIncome, "Income", TypeIncome, "1000"},
		{"entertainment", "Spotify premium", "119", TypeIncome, "Entertainment", TypeExpense, "-119"},
		{"upi keeps type", "UPI transfer to friend", "500", TypeIncome, "UPI Transfer", TypeIncome, "500"},
		{"first match wins", "UPI/Swiggy/order", "250", TypeIncome, "Food", TypeExpense, "-250"},
		{"no match", "Electricity bill", "-1200", TypeExpense, CategoryUncategorized, TypeExpense, "-1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Categorize(newTx(tt.desc, tt.amount, tt.typ))
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantType, got.Type)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.Amount), "amount %s", got.Amount)
			assert.Equal(t, tt.desc, got.Description)
		})
	}
}

func TestCategorizer_Idempotent(t *testing.T) {
	c := NewCategorizer(nil)

	inputs := []ParsedTransaction{
		newTx("Zomato", "100", TypeIncome),
		newTx("Netflix", "-199", TypeExpense),
		newTx("Salary", "-1", TypeExpense),
		newTx("upi/123", "42", TypeIncome),
		newTx("Groceries", "10", TypeIncome),
	}

	for _, in := range inputs {
		once := c.Categorize(in)
		twice := c.Categorize(once)
		assert.Equal(t, once.Category, twice.Category, in.Description)
		assert.Equal(t, once.Type, twice.Type, in.Description)
		assert.True(t, once.Amount.Equal(twice.Amount), in.Description)
	}
}

func TestCategorizer_CustomRules(t *testing.T) {
	c := NewCategorizer([]Rule{
		{Category: "Groceries", Keywords: []string{" BigBasket "}, Type: TypeExpense},
		{Category: "Refunds", Keywords: []string{"refund"}},
	})

	got := c.Categorize(newTx("bigbasket order", "800", TypeIncome))
	assert.Equal(t, "Groceries", got.Category)
	assert.Equal(t, TypeExpense, got.Type)

	got = c.Categorize(newTx("Zomato", "100", TypeIncome))
	assert.Equal(t, CategoryUncategorized, got.Category)
	assert.Equal(t, TypeIncome, got.Type)

	assert.Len(t, c.Rules(), 2)
	assert.Equal(t, []string{"bigbasket"}, c.Rules()[0].Keywords)
}
