package parser

import (
	"strings"
)

// Rule maps description keywords to a category. When Type is set the rule
// also decides the transaction direction.
type Rule struct {
	Category string          `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
	Type     TransactionType `yaml:"type,omitempty"`
}

// DefaultRules is the built-in table. Order matters: the first rule with a
// matching keyword wins.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "Food", Keywords: []string{"zomato", "swiggy", "restaurant"}, Type: TypeExpense},
		{Category: "Transport", Keywords: []string{"uber", "ola", "fuel"}, Type: TypeExpense},
		{Category: "Income", Keywords: []string{"salary", "deposit"}, Type: TypeIncome},
		{Category: "Entertainment", Keywords: []string{"netflix", "spotify"}, Type: TypeExpense},
		{Category: "UPI Transfer", Keywords: []string{"upi"}},
	}
}

// Categorizer assigns categories by case-insensitive substring match on the
// description. It holds no mutable state and is safe for concurrent use.
type Categorizer struct {
	rules []Rule
}

func NewCategorizer(rules []Rule) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized[i] = Rule{Category: r.Category, Keywords: keywords, Type: r.Type}
	}
	return &Categorizer{rules: normalized}
}

// Categorize returns tx with Category (and, for directional rules, Type)
// set from its description. A forced type also fixes the sign of a signed
// amount so that the two agree. Applying it twice gives the same result.
func (c *Categorizer) Categorize(tx ParsedTransaction) ParsedTransaction {
	rule, ok := c.match(tx.Description)
	if !ok {
		tx.Category = CategoryUncategorized
		return tx
	}

	tx.Category = rule.Category
	switch rule.Type {
	case TypeExpense:
		tx.Type = TypeExpense
		if tx.Amount.IsPositive() {
			tx.Amount = tx.Amount.Neg()
		}
	case TypeIncome:
		tx.Type = TypeIncome
		if tx.Amount.IsNegative() {
			tx.Amount = tx.Amount.Neg()
		}
	}
	return tx
}

// Rules returns a copy of the active rule table.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

func (c *Categorizer) match(description string) (Rule, bool) {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(desc, kw) {
				return r, true
			}
		}
	}
	return Rule{}, false
}
