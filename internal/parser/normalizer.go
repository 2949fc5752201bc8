package parser

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize brings records from any producer to canonical form and drops
// the ones without a usable date. Order is preserved.
func Normalize(txs []ParsedTransaction) []ParsedTransaction {
	out := make([]ParsedTransaction, 0, len(txs))
	for _, tx := range txs {
		if n, ok := NormalizeOne(tx); ok {
			out = append(out, n)
		}
	}
	return out
}

// NormalizeOne returns tx with a non-negative amount, a valid type, a
// non-empty category and a cleaned description. It reports false when the
// date is missing.
func NormalizeOne(tx ParsedTransaction) (ParsedTransaction, bool) {
	if tx.Date.IsZero() {
		return ParsedTransaction{}, false
	}
	y, m, d := tx.Date.Date()
	tx.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	if t, ok := ParseTransactionType(string(tx.Type)); ok {
		tx.Type = t
	} else if tx.Amount.IsNegative() {
		tx.Type = TypeExpense
	} else {
		tx.Type = TypeIncome
	}
	tx.Amount = tx.Amount.Abs()

	tx.Category = strings.TrimSpace(tx.Category)
	if tx.Category == "" {
		tx.Category = CategoryUncategorized
	}

	tx.Description = cleanDescription(tx.Description)
	return tx, true
}

// cleanDescription drops invalid UTF-8 (Postgres rejects it), composes
// Unicode to NFC and collapses whitespace runs.
func cleanDescription(s string) string {
	if !utf8.ValidString(s) {
		var b strings.Builder
		b.Grow(len(s))
		for len(s) > 0 {
			r, size := utf8.DecodeRuneInString(s)
			if r == utf8.RuneError && size == 1 {
				s = s[1:]
				continue
			}
			b.WriteRune(r)
			s = s[size:]
		}
		s = b.String()
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
