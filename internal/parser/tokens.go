package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	dateTokenRe   = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	// The whole token must be the amount. A sign may sit on either side of
	// a currency marker, never on both.
	amountTokenRe = regexp.MustCompile(`^(-?)(?:\p{Sc}|Rs\.?|INR)?(-?)(\d[\d,]*\.\d{2})\p{Sc}?$`)
)

// dateLayouts are tried in order by ParseDate. Slash dates are day-first,
// the same reading MatchDate gives statement text; month-first is only
// tried when the day-first reading is not a calendar date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"2.1.2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// MatchDate reports whether token carries a dd/mm/yyyy date and returns it.
// Shapes that are not a real calendar date (32/01/2024) do not match.
func MatchDate(token string) (time.Time, bool) {
	m := dateTokenRe.FindString(token)
	if m == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2/1/2006", m)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// MatchAmount reports whether token is a monetary amount with a two-digit
// fraction ("1,234.56", "-50.00", "-₹500.00") and returns its value.
// Tokens with anything else around the number do not match.
func MatchAmount(token string) (decimal.Decimal, bool) {
	m := amountTokenRe.FindStringSubmatch(token)
	if m == nil || (m[1] != "" && m[2] != "") {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(m[3], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	if m[1] != "" || m[2] != "" {
		v = v.Neg()
	}
	return v, true
}

// ParseDate parses the date formats found in statement exports and model
// output. The result is midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// CleanAmount strips everything except digits, '-' and '.' and parses the
// remainder. Currency symbols and grouping commas are dropped.
func CleanAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
