package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Segmenter cuts the flat text of a PDF statement into transactions.
// A date token opens a line, ordinary tokens build its description and an
// amount token closes it.
type Segmenter struct {
	categorizer *Categorizer
}

func NewSegmenter(categorizer *Categorizer) *Segmenter {
	if categorizer == nil {
		categorizer = NewCategorizer(nil)
	}
	return &Segmenter{categorizer: categorizer}
}

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenDate
	tokenAmount
)

type token struct {
	kind   tokenKind
	text   string
	date   time.Time
	amount decimal.Decimal
}

func classify(s string) token {
	if d, ok := MatchDate(s); ok {
		return token{kind: tokenDate, text: s, date: d}
	}
	if a, ok := MatchAmount(s); ok {
		return token{kind: tokenAmount, text: s, amount: a}
	}
	return token{kind: tokenText, text: s}
}

// segmentState is one state of the segmenter. step consumes a token and
// returns the next state plus a transaction when one is complete.
type segmentState interface {
	step(tok token) (segmentState, *ParsedTransaction)
}

// seeking waits for a date; everything else is noise.
type seeking struct{}

func (seeking) step(tok token) (segmentState, *ParsedTransaction) {
	if tok.kind == tokenDate {
		return &accumulating{date: tok.date}, nil
	}
	return seeking{}, nil
}

// accumulating holds the open line's date and description words.
type accumulating struct {
	date  time.Time
	words []string
}

func (a *accumulating) step(tok token) (segmentState, *ParsedTransaction) {
	switch tok.kind {
	case tokenDate:
		// An open line without an amount is dropped.
		return &accumulating{date: tok.date}, nil
	case tokenAmount:
		if len(a.words) == 0 {
			return seeking{}, nil
		}
		txType := TypeExpense
		if tok.amount.IsPositive() {
			txType = TypeIncome
		}
		return seeking{}, &ParsedTransaction{
			Date:        a.date,
			Description: strings.Join(a.words, " "),
			Amount:      tok.amount,
			Type:        txType,
			Category:    CategoryUncategorized,
		}
	default:
		a.words = append(a.words, tok.text)
		return a, nil
	}
}

// Segment returns the categorized transactions found in text, in order.
// An empty result means the text did not follow the date/description/amount
// layout; it is never an error.
func (s *Segmenter) Segment(text string) []ParsedTransaction {
	var (
		state        segmentState = seeking{}
		transactions []ParsedTransaction
	)
	for _, field := range strings.Fields(text) {
		next, tx := state.step(classify(field))
		if tx != nil {
			transactions = append(transactions, s.categorizer.Categorize(*tx))
		}
		state = next
	}
	return transactions
}
