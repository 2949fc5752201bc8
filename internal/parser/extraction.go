package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultMaxInputChars = 30000
	DefaultTemperature   = 0.1
)

const extractionInstruction = `You are an expert financial data analyst.
Extract all transactions from the provided bank statement text.
Return ONLY valid JSON with no markdown formatting, explanations or code blocks:
either an array of transaction objects or an object of the form {"transactions": [...]}.

Each transaction object must have:
- "date": string (ISO 8601 format YYYY-MM-DD)
- "description": string (clean merchant name, without cryptic reference codes)
- "amount": number (absolute value, never negative)
- "type": "income" or "expense"
- "category": string (inferred from the description, e.g. "Food", "Transport", "Salary", "Rent", "Shopping", "Transfer")

Ignore headers, footers and page numbers. If no transactions are found, return an empty array [].`

const promptPrefix = "Analyze this bank statement:\n\n"

// CompletionRequest is a single structured-completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	JSONMode    bool
}

// Completer sends one request to a hosted language model and returns the
// raw text of its first answer. Implementations return ErrConfiguration when
// credentials are missing, *ServiceError for non-success responses and
// ErrEmptyResponse when the answer carries no content.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TransactionExtractor turns raw statement text into transactions.
type TransactionExtractor interface {
	ExtractTransactions(ctx context.Context, text string) ([]ParsedTransaction, error)
}

// AIExtractor is the TransactionExtractor backed by a Completer.
type AIExtractor struct {
	completer   Completer
	maxChars    int
	temperature float32
	logger      *zap.Logger
}

type AIOption func(*AIExtractor)

func WithMaxInputChars(n int) AIOption {
	return func(e *AIExtractor) {
		if n > 0 {
			e.maxChars = n
		}
	}
}

func WithTemperature(t float32) AIOption {
	return func(e *AIExtractor) {
		if t >= 0 {
			e.temperature = t
		}
	}
}

func NewAIExtractor(completer Completer, logger *zap.Logger, opts ...AIOption) *AIExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &AIExtractor{
		completer:   completer,
		maxChars:    DefaultMaxInputChars,
		temperature: DefaultTemperature,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildRequest returns the request sent for text, with text cut to the
// configured number of characters.
func (e *AIExtractor) BuildRequest(text string) CompletionRequest {
	return CompletionRequest{
		System:      extractionInstruction,
		Prompt:      promptPrefix + Truncate(text, e.maxChars),
		Temperature: e.temperature,
		JSONMode:    true,
	}
}

// ExtractTransactions makes exactly one completion call. The returned rows
// are not normalized.
func (e *AIExtractor) ExtractTransactions(ctx context.Context, text string) ([]ParsedTransaction, error) {
	if e.completer == nil {
		return nil, ErrConfiguration
	}

	content, err := e.completer.Complete(ctx, e.BuildRequest(text))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyResponse
	}

	txs, err := ParseCompletion(content)
	if err != nil {
		e.logger.Warn("Failed to parse AI response",
			zap.Int("response_length", len(content)),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Info("AI extraction completed",
		zap.Int("input_length", len(text)),
		zap.Int("transactions", len(txs)),
	)
	return txs, nil
}

// Truncate returns at most max characters of s, never splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

var bracketedRe = regexp.MustCompile(`(?s)\[.*\]`)

type aiTransaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
}

// ParseCompletion decodes a model answer. It accepts a bare JSON array, an
// object with a "transactions" array, either of them inside code fences,
// and as a last resort the outermost bracketed substring of the answer.
// Elements that do not decode are skipped.
func ParseCompletion(content string) ([]ParsedTransaction, error) {
	clean := strings.ReplaceAll(content, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	elements, ok := decodeElements([]byte(clean))
	if !ok {
		match := bracketedRe.FindString(clean)
		if match == "" {
			return nil, ErrAIResponseUnparseable
		}
		if err := json.Unmarshal([]byte(match), &elements); err != nil {
			return nil, ErrAIResponseUnparseable
		}
	}

	txs := make([]ParsedTransaction, 0, len(elements))
	for _, raw := range elements {
		var item aiTransaction
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		date, _ := ParseDate(item.Date)
		txType, _ := ParseTransactionType(item.Type)
		txs = append(txs, ParsedTransaction{
			Date:        date,
			Description: item.Description,
			Amount:      item.Amount,
			Type:        txType,
			Category:    strings.TrimSpace(item.Category),
		})
	}
	return txs, nil
}

func decodeElements(data []byte) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false
	}

	switch trimmed[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, false
		}
		return arr, true
	case '{':
		var obj struct {
			Transactions *[]json.RawMessage `json:"transactions"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil || obj.Transactions == nil {
			return nil, false
		}
		return *obj.Transactions, true
	}
	return nil, false
}
