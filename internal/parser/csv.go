package parser

import (
	"encoding/csv"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// HeaderMode controls whether the first CSV line is treated as a header.
type HeaderMode int

const (
	// HeaderAuto skips the first line when it names a date, amount or
	// description column.
	HeaderAuto HeaderMode = iota
	HeaderPresent
	HeaderAbsent
)

func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return HeaderAuto, nil
	case "present", "yes", "true":
		return HeaderPresent, nil
	case "absent", "no", "false":
		return HeaderAbsent, nil
	default:
		return HeaderAuto, fmt.Errorf("invalid header mode %q (want auto, present or absent)", s)
	}
}

func (m HeaderMode) String() string {
	switch m {
	case HeaderPresent:
		return "present"
	case HeaderAbsent:
		return "absent"
	default:
		return "auto"
	}
}

const minCSVColumns = 3

var headerMarkers = []string{"date", "amount", "description"}

// CSVParser reads date,description,amount rows.
type CSVParser struct {
	categorizer *Categorizer
	header      HeaderMode
	logger      *zap.Logger
}

func NewCSVParser(categorizer *Categorizer, header HeaderMode, logger *zap.Logger) *CSVParser {
	if categorizer == nil {
		categorizer = NewCategorizer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVParser{
		categorizer: categorizer,
		header:      header,
		logger:      logger,
	}
}

// Parse returns the valid rows of content in file order, categorized but
// not yet normalized. Rows with too few columns, an unparseable date or an
// unparseable amount are skipped.
func (p *CSVParser) Parse(content string) []ParsedTransaction {
	lines := nonEmptyLines(strings.TrimPrefix(content, "\ufeff"))
	if len(lines) == 0 {
		return nil
	}

	if p.hasHeader(lines[0]) {
		lines = lines[1:]
	}

	transactions := make([]ParsedTransaction, 0, len(lines))
	for i, line := range lines {
		tx, ok := p.parseRow(line)
		if !ok {
			p.logger.Debug("Skipping CSV row", zap.Int("row", i+1))
			continue
		}
		transactions = append(transactions, p.categorizer.Categorize(tx))
	}
	return transactions
}

func (p *CSVParser) hasHeader(first string) bool {
	switch p.header {
	case HeaderPresent:
		return true
	case HeaderAbsent:
		return false
	}
	// A dated row is data even when its narration says "Mandate" or "Amount".
	if _, ok := ParseDate(splitRow(first)[0]); ok {
		return false
	}
	lower := strings.ToLower(first)
	for _, marker := range headerMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (p *CSVParser) parseRow(line string) (ParsedTransaction, bool) {
	fields := splitRow(line)
	if len(fields) < minCSVColumns {
		return ParsedTransaction{}, false
	}

	date, ok := ParseDate(fields[0])
	if !ok {
		return ParsedTransaction{}, false
	}

	amount, ok := CleanAmount(fields[2])
	if !ok {
		return ParsedTransaction{}, false
	}

	txType := TypeIncome
	if amount.IsNegative() {
		txType = TypeExpense
	}

	return ParsedTransaction{
		Date:        date,
		Description: fields[1],
		Amount:      amount,
		Type:        txType,
		Category:    CategoryUncategorized,
	}, true
}

// splitRow picks the delimiter per row: ';' when present, ',' otherwise.
func splitRow(line string) []string {
	delim := ','
	if strings.ContainsRune(line, ';') {
		delim = ';'
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		fields = strings.Split(line, string(delim))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func nonEmptyLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
