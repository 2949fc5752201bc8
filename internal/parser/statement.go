package parser

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// File is an uploaded statement.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// PDFTextExtractor returns the text of every page of a PDF, in page order.
type PDFTextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// DetectFormat picks the statement format from the content type, falling
// back to the file extension.
func DetectFormat(name, contentType string) (Format, error) {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch strings.ToLower(mediaType) {
		case "text/csv", "application/csv", "text/comma-separated-values":
			return FormatCSV, nil
		case "application/pdf":
			return FormatPDF, nil
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFileType, name, contentType)
}

// Parser turns statement files into normalized transactions. It keeps no
// per-call state; one Parser may serve concurrent requests.
type Parser struct {
	categorizer *Categorizer
	header      HeaderMode
	csv         *CSVParser
	segmenter   *Segmenter
	pdf         PDFTextExtractor
	extractor   TransactionExtractor
	logger      *zap.Logger
}

type Option func(*Parser)

func WithCategorizer(c *Categorizer) Option {
	return func(p *Parser) { p.categorizer = c }
}

func WithHeaderMode(m HeaderMode) Option {
	return func(p *Parser) { p.header = m }
}

func WithPDFTextExtractor(x PDFTextExtractor) Option {
	return func(p *Parser) { p.pdf = x }
}

// WithTransactionExtractor sets the fallback used when a PDF does not
// segment.
func WithTransactionExtractor(x TransactionExtractor) Option {
	return func(p *Parser) { p.extractor = x }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

func New(opts ...Option) *Parser {
	p := &Parser{header: HeaderAuto}
	for _, opt := range opts {
		opt(p)
	}
	if p.categorizer == nil {
		p.categorizer = NewCategorizer(nil)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.csv = NewCSVParser(p.categorizer, p.header, p.logger)
	p.segmenter = NewSegmenter(p.categorizer)
	return p
}

// Parse dispatches f to the CSV or PDF path.
func (p *Parser) Parse(ctx context.Context, f File) (*Result, error) {
	format, err := DetectFormat(f.Name, f.ContentType)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Parsing statement",
		zap.String("file", f.Name),
		zap.String("format", string(format)),
		zap.Int("size", len(f.Data)),
	)

	switch format {
	case FormatCSV:
		return p.ParseCSV(string(f.Data))
	default:
		return p.ParsePDF(ctx, f.Data)
	}
}

// ParseCSV parses CSV text. Zero usable rows is ErrNoTransactionsFound.
func (p *Parser) ParseCSV(content string) (*Result, error) {
	txs := Normalize(p.csv.Parse(content))
	if len(txs) == 0 {
		return nil, ErrNoTransactionsFound
	}
	return &Result{Transactions: txs, Format: FormatCSV, Method: MethodCSV}, nil
}

// ParsePDF extracts the PDF text and parses it.
func (p *Parser) ParsePDF(ctx context.Context, data []byte) (*Result, error) {
	if p.pdf == nil {
		return nil, fmt.Errorf("%w: no PDF text extractor configured", ErrUnreadableFile)
	}
	text, err := p.pdf.ExtractText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	return p.ParsePDFText(ctx, text)
}

// ParsePDFText segments text and falls back to the AI extractor when the
// segmenter finds nothing.
func (p *Parser) ParsePDFText(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: PDF has no text layer", ErrNoTransactionsFound)
	}

	if txs := Normalize(p.segmenter.Segment(text)); len(txs) > 0 {
		return &Result{Transactions: txs, Format: FormatPDF, Method: MethodPDFHeuristic}, nil
	}

	p.logger.Info("Heuristic segmentation found no transactions, using AI extraction",
		zap.Int("text_length", len(text)),
	)
	if p.extractor == nil {
		return nil, ErrConfiguration
	}

	extracted, err := p.extractor.ExtractTransactions(ctx, text)
	if err != nil {
		return nil, err
	}
	for i, tx := range extracted {
		if tx.Category == "" || strings.EqualFold(tx.Category, CategoryUncategorized) {
			extracted[i] = p.categorizer.Categorize(tx)
		}
	}

	txs := Normalize(extracted)
	if len(txs) == 0 {
		return nil, ErrNoTransactionsFound
	}
	return &Result{Transactions: txs, Format: FormatPDF, Method: MethodPDFAI}, nil
}
