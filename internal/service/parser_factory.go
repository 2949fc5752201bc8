package service

import (
	"fmt"

	"statement-ingest/internal/parser"
	"statement-ingest/pkg/config"

	"go.uber.org/zap"
)

// NewStatementParser builds the statement parser described by cfg. The
// completer backs the AI fallback for PDFs; nil disables it.
func NewStatementParser(cfg *config.Config, completer parser.Completer, logger *zap.Logger) (*parser.Parser, error) {
	var rules []parser.Rule
	if cfg.Parser.CategoryRulesFile != "" {
		loaded, err := parser.LoadRules(cfg.Parser.CategoryRulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load category rules: %w", err)
		}
		rules = loaded
		logger.Info("Loaded category rules",
			zap.String("file", cfg.Parser.CategoryRulesFile),
			zap.Int("rules", len(rules)),
		)
	}

	header, err := parser.ParseHeaderMode(cfg.Parser.CSVHeaderMode)
	if err != nil {
		return nil, err
	}

	pdfExtractor, err := NewPDFExtractor(cfg.Parser.PDFExtractor, logger.Named("pdf"))
	if err != nil {
		return nil, err
	}

	opts := []parser.Option{
		parser.WithCategorizer(parser.NewCategorizer(rules)),
		parser.WithHeaderMode(header),
		parser.WithPDFTextExtractor(pdfExtractor),
		parser.WithLogger(logger.Named("parser")),
	}
	if completer != nil {
		extractor := parser.NewAIExtractor(completer, logger.Named("ai"),
			parser.WithMaxInputChars(cfg.LLM.MaxInputChars),
			parser.WithTemperature(cfg.LLM.Temperature),
		)
		opts = append(opts, parser.WithTransactionExtractor(extractor))
	}

	return parser.New(opts...), nil
}
