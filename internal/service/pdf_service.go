package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"statement-ingest/internal/parser"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// maxPlainTextBytes caps how much text the pure-Go reader may return.
const maxPlainTextBytes = 4 << 20

// NewPDFExtractor returns the text extractor named by kind: "fitz" (MuPDF,
// default) or "plain" (pure Go).
func NewPDFExtractor(kind string, logger *zap.Logger) (parser.PDFTextExtractor, error) {
	switch kind {
	case "", "fitz":
		return NewFitzExtractor(logger), nil
	case "plain":
		return NewPlainExtractor(logger), nil
	default:
		return nil, fmt.Errorf("unknown PDF extractor %q", kind)
	}
}

// FitzExtractor reads the text layer of a PDF with go-fitz.
type FitzExtractor struct {
	logger *zap.Logger
}

func NewFitzExtractor(logger *zap.Logger) *FitzExtractor {
	return &FitzExtractor{logger: logger}
}

// ExtractText concatenates the text of every page. A PDF without a text
// layer yields an empty string and no error.
func (e *FitzExtractor) ExtractText(_ context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	e.logger.Info("PDF text extracted using go-fitz",
		zap.Int("pages", doc.NumPage()),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

// PlainExtractor reads PDF text with ledongthuc/pdf. It needs no cgo.
type PlainExtractor struct {
	logger *zap.Logger
}

func NewPlainExtractor(logger *zap.Logger) *PlainExtractor {
	return &PlainExtractor{logger: logger}
}

// ExtractText returns the plain text of the document. Panics inside the
// PDF library are turned into errors.
func (e *PlainExtractor) ExtractText(_ context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Recovered from panic while reading PDF", zap.Any("panic", r))
			text, err = "", fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF reader: %w", err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract plain text: %w", err)
	}

	raw, err := io.ReadAll(io.LimitReader(plainText, maxPlainTextBytes))
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}

	text = strings.TrimSpace(string(raw))
	e.logger.Info("PDF text extracted using plain reader",
		zap.Int("pages", reader.NumPage()),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}
