package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/parser"
	"statement-ingest/internal/service"
	"statement-ingest/pkg/config"
	"statement-ingest/pkg/logger"

	"go.uber.org/zap"
)

// parse-statement prints the transactions found in one statement file as
// JSON. Nothing is stored.
func main() {
	filePath := flag.String("file", "", "path to a .csv or .pdf statement")
	header := flag.String("header", "", "CSV header handling: auto, present or absent (default from CSV_HEADER_MODE)")
	noAI := flag.Bool("no-ai", false, "disable the AI fallback for PDFs")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *header != "" {
		cfg.Parser.CSVHeaderMode = *header
	}

	// Logs go to stderr so stdout stays valid JSON.
	appLogger, err := logger.New(cfg.Logger.Level, "console")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	var completer parser.Completer
	if !*noAI {
		completer, err = service.NewCompleter(&cfg.LLM, appLogger.Named("llm"))
		if err != nil {
			appLogger.Fatal("Failed to initialize LLM client", zap.Error(err))
		}
		if closer, ok := completer.(io.Closer); ok {
			defer closer.Close()
		}
	}

	p, err := service.NewStatementParser(cfg, completer, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize statement parser", zap.Error(err))
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		appLogger.Fatal("Failed to read statement", zap.String("file", *filePath), zap.Error(err))
	}

	result, err := p.Parse(context.Background(), parser.File{
		Name: filepath.Base(*filePath),
		Data: data,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	out := dto.ParseStatementResponse{
		FileName:     filepath.Base(*filePath),
		Format:       string(result.Format),
		Method:       string(result.Method),
		Count:        len(result.Transactions),
		Transactions: make([]dto.TransactionResponse, len(result.Transactions)),
	}
	for i, tx := range result.Transactions {
		out.Transactions[i] = dto.NewParsedTransactionResponse(tx)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		appLogger.Fatal("Failed to write output", zap.Error(err))
	}
}
