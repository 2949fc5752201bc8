package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"statement-ingest/internal/api"
	"statement-ingest/internal/api/handlers"
	"statement-ingest/internal/filestore"
	"statement-ingest/internal/repository"
	"statement-ingest/internal/service"
	"statement-ingest/pkg/auth"
	"statement-ingest/pkg/config"
	"statement-ingest/pkg/logger"
	"statement-ingest/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// @title Statement Ingest API
// @version 1.0
// @description Bank statement ingestion: CSV and PDF transaction extraction, categorization and monthly summaries
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for the given user id and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)

	if *issueToken != "" {
		if err := printToken(jwtManager, *issueToken); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting statement ingest service",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("pdf_extractor", cfg.Parser.PDFExtractor),
		zap.String("storage", cfg.Storage.Backend),
	)

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		appLogger.Fatal("Failed to apply database schema", zap.Error(err))
	}

	// Initialize repositories
	statementRepo := repository.NewStatementRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	files, err := filestore.New(ctx, &cfg.Storage, logger.Named("filestore"))
	if err != nil {
		appLogger.Fatal("Failed to initialize file storage", zap.Error(err))
	}
	defer files.Close()

	// Initialize services
	completer, err := service.NewCompleter(&cfg.LLM, logger.Named("llm"))
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}
	if closer, ok := completer.(io.Closer); ok {
		defer closer.Close()
	}

	statementParser, err := service.NewStatementParser(cfg, completer, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize statement parser", zap.Error(err))
	}

	statementService := service.NewStatementService(statementRepo, txRepo, files, statementParser, logger.Named("statements"))
	summaryService := service.NewSummaryService(txRepo, logger.Named("summary"))

	// Initialize handlers
	statementHandler := handlers.NewStatementHandler(statementService, appLogger)
	summaryHandler := handlers.NewSummaryHandler(summaryService, appLogger)

	// Setup router
	app := api.SetupRouter(statementHandler, summaryHandler, jwtManager, appLogger, api.RouterConfig{
		BodyLimitMB:  cfg.Server.BodyLimitMB,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

func printToken(jwtManager *auth.JWTManager, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return fmt.Errorf("user id must be a UUID: %w", err)
	}
	token, err := jwtManager.GenerateToken(userID, "", "")
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
