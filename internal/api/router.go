package api

import (
	"errors"
	"time"

	"statement-ingest/docs"
	"statement-ingest/internal/api/handlers"
	"statement-ingest/pkg/auth"
	"statement-ingest/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	BodyLimitMB  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRouter(
	statementHandler *handlers.StatementHandler,
	summaryHandler *handlers.SummaryHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
	cfg RouterConfig,
) *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if cfg.BodyLimitMB > 0 {
		bodyLimit = cfg.BodyLimitMB << 20
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.RequestLogger(appLogger))

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	statements := protected.Group("/statements")
	statements.Post("/parse", statementHandler.ParseStatement)
	statements.Post("/upload", statementHandler.UploadStatement)
	statements.Get("", statementHandler.ListStatements)
	statements.Post("/:id/process", statementHandler.ProcessStatement)
	statements.Get("/:id/transactions", statementHandler.GetStatementTransactions)

	protected.Get("/transactions", statementHandler.ListTransactions)
	protected.Get("/summary", summaryHandler.GetSummary)

	return app
}
