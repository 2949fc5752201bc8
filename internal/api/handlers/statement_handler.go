package handlers

import (
	"context"
	"io"
	"time"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/parser"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type StatementService interface {
	Parse(ctx context.Context, file parser.File) (*dto.ParseStatementResponse, error)
	Upload(ctx context.Context, userID uuid.UUID, fileName, contentType string, file io.Reader) (*dto.StatementResponse, error)
	Process(ctx context.Context, userID, statementID uuid.UUID) (*dto.ProcessStatementResponse, error)
	ListStatements(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.StatementResponse, error)
	GetStatementTransactions(ctx context.Context, userID, statementID uuid.UUID) (*dto.ListTransactionsResponse, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, from, to time.Time) (*dto.ListTransactionsResponse, error)
}

type StatementHandler struct {
	statementService StatementService
	logger           *zap.Logger
}

func NewStatementHandler(statementService StatementService, logger *zap.Logger) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
		logger:           logger,
	}
}

// ParseStatement godoc
// @Summary Parse a statement without saving it
// @Description Extract and categorize transactions from a CSV or PDF bank statement. Nothing is persisted.
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement file (.csv or .pdf)"
// @Security Bearer
// @Success 200 {object} dto.ParseStatementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 415 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/statements/parse [post]
func (h *StatementHandler) ParseStatement(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	result, err := h.statementService.Parse(c.Context(), parser.File{
		Name:        file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Failed to parse statement")
	}

	return c.JSON(result)
}

// UploadStatement godoc
// @Summary Upload a bank statement
// @Description Store a CSV or PDF statement for later processing
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement file (.csv or .pdf)"
// @Security Bearer
// @Success 201 {object} dto.StatementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 415 {object} dto.ErrorResponse
// @Router /api/v1/statements/upload [post]
func (h *StatementHandler) UploadStatement(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	st, err := h.statementService.Upload(c.Context(), userID, file.Filename, file.Header.Get(fiber.HeaderContentType), src)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to upload statement")
	}

	return c.Status(fiber.StatusCreated).JSON(st)
}

// ProcessStatement godoc
// @Summary Process an uploaded statement
// @Description Parse the stored file and replace the statement's transactions
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Security Bearer
// @Success 200 {object} dto.ProcessStatementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/statements/{id}/process [post]
func (h *StatementHandler) ProcessStatement(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	statementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid statement ID",
		})
	}

	result, err := h.statementService.Process(c.Context(), userID, statementID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to process statement")
	}

	return c.JSON(result)
}

// ListStatements godoc
// @Summary List user's statements
// @Tags statements
// @Produce json
// @Param limit query int false "Limit" default(10)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.StatementResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/statements [get]
func (h *StatementHandler) ListStatements(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	statements, err := h.statementService.ListStatements(c.Context(), userID, limit, offset)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list statements")
	}

	return c.JSON(statements)
}

// GetStatementTransactions godoc
// @Summary Transactions of a statement
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Security Bearer
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/statements/{id}/transactions [get]
func (h *StatementHandler) GetStatementTransactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	statementID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid statement ID",
		})
	}

	result, err := h.statementService.GetStatementTransactions(c.Context(), userID, statementID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}

	return c.JSON(result)
}

// ListTransactions godoc
// @Summary List user's transactions
// @Description Transactions dated from <= date < to. Either bound may be omitted.
// @Tags transactions
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Day after the last day (YYYY-MM-DD)"
// @Security Bearer
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/transactions [get]
func (h *StatementHandler) ListTransactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	from, err := queryDate(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid from date, expected YYYY-MM-DD",
		})
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid to date, expected YYYY-MM-DD",
		})
	}

	result, err := h.statementService.ListTransactions(c.Context(), userID, from, to)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}

	return c.JSON(result)
}

func queryDate(c *fiber.Ctx, key string) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(dto.DateLayout, v)
}
