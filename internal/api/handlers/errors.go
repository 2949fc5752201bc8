package handlers

import (
	"errors"

	"statement-ingest/internal/parser"
	"statement-ingest/internal/service"
	"statement-ingest/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	var svcErr *parser.ServiceError
	switch {
	case errors.Is(err, parser.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, parser.ErrNoTransactionsFound), errors.Is(err, parser.ErrUnreadableFile):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrAIResponseUnparseable), errors.Is(err, parser.ErrEmptyResponse), errors.As(err, &svcErr):
		return fiber.StatusBadGateway
	case errors.Is(err, parser.ErrConfiguration):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, service.ErrStatementNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal errors are logged
// and replaced by fallback so storage details do not leak.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		return c.Status(status).JSON(fiber.Map{
			"error": fallback,
		})
	}

	logger.Warn(fallback, zap.Int("status", status), zap.Error(err))
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals(middleware.LocalUserID).(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
