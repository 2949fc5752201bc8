package handlers

import (
	"context"
	"time"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SummaryService interface {
	MonthlySummary(ctx context.Context, userID uuid.UUID, month time.Time) (*dto.SummaryResponse, error)
}

type SummaryHandler struct {
	summaryService SummaryService
	logger         *zap.Logger
	now            func() time.Time
}

func NewSummaryHandler(summaryService SummaryService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		logger:         logger,
		now:            time.Now,
	}
}

// GetSummary godoc
// @Summary Monthly financial summary
// @Description Income, expenses, savings and savings rate for one month
// @Tags summary
// @Produce json
// @Param month query string false "Month (YYYY-MM), defaults to the current month"
// @Security Bearer
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/summary [get]
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	month, err := service.ParseMonth(c.Query("month"), h.now().UTC())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	summary, err := h.summaryService.MonthlySummary(c.Context(), userID, month)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to compute summary")
	}

	return c.JSON(summary)
}
