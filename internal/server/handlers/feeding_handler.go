package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/feeding"
)

// FeedingService is the feeding schedule API consumed by the handlers.
type FeedingService interface {
	CreateSchedule(ctx context.Context, userID string, in models.ScheduleInput) (models.FeedingSchedule, error)
	UpdateSchedule(ctx context.Context, userID, id string, patch models.SchedulePatch) (models.FeedingSchedule, error)
	DeleteSchedule(ctx context.Context, userID, id string) error
	GetSchedule(ctx context.Context, userID, id string) (models.FeedingSchedule, error)
	ListSchedules(ctx context.Context, userID string) ([]models.FeedingSchedule, error)
	RecordFeeding(ctx context.Context, userID string, in models.FeedingInput) (feeding.RecordResult, error)
	ListRecords(ctx context.Context, userID string, limit int) ([]models.FeedingRecord, error)
	DueFeedings(ctx context.Context, userID string) (models.DueFeedings, error)
}

// FeedingHandler exposes feeding schedules and records over HTTP.
type FeedingHandler struct {
	svc    FeedingService
	logger *zap.Logger
}

// NewFeedingHandler constructs the HTTP handler adapter.
func NewFeedingHandler(svc FeedingService, logger *zap.Logger) *FeedingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedingHandler{svc: svc, logger: logger}
}

func (h *FeedingHandler) CreateSchedule(c *gin.Context) {
	var in models.ScheduleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	schedule, err := h.svc.CreateSchedule(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

func (h *FeedingHandler) ListSchedules(c *gin.Context) {
	list, err := h.svc.ListSchedules(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FeedingHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.svc.GetSchedule(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *FeedingHandler) UpdateSchedule(c *gin.Context) {
	var patch models.SchedulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	schedule, err := h.svc.UpdateSchedule(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *FeedingHandler) DeleteSchedule(c *gin.Context) {
	if err := h.svc.DeleteSchedule(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Due lists the upcoming and overdue feedings of the user.
func (h *FeedingHandler) Due(c *gin.Context) {
	due, err := h.svc.DueFeedings(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, due)
}

func (h *FeedingHandler) RecordFeeding(c *gin.Context) {
	var in models.FeedingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	result, err := h.svc.RecordFeeding(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListRecords accepts an optional limit query parameter.
func (h *FeedingHandler) ListRecords(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer", "field": "limit"})
			return
		}
		limit = n
	}

	list, err := h.svc.ListRecords(c.Request.Context(), userID(c), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
