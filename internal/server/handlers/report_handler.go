package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

// ReportService is the nutrition report API consumed by the handlers.
type ReportService interface {
	FeedingSummary(ctx context.Context, userID, period, species string) ([]models.FeedingReport, error)
	GrowthSeries(ctx context.Context, userID, period, species string) ([]models.GrowthData, error)
	HealthSummary(ctx context.Context, userID string) (models.HealthSummary, error)
	ExportFeedingSummary(ctx context.Context, userID, period, species string) ([]models.FeedingReport, error)
}

// ReportHandler exposes nutrition reports.
type ReportHandler struct {
	svc    ReportService
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

func reportQuery(c *gin.Context) (period, species string) {
	return reporting.NormalizePeriod(c.Query("period")), c.DefaultQuery("species", reporting.AllSpecies)
}

func (h *ReportHandler) Feeding(c *gin.Context) {
	period, species := reportQuery(c)
	reports, err := h.svc.FeedingSummary(c.Request.Context(), userID(c), period, species)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "reports": reports})
}

func (h *ReportHandler) Growth(c *gin.Context) {
	period, species := reportQuery(c)
	series, err := h.svc.GrowthSeries(c.Request.Context(), userID(c), period, species)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "animals": series})
}

func (h *ReportHandler) Health(c *gin.Context) {
	summary, err := h.svc.HealthSummary(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportFeeding appends the feeding summary to the report spreadsheet.
func (h *ReportHandler) ExportFeeding(c *gin.Context) {
	period, species := reportQuery(c)
	reports, err := h.svc.ExportFeedingSummary(c.Request.Context(), userID(c), period, species)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"period": period, "exported_rows": len(reports)})
}
