package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/server/handlers"
)

// Handlers groups the HTTP handler adapters mounted by New. A nil Webhook
// leaves the WhatsApp routes unmounted.
type Handlers struct {
	Feeding  *handlers.FeedingHandler
	Registry *handlers.RegistryHandler
	Reports  *handlers.ReportHandler
	Webhook  *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	api := r.Group("/api", handlers.RequireUser())

	animals := api.Group("/animals")
	animals.POST("", h.Registry.CreateAnimal)
	animals.GET("", h.Registry.ListAnimals)
	animals.GET("/:id", h.Registry.GetAnimal)
	animals.PATCH("/:id", h.Registry.UpdateAnimal)
	animals.DELETE("/:id", h.Registry.DeleteAnimal)
	animals.POST("/:id/weights", h.Registry.AddWeight)

	schedules := api.Group("/schedules")
	schedules.POST("", h.Feeding.CreateSchedule)
	schedules.GET("", h.Feeding.ListSchedules)
	schedules.GET("/due", h.Feeding.Due)
	schedules.GET("/:id", h.Feeding.GetSchedule)
	schedules.PATCH("/:id", h.Feeding.UpdateSchedule)
	schedules.DELETE("/:id", h.Feeding.DeleteSchedule)

	records := api.Group("/records")
	records.POST("", h.Feeding.RecordFeeding)
	records.GET("", h.Feeding.ListRecords)

	vaccinations := api.Group("/vaccinations")
	vaccinations.POST("", h.Registry.CreateVaccination)
	vaccinations.GET("", h.Registry.ListVaccinations)
	vaccinations.PATCH("/:id", h.Registry.UpdateVaccination)
	vaccinations.POST("/:id/complete", h.Registry.CompleteVaccination)
	vaccinations.DELETE("/:id", h.Registry.DeleteVaccination)

	api.GET("/profile", h.Registry.GetProfile)
	api.PUT("/profile", h.Registry.SaveProfile)

	reports := api.Group("/reports")
	reports.GET("/feeding", h.Reports.Feeding)
	reports.GET("/growth", h.Reports.Growth)
	reports.GET("/health", h.Reports.Health)
	reports.POST("/feeding/export", h.Reports.ExportFeeding)

	if h.Webhook != nil {
		api.POST("/messages", h.Webhook.SendMessage)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_id", c.GetString("user_id")))
	}
}
