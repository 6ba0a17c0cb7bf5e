package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
	"github.com/mamadbah2/herdbook/internal/repository/mongodb"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
	"github.com/mamadbah2/herdbook/internal/scheduler"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/server/router"
	commandsvc "github.com/mamadbah2/herdbook/internal/service/commands"
	feedingsvc "github.com/mamadbah2/herdbook/internal/service/feeding"
	registrysvc "github.com/mamadbah2/herdbook/internal/service/registry"
	reportingsvc "github.com/mamadbah2/herdbook/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/herdbook/internal/service/whatsapp"
	"github.com/mamadbah2/herdbook/pkg/clients/calculator"
	whatsappclient "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
	"github.com/mamadbah2/herdbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, closeStore := openStore(cfg.Storage, baseLogger)
	defer closeStore()

	var remote calculator.Client
	if cfg.Calculator.Enabled() {
		remote = calculator.NewClient(cfg.Calculator)
		baseLogger.Info("remote feeding calculator enabled", zap.String("base_url", cfg.Calculator.BaseURL))
	} else {
		baseLogger.Warn("remote feeding calculator not configured, local engine is authoritative")
	}

	loc := cfg.Reminders.Location()
	resolver := feedingsvc.NewResolver(remote, logger.Named(baseLogger, "svc.resolver"))
	feedingService := feedingsvc.NewService(store, store, store, resolver, loc, logger.Named(baseLogger, "svc.feeding"))
	registryService := registrysvc.NewService(store, logger.Named(baseLogger, "svc.registry"))

	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		sheetExporter, err := sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetExporter
	} else {
		baseLogger.Warn("google sheets not configured, report export disabled")
	}
	reportingService := reportingsvc.NewService(store, exporter, logger.Named(baseLogger, "svc.reporting"))

	h := router.Handlers{
		Feeding:  handlers.NewFeedingHandler(feedingService, logger.Named(baseLogger, "handlers.feeding")),
		Registry: handlers.NewRegistryHandler(registryService, logger.Named(baseLogger, "handlers.registry")),
		Reports:  handlers.NewReportHandler(reportingService, logger.Named(baseLogger, "handlers.reports")),
	}

	var notifier scheduler.Notifier = scheduler.LogNotifier{Logger: logger.Named(baseLogger, "notifier")}
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(feedingService, store, loc, logger.Named(baseLogger, "svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, logger.Named(baseLogger, "svc.whatsapp"))
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp not configured, reminders are only logged")
	}

	engine := router.New(h, logger.Named(baseLogger, "router"))

	cronRunner := scheduler.NewCron(cfg.Reminders)
	reminders := scheduler.NewReminders(cronRunner, notifier, logger.Named(baseLogger, "reminders"))
	sched := scheduler.NewScheduler(cronRunner, cfg.Reminders, reminders, store, logger.Named(baseLogger, "scheduler"))
	feedingService.OnScheduleRemoved(sched.CancelFeedingReminder)
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(cfg config.StorageConfig, baseLogger *zap.Logger) (repository.Store, func()) {
	if cfg.Driver == config.StorageMemory {
		baseLogger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoStore, err := mongodb.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}

	return mongoStore, func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}
}
