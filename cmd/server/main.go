package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/cache"
	"github.com/quimo/inventario/internal/config"
	"github.com/quimo/inventario/internal/repository/mongodb"
	"github.com/quimo/inventario/internal/repository/sheets"
	"github.com/quimo/inventario/internal/repository/sqlite"
	"github.com/quimo/inventario/internal/scheduler"
	"github.com/quimo/inventario/internal/server/handlers"
	"github.com/quimo/inventario/internal/server/router"
	commandsvc "github.com/quimo/inventario/internal/service/commands"
	inventorysvc "github.com/quimo/inventario/internal/service/inventory"
	reportingsvc "github.com/quimo/inventario/internal/service/reporting"
	whatsappsvc "github.com/quimo/inventario/internal/service/whatsapp"
	whatsappclient "github.com/quimo/inventario/pkg/clients/whatsapp"
	"github.com/quimo/inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.Open(ctx, cfg.Database.Path, baseLogger.Named("repo.sqlite"))
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			baseLogger.Error("failed to close database", zap.Error(err))
		}
	}()
	prepareSchema(ctx, cfg.Database, repo, baseLogger.Named("migrate"))

	var reportCache cache.Cache = cache.Nop{}
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "quimo", baseLogger.Named("cache"))
		if err != nil {
			baseLogger.Fatal("failed to init report cache", zap.Error(err))
		}
		defer func() { _ = redisCache.Close() }()
		reportCache = redisCache
	} else {
		baseLogger.Warn("REDIS_ADDR not set, report cache disabled")
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	reportOpts := reportingsvc.Options{
		Cache:        reportCache,
		CacheTTL:     cfg.Reporting.CacheTTL,
		SummaryRange: cfg.Sheets.SummaryRange,
		Location:     loc,
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportOpts.Sheets = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, summary sync disabled")
	}

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		reportOpts.Archive = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI not set, report archive disabled")
	}

	inventorySvc := inventorysvc.NewService(repo, reportCache, baseLogger.Named("svc.inventory"))
	reportingSvc := reportingsvc.NewService(repo, reportOpts, baseLogger.Named("svc.reporting"))
	commandDispatcher := commandsvc.NewService(inventorySvc, reportingSvc, baseLogger.Named("svc.commands"))

	h := router.Handlers{
		Inventory: handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory")),
	}
	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		h.Reports = handlers.NewReportHandler(reportingSvc, messagingSvc, baseLogger.Named("handlers.reports"))
		notifier = messagingSvc
	} else {
		baseLogger.Warn("whatsapp not configured, webhook and notifications disabled")
		h.Reports = handlers.NewReportHandler(reportingSvc, nil, baseLogger.Named("handlers.reports"))
	}

	gin.SetMode(gin.ReleaseMode)
	engine, err := router.New(h, router.Options{RateLimit: cfg.Server.RateLimit}, baseLogger.Named("router"))
	if err != nil {
		baseLogger.Fatal("failed to build router", zap.Error(err))
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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

// prepareSchema upgrades legacy production tables when auto-migration is on,
// and otherwise only warns that registering production will fail.
func prepareSchema(ctx context.Context, cfg config.DatabaseConfig, repo *sqlite.Repository, log *zap.Logger) {
	m := sqlite.NewMigrator(repo, nil)
	if cfg.AutoMigrate {
		if err := m.AddProductionColumns(ctx); err != nil {
			log.Fatal("failed to add production columns", zap.Error(err))
		}
		if _, err := m.RebuildProductionTable(ctx); err != nil {
			log.Fatal("failed to rebuild production table", zap.Error(err))
		}
		return
	}

	ok, err := m.HasProductionUniqueKey(ctx)
	if err != nil {
		log.Error("failed to inspect production table", zap.Error(err))
		return
	}
	if !ok {
		log.Warn("produccion lacks UNIQUE(fecha, producto_id); run `migrate all` before registering production")
	}
}
