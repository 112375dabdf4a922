package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/quimo/inventario/internal/server/handlers"
)

// Handlers groups the HTTP adapters. Webhook may be nil when WhatsApp is not configured.
type Handlers struct {
	Inventory *handlers.InventoryHandler
	Reports   *handlers.ReportHandler
	Webhook   *handlers.WebhookHandler
}

// Options tunes middleware.
type Options struct {
	// RateLimit is a ulule/limiter formatted rate such as "300-M". Empty disables limiting.
	RateLimit string
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, opts Options, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	if opts.RateLimit != "" {
		rate, err := limiter.NewRateFromFormatted(opts.RateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(mgin.NewMiddleware(limiter.New(memory.NewStore(), rate)))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		catalog := api.Group("/catalog")
		catalog.GET("/:kind", h.Inventory.ListCatalog)
		catalog.GET("/:kind/:id", h.Inventory.GetCatalogItem)
		catalog.PATCH("/:kind/:id", h.Inventory.UpdateStock)

		api.GET("/suppliers", h.Inventory.ListSuppliers)
		api.POST("/suppliers", h.Inventory.CreateSupplier)
		api.POST("/products", h.Inventory.CreateProduct)
		api.POST("/raw-materials", h.Inventory.CreateRawMaterial)
		api.POST("/resale-products", h.Inventory.CreateResaleProduct)
		api.GET("/products/:id/recipe", h.Inventory.GetRecipe)
		api.PUT("/products/:id/recipe", h.Inventory.ReplaceRecipe)

		production := api.Group("/production")
		production.POST("", h.Inventory.RegisterProduction)
		production.GET("/weekly", h.Reports.WeeklyProduction)
		production.GET("/weekly/costs", h.Reports.MaterialCosts)
		production.GET("/weekly/export", h.Reports.ExportWeekly)

		reports := api.Group("/reports")
		reports.GET("/period", h.Reports.PeriodSummary)
		reports.POST("/period/sync", h.Reports.SyncPeriod)
		reports.POST("/period/archive", h.Reports.ArchivePeriod)
		reports.GET("/archive", h.Reports.ArchivedReports)
		reports.POST("/weekly/send", h.Reports.SendWeekly)
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/send-message", h.Webhook.SendMessage)
	} else {
		logger.Info("whatsapp routes disabled")
	}

	logger.Info("router initialized")
	return r, nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
