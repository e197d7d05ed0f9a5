// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"depot/internal/core/idempotency"
	"depot/internal/domain/registers/stock"
	"depot/internal/infrastructure/http/v1/dto"
	"depot/internal/infrastructure/http/v1/handlers"
	"depot/internal/infrastructure/http/v1/middleware"
	"depot/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Service runs every conversion, repack and transfer operation
	Service *stock.Service

	// Idempotency stores replayable responses; nil disables X-Idempotency-Key handling
	Idempotency idempotency.Store

	// Pinger backs the readiness probe
	Pinger handlers.Pinger

	// Storage names the backend reported by the readiness probe
	Storage string

	// Logger for request logging
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pinger, cfg.Storage)
	router.GET("/health", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	if cfg.Idempotency != nil {
		v1.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerCatalogRoutes(v1, handlers.NewCatalogHandler(base, cfg.Service))
	registerConversionRoutes(v1, handlers.NewConversionHandler(base, cfg.Service))
	registerInventoryRoutes(v1, handlers.NewInventoryHandler(base, cfg.Service))
	registerTransferRoutes(v1, handlers.NewTransferHandler(base, cfg.Service))
	registerSettingsRoutes(v1, handlers.NewSettingsHandler(base, cfg.Service))

	return router, nil
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	rg.GET("/units", h.ListUnits)
	rg.GET("/packaging-types", h.ListPackagingTypes)
}

func registerConversionRoutes(rg *gin.RouterGroup, h *handlers.ConversionHandler) {
	conversion := rg.Group("/conversion")
	{
		conversion.GET("/equivalent", h.Equivalent)
		conversion.GET("/step", h.Step)
	}
}

func registerInventoryRoutes(rg *gin.RouterGroup, h *handlers.InventoryHandler) {
	inventory := rg.Group("/inventory")
	{
		inventory.GET("/lots", h.ListLots)
		inventory.GET("/lots/groups", h.ListGroups)
		inventory.POST("/lots", h.Receive)
		inventory.GET("/lots/:id/status", h.Status)
		inventory.GET("/lots/:id/history", h.History)
		inventory.DELETE("/lots/:id", h.Remove)

		inventory.POST("/repack/validate", h.ValidateRepack)
		inventory.POST("/repack", h.Repack)
	}
}

func registerTransferRoutes(rg *gin.RouterGroup, h *handlers.TransferHandler) {
	transfers := rg.Group("/transfers")
	{
		transfers.POST("/validate", h.Validate)
		transfers.POST("", h.Create)
		transfers.GET("/:id", h.Get)
		transfers.POST("/:id/status", h.ChangeStatus)
	}
}

func registerSettingsRoutes(rg *gin.RouterGroup, h *handlers.SettingsHandler) {
	rg.GET("/settings/inventory", h.GetInventory)
	rg.PUT("/settings/inventory", h.UpdateInventory)
}
