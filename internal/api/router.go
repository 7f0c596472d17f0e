package api

import (
	"github.com/basedrum/basedrum-api/internal/api/handlers"
	apimiddleware "github.com/basedrum/basedrum-api/internal/api/middleware"
	"github.com/basedrum/basedrum-api/internal/config"
	"github.com/basedrum/basedrum-api/internal/metrics"
	"github.com/basedrum/basedrum-api/internal/producer"
	"github.com/basedrum/basedrum-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps bundles the shared components the router hands to handlers.
type Deps struct {
	DB       *gorm.DB
	Metrics  *metrics.Client
	Producer *producer.Producer
}

func SetupRouter(cfg *config.Config, deps Deps, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())
	router.Use(apimiddleware.SentryMiddleware())
	router.Use(apimiddleware.RequestTracking(deps.Metrics))
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB, version)
	router.GET("/health", healthHandler.HealthCheck)

	songsService := services.NewSongsService(deps.DB)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		generateHandler := handlers.NewGenerateHandler(cfg, songsService, deps.Metrics)
		v1.POST("/songs/generate", generateHandler.Generate)

		expandHandler := handlers.NewExpandHandler(deps.Producer, songsService)
		v1.POST("/songs/expand", expandHandler.Expand)

		v1.POST("/songs/validate", handlers.Validate)

		songsHandler := handlers.NewSongsHandler(songsService)
		v1.POST("/songs", songsHandler.Create)
		v1.GET("/songs", songsHandler.List)
		v1.GET("/songs/:id", songsHandler.Get)
		v1.DELETE("/songs/:id", songsHandler.Delete)
	}

	return router
}

func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.IsGatewayMode() {
		return apimiddleware.GatewayAuth()
	}
	if cfg.AuthMode == "jwt" {
		return apimiddleware.JWTAuth(cfg)
	}
	return apimiddleware.NoAuth()
}
