package main

import (
	"context"
	"log"
	"time"

	"github.com/basedrum/basedrum-api/internal/api"
	"github.com/basedrum/basedrum-api/internal/config"
	"github.com/basedrum/basedrum-api/internal/database"
	"github.com/basedrum/basedrum-api/internal/metrics"
	"github.com/basedrum/basedrum-api/internal/observability"
	"github.com/basedrum/basedrum-api/internal/producer"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "basedrum-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	// Persistence is optional: no DATABASE_URL means the API runs
	// stateless and song storage endpoints report unavailable.
	var db *gorm.DB
	if cfg.HasPersistence() {
		var err error
		db, err = database.Connect(cfg.DatabaseURL, cfg.Environment)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database: ", err)
		}
		if err := database.Migrate(db); err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to run migrations: ", err)
		}
	} else {
		log.Println("DATABASE_URL not set, running without persistence")
	}

	cwMetrics, err := metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled)
	if err != nil {
		log.Printf("CloudWatch metrics disabled: %v", err)
	}

	langfuse := observability.NewLangfuse(ctx, cfg)
	factory := producer.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	prod := producer.New(factory, cwMetrics, langfuse)

	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(cfg, api.Deps{
		DB:       db,
		Metrics:  cwMetrics,
		Producer: prod,
	}, releaseVersion)

	log.Printf("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server: ", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
