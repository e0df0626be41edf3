// api/routes/router.go
package routes

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "mergington/docs"
	"mergington/internal/activities"
	"mergington/internal/notifications"
	"mergington/internal/shared/config"
	"mergington/internal/shared/database"
	"mergington/pkg/logger"
	"mergington/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const indexPage = "/static/index.html"

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	logger    *logger.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		logger:    log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(ctx context.Context, engine *gin.Engine) error {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Frontend entry point and API docs
	r.setupFrontendRoutes(engine)

	// Activity registry
	return r.setupActivityRoutes(ctx, engine)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "mergington-activities",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "mergington-activities",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"backend":     r.config.Registry.Backend,
			"timestamp":   time.Now(),
		})
	})

	engine.GET("/metrics", metrics.Handler())
}

// setupFrontendRoutes redirects / to the static index page and serves docs
func (r *Router) setupFrontendRoutes(engine *gin.Engine) {
	engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, indexPage)
	})

	if info, err := os.Stat(r.config.StaticDir); err == nil && info.IsDir() {
		engine.Static("/static", r.config.StaticDir)
	} else {
		r.logger.Warn("Static directory not found, frontend disabled", "dir", r.config.StaticDir)
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// setupActivityRoutes configures the activity registry routes
func (r *Router) setupActivityRoutes(ctx context.Context, engine *gin.Engine) error {
	repo, err := r.newActivityRepository(ctx)
	if err != nil {
		return err
	}

	activityService := activities.NewService(repo,
		activities.WithLogger(r.logger),
		activities.WithPublisher(r.publisher),
		activities.WithCapacityEnforcement(r.config.Registry.EnforceCapacity),
	)
	activityController := activities.NewController(activityService, r.logger)

	activities.SetupActivityRoutes(engine, activityController)
	return nil
}

// newActivityRepository builds the configured backend and loads the seed into it
func (r *Router) newActivityRepository(ctx context.Context) (activities.Repository, error) {
	seed := activities.SeedActivities()

	switch r.config.Registry.Backend {
	case config.BackendMemory:
		r.logger.LogRegistrySeeded(ctx, config.BackendMemory, len(seed))
		return activities.NewMemoryRepository(seed), nil

	case config.BackendRedis:
		client := r.db.GetRedis()
		if client == nil {
			return nil, fmt.Errorf("redis backend selected but no Redis connection is available")
		}
		if err := activities.PreloadScripts(ctx, client); err != nil {
			r.logger.ErrorWithContext(ctx, "Failed to preload Redis Lua scripts", err, nil)
		}

		repo := activities.NewRedisRepository(client)
		if err := repo.Reset(ctx, seed); err != nil {
			return nil, fmt.Errorf("failed to seed Redis registry: %w", err)
		}
		r.logger.LogRegistrySeeded(ctx, config.BackendRedis, len(seed))
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown registry backend %q", r.config.Registry.Backend)
	}
}
