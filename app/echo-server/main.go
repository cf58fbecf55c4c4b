package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"recohub/app/echo-server/router"
	"recohub/business/catalog"
	"recohub/business/event"
	"recohub/business/experiment"
	"recohub/business/recommendation"
	"recohub/business/tenant"
	"recohub/domain"
	"recohub/internal/middleware"
	psqlRepo "recohub/internal/repository/postgres"
	redisRepo "recohub/internal/repository/redis"
	"recohub/internal/rest"
	"recohub/pkg/config"
	"recohub/pkg/database"
	redisdb "recohub/pkg/database/redis"
	"recohub/pkg/logger"
	"recohub/pkg/metrics"
	"recohub/pkg/utils"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Recohub", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	if err := db.AutoMigrate(
		&domain.Tenant{},
		&domain.Event{},
		&domain.CatalogItem{},
		&domain.Experiment{},
		&domain.ExperimentResult{},
	); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Init validate
	validate := validator.New()

	// Init repo
	eventRepo := psqlRepo.NewEventRepository(db)
	catalogRepo := psqlRepo.NewCatalogRepository(db)
	experimentRepo := psqlRepo.NewExperimentRepository(db)
	tenantRepo := psqlRepo.NewTenantRepository(db)

	// Result cache is optional: without Redis every lookup is a miss and
	// strategies run fresh on each request.
	var resultCache recommendation.ResultCache
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisdb.CloseRedisClient(redisClient)

		resultCache = redisRepo.NewResultCacheRepository(redisClient)
		logger.Info("Redis connected successfully")
	} else {
		logger.Warn("Redis disabled, running without result cache")
	}

	// Init service
	registry := recommendation.NewRegistry(
		recommendation.NewTrendingStrategy(eventRepo, catalogRepo),
		recommendation.NewCollaborativeStrategy(eventRepo, catalogRepo),
		recommendation.NewContentStrategy(eventRepo, catalogRepo),
		recommendation.NewFBTStrategy(eventRepo, catalogRepo),
	)
	recommendationService := recommendation.NewService(eventRepo, catalogRepo, tenantRepo, experimentRepo, resultCache, registry)
	experimentService := experiment.NewService(experimentRepo, experimentRepo, validate)
	eventService := event.NewService(eventRepo)
	catalogService := catalog.NewService(catalogRepo)
	tenantService := tenant.NewService(tenantRepo)

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(recommendationService)
	experimentHandler := rest.NewExperimentHandler(experimentService)
	eventHandler := rest.NewEventHandler(eventService)
	catalogHandler := rest.NewCatalogHandler(catalogService)
	tenantHandler := rest.NewTenantHandler(tenantService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	// Auth middleware
	tenantAuth := middleware.APIKeyAuth(tenantRepo)
	adminOnly := middleware.AdminAuth()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recommendationHandler, tenantAuth)
	router.SetEventRoutes(api, eventHandler, tenantAuth)
	router.SetCatalogRoutes(api, catalogHandler, tenantAuth)
	router.SetExperimentRoutes(api, experimentHandler, adminOnly)
	router.SetTenantRoutes(api, tenantHandler, adminOnly)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
