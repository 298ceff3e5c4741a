package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/phishguard/awareness-service/internal/auth"
	"github.com/phishguard/awareness-service/internal/cache"
	"github.com/phishguard/awareness-service/internal/config"
	"github.com/phishguard/awareness-service/internal/handlers"
	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories/postgres"
	"github.com/phishguard/awareness-service/internal/services"
	"github.com/phishguard/awareness-service/internal/utils"
	"github.com/phishguard/awareness-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	var logger utils.Logger
	if cfg.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	err = db.AutoMigrate(
		&models.Department{},
		&models.Profile{},
		&models.Quiz{},
		&models.QuizAttempt{},
		&models.Template{},
		&models.Campaign{},
		&models.CampaignRecipient{},
		&models.SimEvent{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		log.Fatal("Failed to create event publisher:", err)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()
	cacheService := cache.NewRedisCache(redisClient, slogger)

	authService := auth.NewService(repo.Profile(), redisClient, cfg.JWTSecret, cfg.SessionTTL, slogger)

	handlerManager := handlers.NewHandlerManager(handlers.Services{
		Auth:      authService,
		Quiz:      services.NewQuizService(repo, publisher, slogger, validator),
		Template:  services.NewTemplateService(repo, slogger, validator),
		Campaign:  services.NewCampaignService(repo, publisher, slogger, validator),
		Profile:   services.NewProfileService(repo, slogger, validator),
		Event:     services.NewEventService(repo, publisher, slogger, validator),
		Dashboard: services.NewDashboardService(repo, cacheService, slogger),
		Report:    services.NewReportService(repo, slogger),
	}, validator, logger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager.SetupRoutes(router)

	logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
