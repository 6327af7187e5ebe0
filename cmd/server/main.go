package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightpath/brightpath-backend/internal/aiclient"
	"github.com/brightpath/brightpath-backend/internal/appcheck"
	"github.com/brightpath/brightpath-backend/internal/capabilities"
	"github.com/brightpath/brightpath-backend/internal/clients/redis"
	"github.com/brightpath/brightpath-backend/internal/db"
	"github.com/brightpath/brightpath-backend/internal/handlers"
	"github.com/brightpath/brightpath-backend/internal/logger"
	"github.com/brightpath/brightpath-backend/internal/middleware"
	"github.com/brightpath/brightpath-backend/internal/observability"
	"github.com/brightpath/brightpath-backend/internal/player"
	"github.com/brightpath/brightpath-backend/internal/repos"
	"github.com/brightpath/brightpath-backend/internal/server"
	"github.com/brightpath/brightpath-backend/internal/services"
	"github.com/brightpath/brightpath-backend/internal/sse"
	"github.com/brightpath/brightpath-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	appCheckMode := middleware.ParseAppCheckMode(utils.GetEnv("APP_CHECK_ENFORCEMENT", "off", log))
	appCheckVerifyURL := utils.GetEnv("APP_CHECK_VERIFY_URL", "", log)
	port := utils.GetEnv("PORT", "8080", log)

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "brightpath-backend",
		Environment: logMode,
	})
	defer func() {
		_ = shutdownOtel(context.Background())
	}()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis (optional: verdict + search caches degrade without it)
	cache, err := redis.NewCache(log)
	if err != nil {
		log.Warn("Redis init failed, running without caches", "error", err)
		cache = nil
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	courseModuleRepo := repos.NewCourseModuleRepo(thePG, log)
	learningUnitRepo := repos.NewLearningUnitRepo(thePG, log)
	knowledgeChunkRepo := repos.NewKnowledgeChunkRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Services
	log.Info("Setting up Services from main...")
	aiClient, err := aiclient.New(log)
	if err != nil {
		log.Error("Could not init AI client", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	courseService := services.NewCourseService(thePG, log, courseRepo, courseModuleRepo)
	unitService := services.NewUnitService(thePG, log, learningUnitRepo)
	playerManager := player.NewManager(log)
	playerService := services.NewPlayerService(thePG, log, playerManager, unitService)
	searchService := services.NewSearchService(thePG, log, knowledgeChunkRepo, cache)
	registry := capabilities.NewRegistry()
	generationService := services.NewGenerationService(thePG, log, sseHub, registry, aiClient, learningUnitRepo)

	// App Check
	var verifier appcheck.TokenVerifier
	if appCheckVerifyURL != "" {
		verifier = appcheck.NewHTTPVerifier(log, appCheckVerifyURL)
		verifier = appcheck.NewCachedVerifier(log, verifier, cache, 5*time.Minute)
	} else if appCheckMode != middleware.AppCheckOff {
		log.Warn("APP_CHECK_VERIFY_URL unset, tokens will be treated as invalid")
	}

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	appCheckMiddleware := middleware.NewAppCheckMiddleware(log, appCheckMode, verifier)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	courseHandler := handlers.NewCourseHandler(courseService)
	unitHandler := handlers.NewUnitHandler(unitService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	searchHandler := handlers.NewSearchHandler(searchService)
	generationHandler := handlers.NewGenerationHandler(generationService)
	sseHandler := handlers.NewSSEHandler(sseHub)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		AppCheckMiddleware: appCheckMiddleware,
		UserHandler:        userHandler,
		CourseHandler:      courseHandler,
		UnitHandler:        unitHandler,
		PlayerHandler:      playerHandler,
		SearchHandler:      searchHandler,
		GenerationHandler:  generationHandler,
		SSEHandler:         sseHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
