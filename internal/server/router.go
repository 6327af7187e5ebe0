package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/brightpath/brightpath-backend/internal/handlers"
	"github.com/brightpath/brightpath-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	AppCheckMiddleware *middleware.AppCheckMiddleware
	UserHandler        *handlers.UserHandler
	CourseHandler      *handlers.CourseHandler
	UnitHandler        *handlers.UnitHandler
	PlayerHandler      *handlers.PlayerHandler
	SearchHandler      *handlers.SearchHandler
	GenerationHandler  *handlers.GenerationHandler
	SSEHandler         *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("brightpath-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", middleware.AppCheckHeader},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AppCheckMiddleware.Gate())
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	// Courses
	protected.GET("/courses", cfg.CourseHandler.ListUserCourses)
	protected.POST("/courses", cfg.CourseHandler.CreateCourse)
	protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
	protected.GET("/courses/:id/modules", cfg.CourseHandler.ListModules)
	// Learning units
	protected.GET("/modules/:id/units", cfg.UnitHandler.ListUnitsForModule)
	protected.GET("/units/:id", cfg.UnitHandler.GetUnit)
	// Generation
	protected.POST("/courses/:id/units/:unitID/blocks/generate", cfg.GenerationHandler.GenerateBlocks)
	// Player
	protected.POST("/player/sessions", cfg.PlayerHandler.StartSession)
	protected.GET("/player/sessions/:id", cfg.PlayerHandler.GetSession)
	protected.POST("/player/sessions/:id/answer", cfg.PlayerHandler.SubmitAnswer)
	protected.POST("/player/sessions/:id/advance", cfg.PlayerHandler.Advance)
	// Knowledge search
	protected.POST("/knowledge/search", cfg.SearchHandler.SearchKnowledge)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)

	return router
}
