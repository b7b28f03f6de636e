package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identium/auth-system/internal/api/handler"
	"github.com/identium/auth-system/internal/api/middleware"
	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

// Deps bundles everything the router needs, constructed in main. The core
// services arrive as ports so the transport layer never touches concrete
// implementations.
type Deps struct {
	Auth       ports.AuthService
	Users      ports.UserService
	Tokens     ports.TokenService
	Throttle   handler.LoginThrottle
	Dispatcher handler.EventDispatcher
	Mongo      *mongo.Database
	Redis      *redis.Client
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Tokens, deps.Throttle, deps.Dispatcher, deps.Log)
	userHandler := handler.NewUserHandler(deps.Users, deps.Dispatcher)
	requireAuth := middleware.Auth(deps.Tokens)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- Self-service routes ---
	e.GET("/users/me", authHandler.Me, requireAuth)
	e.PUT("/users/me/password", userHandler.ChangeOwnPassword, requireAuth)

	// --- Admin routes ---
	admin := e.Group("/users", requireAuth, requireAdmin)
	admin.POST("", userHandler.Create)
	admin.GET("", userHandler.List)
	admin.GET("/:id", userHandler.Get)
	admin.PUT("/:id", userHandler.Update)
	admin.DELETE("/:id", userHandler.Delete)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
