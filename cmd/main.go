package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"employee-service/internal/account"
	"employee-service/internal/authz"
	"employee-service/internal/handler"
	"employee-service/internal/middleware"
	"employee-service/pkg/config"
	"employee-service/pkg/database"
	"employee-service/pkg/jwtutil"
	"employee-service/pkg/logger"
	"employee-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting employee service...", zap.String("environment", cfg.Server.Env))

	db, err := database.Initialize(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// The token signer and the account service get their configuration here;
	// neither reads the environment on its own.
	jwt := jwtutil.New(&cfg.JWT)
	accounts := account.NewService(db, jwt)

	authHandler := handler.NewAuthHandler(accounts, db)
	employeeHandler := handler.NewEmployeeHandler(db)

	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.Metrics)

	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// API routes - all require a valid token
	api := e.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/users/profile", authHandler.Profile)

	employees := api.Group("/employees")
	employees.GET("", employeeHandler.ListEmployees, middleware.RequireAdmin(authz.OpList))
	employees.GET("/export", employeeHandler.ExportEmployees, middleware.RequireAdmin(authz.OpList))
	employees.POST("", employeeHandler.CreateEmployee, middleware.RequireAdmin(authz.OpCreate))
	employees.GET("/:id", employeeHandler.GetEmployee, middleware.RequireSelfOrAdmin(authz.OpView))
	employees.PUT("/:id", employeeHandler.UpdateEmployee, middleware.RequireSelfOrAdmin(authz.OpUpdate))
	employees.DELETE("/:id", employeeHandler.DeleteEmployee, middleware.RequireAdmin(authz.OpDelete))

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
