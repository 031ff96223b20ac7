package router

import (
	"giveget/internal/adapter/api/handler"
	"giveget/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	e.POST("/v1/auth/register", authHandler.Register)
	e.POST("/v1/auth/login", authHandler.Login)

	// Logout must succeed with a stale or missing token too.
	e.POST("/v1/auth/logout", authHandler.Logout, authMiddleware.AuthenticateOptional)
}
