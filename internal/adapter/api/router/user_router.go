package router

import (
	"giveget/internal/adapter/api/handler"
	"giveget/internal/adapter/api/middleware"
	"giveget/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetProfile)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.DELETE("/me", userHandler.DeleteAccount)
	users.GET("/me/session", userHandler.GetSessionState)
	users.GET("/me/posts", userHandler.ListOwnPosts)

	users.POST("/me/reauthenticate", userHandler.Reauthenticate, middleware.RateLimit(limiter, ratelimit.ActionReauthenticate))
	users.DELETE("/me/reauthenticate", userHandler.CancelReauthentication)
}
