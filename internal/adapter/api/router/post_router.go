package router

import (
	"giveget/internal/adapter/api/handler"
	"giveget/internal/adapter/api/middleware"
	"giveget/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupPostRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	postHandler := handler.GetPostHandler()
	limit := middleware.RateLimit(limiter, ratelimit.ActionCreatePost)

	e.POST("/v1/posts", postHandler.CreateGivePost, authMiddleware.Authenticate, limit)
	e.POST("/v1/requests", postHandler.CreateRequest, authMiddleware.Authenticate, limit)
}
