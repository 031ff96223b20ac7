package router

import (
	"giveget/internal/adapter/api/middleware"
	"giveget/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware, limiter)
	SetupPostRouter(e, authMiddleware, limiter)
	SetupFileRouter(e, authMiddleware)
	SetupFeedRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
