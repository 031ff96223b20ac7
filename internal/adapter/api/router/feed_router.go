package router

import (
	"giveget/internal/adapter/api/handler"
	"giveget/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupFeedRouter exposes the live listing feed. The token may come as a
// query parameter on the upgrade request.
func SetupFeedRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/v1/feed", handler.GetFeedHandler().HandleFeed, authMiddleware.Authenticate)
}
