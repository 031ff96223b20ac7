package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"giveget/internal/infrastructure/ratelimit"
	"giveget/pkg/errors"
	"giveget/pkg/logger"
	"giveget/pkg/response"
)

// RateLimit throttles an action per authenticated user. It must run after
// Authenticate.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get("uid").(string)
			if uid == "" {
				uid = c.RealIP()
			}

			allowed, retryAfter := limiter.Allow(uid, action)
			if !allowed {
				logger.Warn("Rate limit hit for %s on %s (retry in %v)", uid, action, retryAfter)
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return response.Error(c, errors.TooManyRequests("Too many attempts, please wait before trying again"))
			}

			return next(c)
		}
	}
}
