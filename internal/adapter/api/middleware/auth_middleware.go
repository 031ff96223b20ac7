package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"giveget/pkg/errors"
	"giveget/pkg/response"
)

// TokenVerifier checks an ID token and returns its uid and email.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (string, string, error)
}

// RetiredTokens reports bearers whose session was ended by a logout or an
// account deletion.
type RetiredTokens interface {
	Retired(idToken string) bool
}

type AuthMiddleware struct {
	verifier TokenVerifier
	retired  RetiredTokens
}

func NewAuthMiddleware(verifier TokenVerifier, retired RetiredTokens) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		retired:  retired,
	}
}

// Authenticate rejects requests without a valid bearer. Websocket upgrades
// may pass the token as a query parameter instead, since browsers cannot set
// headers on them.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken, err := bearerToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		if m.ended(idToken) {
			return response.Error(c, errors.Unauthorized("Session has ended, please log in again", nil))
		}
		if err := m.verify(c, idToken); err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		return next(c)
	}
}

// AuthenticateOptional sets the caller's identity when a valid bearer is
// present and carries on without one otherwise.
func (m *AuthMiddleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken, err := bearerToken(c)
		if err != nil || m.ended(idToken) {
			return next(c)
		}

		_ = m.verify(c, idToken)
		return next(c)
	}
}

func (m *AuthMiddleware) ended(idToken string) bool {
	return m.retired != nil && m.retired.Retired(idToken)
}

func (m *AuthMiddleware) verify(c echo.Context, idToken string) error {
	uid, email, err := m.verifier.VerifyToken(c.Request().Context(), idToken)
	if err != nil {
		return err
	}

	c.Set("uid", uid)
	c.Set("email", email)
	c.Set("token", idToken)
	return nil
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if c.IsWebSocket() {
			if token := c.QueryParam("token"); token != "" {
				return token, nil
			}
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}
