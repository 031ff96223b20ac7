package handler

import (
	"github.com/labstack/echo/v4"

	"giveget/internal/usecase"
	"giveget/pkg/errors"
	"giveget/pkg/response"
)

type AuthHandler struct {
	accountUseCase *usecase.AccountUseCase
}

func NewAuthHandler(accountUseCase *usecase.AccountUseCase) *AuthHandler {
	return &AuthHandler{
		accountUseCase: accountUseCase,
	}
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token        string           `json:"token"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	State        string           `json:"state"`
	User         *profileResponse `json:"user"`
}

func newAuthResponse(result *usecase.AuthResult) authResponse {
	user := toProfileResponse(result.Profile)
	if user == nil {
		user = &profileResponse{ID: result.UID, Email: result.Email}
	}
	return authResponse{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		State:        string(result.State),
		User:         user,
	}
}

// Register validates locally before anything reaches the identity backend.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}

	result, err := h.accountUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, newAuthResponse(result))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}

	result, err := h.accountUseCase.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, newAuthResponse(result))
}

// Logout succeeds even without a valid bearer; there is nothing left to
// clear in that case.
func (h *AuthHandler) Logout(c echo.Context) error {
	if id := identityFrom(c); id.UID != "" {
		h.accountUseCase.Logout(c.Request().Context(), id)
	}

	return response.Success(c, map[string]string{
		"message": "Successfully logged out",
		"state":   string(usecase.StateLoggedOut),
	})
}
