package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"giveget/internal/domain/entity"
	"giveget/internal/usecase"
	"giveget/pkg/errors"
	"giveget/pkg/response"
	"giveget/pkg/utils"
)

type UserHandler struct {
	accountUseCase *usecase.AccountUseCase
	postUseCase    *usecase.PostUseCase
}

func NewUserHandler(accountUseCase *usecase.AccountUseCase, postUseCase *usecase.PostUseCase) *UserHandler {
	return &UserHandler{
		accountUseCase: accountUseCase,
		postUseCase:    postUseCase,
	}
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Bio       string    `json:"bio"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfileResponse(p *entity.Profile) *profileResponse {
	if p == nil {
		return nil
	}
	return &profileResponse{
		ID:        p.UID,
		Name:      p.Name,
		Email:     p.Email,
		City:      p.City,
		Phone:     p.Phone,
		Bio:       p.Bio,
		PhotoURL:  p.PhotoURL,
		CreatedAt: p.CreatedAt,
	}
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photo_url"`
}

type reauthenticateRequest struct {
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.accountUseCase.GetProfile(c.Request().Context(), identityFrom(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, toProfileResponse(profile))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}

	profile, err := h.accountUseCase.UpdateProfile(c.Request().Context(), identityFrom(c), usecase.UpdateProfileInput{
		Name:     req.Name,
		City:     req.City,
		Phone:    req.Phone,
		Bio:      req.Bio,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, toProfileResponse(profile))
}

func (h *UserHandler) GetSessionState(c echo.Context) error {
	state := h.accountUseCase.SessionState(identityFrom(c))
	return response.Success(c, map[string]string{
		"state": string(state),
	})
}

// DeleteAccount answers 403 REQUIRES_RECENT_LOGIN when the identity
// backend wants fresh credentials; the client then calls Reauthenticate.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	if err := h.accountUseCase.DeleteAccount(c.Request().Context(), identityFrom(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Account deleted",
		"state":   string(usecase.StateLoggedOut),
	})
}

func (h *UserHandler) Reauthenticate(c echo.Context) error {
	var req reauthenticateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.accountUseCase.Reauthenticate(c.Request().Context(), identityFrom(c), req.Password); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Account deleted",
		"state":   string(usecase.StateLoggedOut),
	})
}

func (h *UserHandler) CancelReauthentication(c echo.Context) error {
	if err := h.accountUseCase.CancelReauth(c.Request().Context(), identityFrom(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"state": string(usecase.StateAuthenticated),
	})
}

func (h *UserHandler) ListOwnPosts(c echo.Context) error {
	own, err := h.postUseCase.ListOwnPosts(c.Request().Context(), identityFrom(c).UID)
	if err != nil {
		return response.Error(c, err)
	}

	page := utils.GetPaginationParams(c)
	return response.Success(c, map[string]interface{}{
		"give":  pagePosts(own.Give, page),
		"get":   pagePosts(own.Get, page),
		"page":  page.Page,
		"limit": page.PageSize,
	})
}

// pagePosts applies the same page to each listing independently.
func pagePosts(posts []*entity.Post, page utils.PaginationParams) []*entity.Post {
	start, end := page.Window(len(posts))
	out := make([]*entity.Post, 0, end-start)
	return append(out, posts[start:end]...)
}
