package handler

import (
	"github.com/labstack/echo/v4"

	"giveget/internal/domain/entity"
	"giveget/internal/usecase"
	"giveget/pkg/errors"
	"giveget/pkg/response"
)

type PostHandler struct {
	postUseCase *usecase.PostUseCase
}

func NewPostHandler(postUseCase *usecase.PostUseCase) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
	}
}

type createPostRequest struct {
	Description string `json:"description"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	PhotoURL    string `json:"photo_url"`
}

// CreateGivePost publishes an item the caller is giving away.
func (h *PostHandler) CreateGivePost(c echo.Context) error {
	return h.create(c, entity.PostTypeGive)
}

// CreateRequest publishes an item the caller is looking for.
func (h *PostHandler) CreateRequest(c echo.Context) error {
	return h.create(c, entity.PostTypeGet)
}

func (h *PostHandler) create(c echo.Context, postType entity.PostType) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.Validation("Invalid request body", err))
	}

	post, err := h.postUseCase.CreatePost(c.Request().Context(), identityFrom(c).UID, usecase.CreatePostInput{
		Type:        postType,
		Description: req.Description,
		City:        req.City,
		Phone:       req.Phone,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, post)
}
