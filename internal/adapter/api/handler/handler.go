package handler

import (
	"github.com/labstack/echo/v4"

	"giveget/internal/usecase"
)

var (
	authHandler *AuthHandler
	userHandler *UserHandler
	postHandler *PostHandler
)

func Setup(
	accountUseCase *usecase.AccountUseCase,
	postUseCase *usecase.PostUseCase,
) {
	authHandler = NewAuthHandler(accountUseCase)
	userHandler = NewUserHandler(accountUseCase, postUseCase)
	postHandler = NewPostHandler(postUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetPostHandler() *PostHandler {
	return postHandler
}

// identityFrom reads the bearer identity set by the auth middleware.
func identityFrom(c echo.Context) usecase.Identity {
	uid, _ := c.Get("uid").(string)
	email, _ := c.Get("email").(string)
	token, _ := c.Get("token").(string)
	return usecase.Identity{UID: uid, Email: email, IDToken: token}
}
