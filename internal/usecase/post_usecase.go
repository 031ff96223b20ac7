package usecase

import (
	"context"
	"sort"
	"strings"

	"giveget/internal/domain/entity"
	"giveget/internal/domain/repository"
	apperrors "giveget/pkg/errors"
	"giveget/pkg/logger"
)

type PostUseCase struct {
	postRepo repository.PostRepository
}

func NewPostUseCase(postRepo repository.PostRepository) *PostUseCase {
	return &PostUseCase{
		postRepo: postRepo,
	}
}

type CreatePostInput struct {
	Type        entity.PostType `validate:"required,oneof=give get"`
	Description string          `validate:"required,max=500"`
	City        string          `validate:"max=50"`
	Phone       string          `validate:"max=20"`
	PhotoURL    string          `validate:"omitempty,url"`
}

func (uc *PostUseCase) CreatePost(ctx context.Context, userID string, input CreatePostInput) (*entity.Post, error) {
	input.Description = strings.TrimSpace(input.Description)
	input.City = strings.TrimSpace(input.City)
	input.Phone = strings.TrimSpace(input.Phone)
	input.PhotoURL = strings.TrimSpace(input.PhotoURL)

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperrors.Unauthorized("You must be logged in to post", nil)
	}

	post := &entity.Post{
		UserID:      userID,
		Description: input.Description,
		City:        input.City,
		Phone:       input.Phone,
		PhotoURL:    input.PhotoURL,
		Type:        input.Type,
	}

	if err := uc.postRepo.Create(ctx, post); err != nil {
		logger.Error("Creating %s post for %s failed: %v", input.Type, userID, err)
		return nil, remoteError("Failed to create post", err)
	}

	logger.Debug("Created %s/%s for %s", input.Type.Collection(), post.ID, userID)
	return post, nil
}

type OwnPosts struct {
	Give []*entity.Post
	Get  []*entity.Post
}

// ListOwnPosts returns the caller's posts and requests, newest first.
func (uc *PostUseCase) ListOwnPosts(ctx context.Context, userID string) (*OwnPosts, error) {
	result := &OwnPosts{}

	for _, postType := range entity.PostTypes {
		posts, err := uc.postRepo.ListByOwner(ctx, postType, userID)
		if err != nil {
			return nil, remoteError("Unable to load your posts", err)
		}
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].DateCreated.After(posts[j].DateCreated)
		})

		if postType == entity.PostTypeGive {
			result.Give = posts
		} else {
			result.Get = posts
		}
	}

	return result, nil
}
