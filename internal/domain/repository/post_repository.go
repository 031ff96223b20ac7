package repository

import (
	"context"

	"giveget/internal/domain/entity"
)

type PostRepository interface {
	// Create stores the post with a backend-assigned ID and creation time and
	// fills both into the argument.
	Create(ctx context.Context, post *entity.Post) error
	ListByOwner(ctx context.Context, postType entity.PostType, userID string) ([]*entity.Post, error)
	// Delete succeeds when the document is already gone.
	Delete(ctx context.Context, postType entity.PostType, id string) error
	// Subscribe streams full snapshots of the collection ordered by creation
	// time, newest first. The channel closes after cancel or after a snapshot
	// carrying Err.
	Subscribe(ctx context.Context, postType entity.PostType) (<-chan entity.PostSnapshot, context.CancelFunc)
}
