package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"giveget/internal/domain/entity"
	"giveget/internal/domain/repository"
	"giveget/pkg/logger"
)

type firestorePostRepository struct {
	client *firestore.Client
}

func NewFirestorePostRepository(client *firestore.Client) repository.PostRepository {
	return &firestorePostRepository{
		client: client,
	}
}

func (r *firestorePostRepository) Create(ctx context.Context, post *entity.Post) error {
	ref := r.client.Collection(post.Type.Collection()).NewDoc()

	wr, err := ref.Set(ctx, map[string]interface{}{
		"userId":      post.UserID,
		"description": post.Description,
		"city":        post.City,
		"phone":       post.Phone,
		"photoURL":    post.PhotoURL,
		"type":        string(post.Type),
		"dateCreated": firestore.ServerTimestamp,
	})
	if err != nil {
		return mapError(err)
	}

	// ServerTimestamp resolves to the commit time of the write.
	post.ID = ref.ID
	post.DateCreated = wr.UpdateTime
	return nil
}

func (r *firestorePostRepository) ListByOwner(ctx context.Context, postType entity.PostType, userID string) ([]*entity.Post, error) {
	iter := r.client.Collection(postType.Collection()).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var posts []*entity.Post
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapError(err)
		}

		post, err := decodePost(doc, postType)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, nil
}

func (r *firestorePostRepository) Delete(ctx context.Context, postType entity.PostType, id string) error {
	_, err := r.client.Collection(postType.Collection()).Doc(id).Delete(ctx)
	if err := mapError(err); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (r *firestorePostRepository) Subscribe(ctx context.Context, postType entity.PostType) (<-chan entity.PostSnapshot, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan entity.PostSnapshot, 1)

	go func() {
		defer close(out)

		it := r.client.Collection(postType.Collection()).
			OrderBy("dateCreated", firestore.Desc).
			Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if err == iterator.Done || ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				logger.Warn("Subscription to %s failed: %v", postType.Collection(), err)
				send(ctx, out, entity.PostSnapshot{Type: postType, ReadAt: time.Now(), Err: mapError(err)})
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				send(ctx, out, entity.PostSnapshot{Type: postType, ReadAt: time.Now(), Err: mapError(err)})
				return
			}

			posts := make([]*entity.Post, 0, len(docs))
			for _, doc := range docs {
				post, err := decodePost(doc, postType)
				if err != nil {
					logger.Warn("Skipping malformed %s document %s: %v", postType.Collection(), doc.Ref.ID, err)
					continue
				}
				posts = append(posts, post)
			}

			if !send(ctx, out, entity.PostSnapshot{Type: postType, Posts: posts, ReadAt: snap.ReadTime}) {
				return
			}
		}
	}()

	return out, cancel
}

func send(ctx context.Context, out chan<- entity.PostSnapshot, snap entity.PostSnapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

func decodePost(doc *firestore.DocumentSnapshot, postType entity.PostType) (*entity.Post, error) {
	var post entity.Post
	if err := doc.DataTo(&post); err != nil {
		return nil, err
	}
	post.ID = doc.Ref.ID
	if post.Type == "" {
		post.Type = postType
	}
	return &post, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
