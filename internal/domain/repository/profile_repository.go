package repository

import (
	"context"

	"giveget/internal/domain/entity"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, uid string) (*entity.Profile, error)
	// Update writes only the editable fields; the document must exist.
	Update(ctx context.Context, uid string, update entity.ProfileUpdate) error
	// Delete succeeds when the document is already gone.
	Delete(ctx context.Context, uid string) error
}
