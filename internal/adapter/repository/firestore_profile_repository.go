package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"giveget/internal/domain/entity"
	"giveget/internal/domain/repository"
)

const profilesCollection = "users"

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{
		client: client,
	}
}

func (r *firestoreProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	_, err := r.client.Collection(profilesCollection).Doc(profile.UID).Set(ctx, profile)
	return mapError(err)
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, uid string) (*entity.Profile, error) {
	doc, err := r.client.Collection(profilesCollection).Doc(uid).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, err
	}
	if profile.UID == "" {
		profile.UID = doc.Ref.ID
	}

	return &profile, nil
}

func (r *firestoreProfileRepository) Update(ctx context.Context, uid string, update entity.ProfileUpdate) error {
	// Update, not Set: a missing document is an error and email is untouched.
	_, err := r.client.Collection(profilesCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "name", Value: update.Name},
		{Path: "city", Value: update.City},
		{Path: "phone", Value: update.Phone},
		{Path: "profileDescription", Value: update.Bio},
		{Path: "profilePhotoURL", Value: update.PhotoURL},
	})
	return mapError(err)
}

func (r *firestoreProfileRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.client.Collection(profilesCollection).Doc(uid).Delete(ctx)
	if err := mapError(err); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}
