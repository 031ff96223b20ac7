package entity

import "time"

const (
	MaxNameLength = 100
	MaxBioLength  = 200
)

// Profile is keyed by the identity UID. Email is copied from the identity at
// registration and never rewritten.
type Profile struct {
	UID       string    `json:"uid" firestore:"uid"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	City      string    `json:"city" firestore:"city"`
	Phone     string    `json:"phone" firestore:"phone"`
	Bio       string    `json:"bio" firestore:"profileDescription"`
	PhotoURL  string    `json:"photo_url" firestore:"profilePhotoURL"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// ProfileUpdate carries the user-editable fields.
type ProfileUpdate struct {
	Name     string
	City     string
	Phone    string
	Bio      string
	PhotoURL string
}

func (p *Profile) Apply(u ProfileUpdate) {
	p.Name = u.Name
	p.City = u.City
	p.Phone = u.Phone
	p.Bio = u.Bio
	p.PhotoURL = u.PhotoURL
}
