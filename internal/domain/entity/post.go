package entity

import (
	"fmt"
	"time"
)

const (
	MaxDescriptionLength = 500
	MaxCityLength        = 50
	MaxPhoneLength       = 20
)

type PostType string

const (
	PostTypeGive PostType = "give"
	PostTypeGet  PostType = "get"
)

// PostTypes is the fixed tab order of the listing feed.
var PostTypes = []PostType{PostTypeGive, PostTypeGet}

func ParsePostType(s string) (PostType, error) {
	switch PostType(s) {
	case PostTypeGive, PostTypeGet:
		return PostType(s), nil
	}
	return "", fmt.Errorf("unknown post type %q", s)
}

// Collection names the document collection a type is stored in. Get-type
// posts live in "requests".
func (t PostType) Collection() string {
	if t == PostTypeGet {
		return "requests"
	}
	return "posts"
}

type Post struct {
	ID          string    `json:"id" firestore:"-"`
	UserID      string    `json:"user_id" firestore:"userId"`
	Description string    `json:"description" firestore:"description"`
	City        string    `json:"city,omitempty" firestore:"city"`
	Phone       string    `json:"phone,omitempty" firestore:"phone"`
	PhotoURL    string    `json:"photo_url,omitempty" firestore:"photoURL"`
	DateCreated time.Time `json:"date_created" firestore:"dateCreated"`
	Type        PostType  `json:"type" firestore:"type"`
}

// PostSnapshot is one full materialization of a collection, newest first.
// A snapshot with Err set is the last one its subscription delivers.
type PostSnapshot struct {
	Type   PostType
	Posts  []*Post
	ReadAt time.Time
	Err    error
}
