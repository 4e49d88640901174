package models

import "time"

// Photo represents an uploaded photo. Image bytes live in the media store;
// only the key and public URL are persisted here.
type Photo struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	StorageKey  string    `db:"storage_key" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Rating is a single user's 1..5 vote on a photo. A user has at most one
// rating per photo; re-rating replaces the previous value.
type Rating struct {
	PhotoID   string    `db:"photo_id" json:"photo_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	Value     int       `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Comment is a user comment on a photo.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	PhotoID   string    `db:"photo_id" json:"photo_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PhotoSummary is the feed representation of a photo. AverageRating is
// derived on read, never stored: mean of rating values rounded to one
// decimal, 0 when the photo has no ratings.
type PhotoSummary struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	ImageURL       string    `db:"image_url" json:"image_url"`
	AuthorID       string    `db:"user_id" json:"author_id"`
	AuthorUsername string    `db:"author_username" json:"author_username"`
	AuthorAvatar   string    `db:"author_avatar" json:"author_avatar"`
	AverageRating  float64   `db:"average_rating" json:"average_rating"`
	RatingCount    int       `db:"rating_count" json:"rating_count"`
	CommentCount   int       `db:"comment_count" json:"comment_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PhotoDetail is the full representation returned for a single photo.
type PhotoDetail struct {
	PhotoSummary
	AuthorBio string    `json:"author_bio"`
	Ratings   []Rating  `json:"ratings"`
	Comments  []Comment `json:"comments"`
}

// PhotoSort enumerates the supported feed orderings.
type PhotoSort string

const (
	SortNewest PhotoSort = "newest"
	SortOldest PhotoSort = "oldest"
	SortRating PhotoSort = "rating"
)

// PhotoFilter captures feed query parameters.
type PhotoFilter struct {
	Search   string
	Sort     PhotoSort
	UserID   string
	Page     int
	PageSize int
}

// CreatePhotoRequest carries the multipart metadata of an upload.
type CreatePhotoRequest struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"max=2000"`
}

// UpdatePhotoRequest mutates photo metadata.
type UpdatePhotoRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// RateRequest adds or replaces the caller's rating.
type RateRequest struct {
	Value int `json:"value" validate:"required,min=1,max=5"`
}

// CommentRequest adds a comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}
