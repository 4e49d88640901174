package models

import "time"

// User represents an application user stored in the users table. The
// refresh_token column holds the single currently valid refresh token for
// the user, or NULL when the user is logged out.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Bio          string    `db:"bio" json:"bio"`
	AvatarURL    string    `db:"avatar_url" json:"avatar_url"`
	AvatarKey    string    `db:"avatar_key" json:"-"`
	RefreshToken *string   `db:"refresh_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile is the public representation of a user.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicProfile strips credential fields from a user record.
func (u *User) PublicProfile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// UpdateProfileRequest carries mutable profile fields.
type UpdateProfileRequest struct {
	Username string `form:"username" json:"username" validate:"omitempty,min=3,max=32"`
	Email    string `form:"email" json:"email" validate:"omitempty,email"`
	Bio      string `form:"bio" json:"bio" validate:"max=500"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
