package model

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// User represents a user in the system.
// PasswordHash and RefreshToken are hidden from JSON output, so a *User
// serialises directly as the public projection.
type User struct {
	ID            int64         `db:"id" json:"id"`
	Username      string        `db:"username" json:"username"`
	Email         string        `db:"email" json:"email"`
	FullName      string        `db:"full_name" json:"fullName"`
	AvatarURL     string        `db:"avatar_url" json:"avatar"`
	CoverImageURL string        `db:"cover_image_url" json:"coverImage"`
	PasswordHash  string        `db:"password_hash" json:"-"`
	RefreshToken  *string       `db:"refresh_token" json:"-"`
	WatchHistory  pq.Int64Array `db:"watch_history" json:"watchHistory"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

// NormalizeIdentity trims and lowercases a username or email.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RegisterRequest represents the data needed to register a new user.
// AvatarPath and CoverImagePath point at staged local files.
type RegisterRequest struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the request body for POST /users/change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateAccountRequest is the request body for PATCH /users/update-account
type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UserUpdate is a set-style partial update. Nil fields are left untouched.
type UserUpdate struct {
	FullName      *string
	Email         *string
	AvatarURL     *string
	CoverImageURL *string
	PasswordHash  *string
}

// IsEmpty reports whether the update carries no fields.
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.AvatarURL == nil &&
		u.CoverImageURL == nil && u.PasswordHash == nil
}

var (
	ErrMissingFields       = BadRequest("All fields are required")
	ErrMissingIdentifier   = BadRequest("Email or username is required")
	ErrPasswordTooLong     = BadRequest("Password must be at most 72 bytes")
	ErrAvatarRequired      = BadRequest("Avatar file is required")
	ErrCoverImageRequired  = BadRequest("Cover image file is required")
	ErrUserExists          = Conflict("User with email or username already exists")
	ErrEmailTaken          = Conflict("Email is already in use")
	ErrUserNotFound        = NotFound("User does not exist")
	ErrInvalidPassword     = Unauthorized(CodeUnauthorized, "Invalid user credentials")
	ErrInvalidOldPassword  = Unauthorized(CodeUnauthorized, "Invalid old password")
	ErrAvatarUploadFailed  = UploadError("Error while uploading avatar")
	ErrUserCreateFailed    = Internal("Something went wrong while registering the user")
	ErrMediaUploadFailed   = Internal("Error while uploading file")
	ErrTokenGenerateFailed = Internal("Something went wrong while generating tokens")
)
