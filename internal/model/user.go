package model

import (
	"errors"
	"strings"
	"time"
)

// User represents an account in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Profile holds the public-facing details of a user. Exactly one profile
// exists per user; it is inserted in the same transaction as the user row.
type Profile struct {
	UserID       int64     `db:"user_id" json:"user_id"`
	Bio          string    `db:"bio" json:"bio"`
	Location     string    `db:"location" json:"location"`
	JobTitle     string    `db:"job_title" json:"job_title"`
	PortfolioURL string    `db:"portfolio_url" json:"portfolio_url"`
	AvatarURL    string    `db:"avatar_url" json:"avatar_url"`
	AvatarKey    *string   `db:"avatar_key" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the lightweight user shape embedded in posts, comments,
// friend lists and chat threads.
type UserSummary struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	AvatarURL string `db:"avatar_url" json:"avatar_url"`
}

// ProfilePage is the full payload for viewing a profile, including the
// relationship between the viewer and the profile owner.
type ProfilePage struct {
	User              UserSummary `json:"user"`
	Profile           Profile     `json:"profile"`
	Posts             []Post      `json:"posts"`
	IsFriend          bool        `json:"is_friend"`
	HasPendingRequest bool        `json:"has_pending_request"` // viewer -> owner
	IncomingRequest   bool        `json:"incoming_request"`    // owner -> viewer
}

// RegisterRequest represents the data needed to register a new account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request body for PUT /profile.
type UpdateProfileRequest struct {
	Bio          string `json:"bio"`
	Location     string `json:"location"`
	JobTitle     string `json:"job_title"`
	PortfolioURL string `json:"portfolio_url"`
}

// Profile field limits, matching the column sizes.
const (
	MaxBioLength      = 2000
	MaxLocationLength = 100
	MaxJobTitleLength = 100
	MinPasswordLength = 8
	MaxUsernameLength = 30
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordTooShort = errors.New("password too short")
	ErrProfileTooLong   = errors.New("profile field too long")
)

// Validate checks registration input before any row is created.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || len(r.Username) > MaxUsernameLength {
		return ErrUsernameRequired
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Validate checks profile update input.
func (r *UpdateProfileRequest) Validate() error {
	if len(r.Bio) > MaxBioLength || len(r.Location) > MaxLocationLength || len(r.JobTitle) > MaxJobTitleLength {
		return ErrProfileTooLong
	}
	return nil
}
