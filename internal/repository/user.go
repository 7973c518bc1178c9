package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devnet/internal/model"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user together with its empty profile. The two inserts
// share a transaction so a user row can never be observed without a profile.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (username, email, password_hashed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHashed).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, user.ID)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = $1`, username)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

// GetSummaries returns user summaries for the given ids in one query.
func (r *userRepository) GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error) {
	if len(ids) == 0 {
		return []model.UserSummary{}, nil
	}

	query := `
		SELECT u.id, u.username, p.avatar_url
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.id = ANY($1)
		ORDER BY u.username
	`
	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get user summaries: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT * FROM profiles WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.Profile, error) {
	query := `
		UPDATE profiles
		SET bio = $1, location = $2, job_title = $3, portfolio_url = $4, updated_at = NOW()
		WHERE user_id = $5
		RETURNING user_id, bio, location, job_title, portfolio_url, avatar_url, avatar_key, updated_at
	`
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, query, req.Bio, req.Location, req.JobTitle, req.PortfolioURL, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &profile, nil
}

// SetAvatar stores the new avatar location and returns the previous object
// key so the caller can delete the replaced object.
func (r *userRepository) SetAvatar(ctx context.Context, userID int64, url, key string) (*string, error) {
	query := `
		UPDATE profiles p
		SET avatar_url = $1, avatar_key = $2, updated_at = NOW()
		FROM (SELECT avatar_key FROM profiles WHERE user_id = $3) old
		WHERE p.user_id = $3
		RETURNING old.avatar_key
	`
	var previous sql.NullString
	err := r.db.GetContext(ctx, &previous, query, url, key, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set avatar: %w", err)
	}
	if !previous.Valid {
		return nil, nil
	}
	return &previous.String, nil
}
