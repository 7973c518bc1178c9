package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"devnet/internal/model"
)

type friendRequestRepository struct {
	db *sqlx.DB
}

func NewFriendRequestRepository(db *sqlx.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

// Insert creates a pending request for the ordered (sender, receiver) pair.
// The unique constraint on the pair makes concurrent duplicate submissions
// collapse into one row; a losing insert returns the existing row with
// inserted=false.
func (r *friendRequestRepository) Insert(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, bool, error) {
	query := `
		INSERT INTO friend_requests (sender_id, receiver_id)
		VALUES ($1, $2)
		ON CONFLICT (sender_id, receiver_id) DO NOTHING
		RETURNING id, sender_id, receiver_id, status, created_at, responded_at
	`
	var req model.FriendRequest
	err := r.db.GetContext(ctx, &req, query, senderID, receiverID)
	if err == nil {
		return &req, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("insert friend request: %w", err)
	}

	// Conflict: fetch the existing row for the pair.
	existing, err := r.GetByPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *friendRequestRepository) GetByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.db.GetContext(ctx, &req, `SELECT * FROM friend_requests WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	return &req, nil
}

func (r *friendRequestRepository) GetByPair(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
	query := `SELECT * FROM friend_requests WHERE sender_id = $1 AND receiver_id = $2`
	var req model.FriendRequest
	err := r.db.GetContext(ctx, &req, query, senderID, receiverID)
	if err == sql.ErrNoRows {
		return nil, model.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get friend request by pair: %w", err)
	}
	return &req, nil
}

// Resolve writes the terminal status and responded_at in a single statement
// scoped to pending rows, so a double response can never clobber the first
// resolution.
func (r *friendRequestRepository) Resolve(ctx context.Context, id int64, status string) (*model.FriendRequest, error) {
	query := `
		UPDATE friend_requests
		SET status = $1, responded_at = NOW()
		WHERE id = $2 AND status = 'pending'
		RETURNING id, sender_id, receiver_id, status, created_at, responded_at
	`
	var req model.FriendRequest
	err := r.db.GetContext(ctx, &req, query, status, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrRequestResolved
	}
	if err != nil {
		return nil, fmt.Errorf("resolve friend request: %w", err)
	}
	return &req, nil
}

// FriendIDsOf derives the friend set from accepted requests in both
// directions. Recomputed on every call; there is no stored friendship edge.
func (r *friendRequestRepository) FriendIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT receiver_id FROM friend_requests WHERE sender_id = $1 AND status = 'accepted'
		UNION
		SELECT sender_id FROM friend_requests WHERE receiver_id = $1 AND status = 'accepted'
	`
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("friend ids of user: %w", err)
	}
	return ids, nil
}

// AreFriends checks for an accepted request in either direction, which makes
// the answer symmetric even though the underlying row is directional.
func (r *friendRequestRepository) AreFriends(ctx context.Context, userA, userB int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE status = 'accepted'
			  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userA, userB)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return exists, nil
}

func (r *friendRequestRepository) PendingFor(ctx context.Context, receiverID int64) ([]model.FriendRequestView, error) {
	query := `
		SELECT fr.id, fr.created_at, u.id AS sender_id, u.username, p.avatar_url
		FROM friend_requests fr
		JOIN users u ON u.id = fr.sender_id
		JOIN profiles p ON p.user_id = u.id
		WHERE fr.receiver_id = $1 AND fr.status = 'pending'
		ORDER BY fr.created_at DESC
	`
	type row struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		SenderID  int64     `db:"sender_id"`
		Username  string    `db:"username"`
		AvatarURL string    `db:"avatar_url"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, receiverID)
	if err != nil {
		return nil, fmt.Errorf("pending requests for user: %w", err)
	}

	views := make([]model.FriendRequestView, len(rows))
	for i, rw := range rows {
		views[i] = model.FriendRequestView{
			ID:        rw.ID,
			CreatedAt: rw.CreatedAt,
			Sender: model.UserSummary{
				ID:        rw.SenderID,
				Username:  rw.Username,
				AvatarURL: rw.AvatarURL,
			},
		}
	}
	return views, nil
}
