package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devnet/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, userID int64, text string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (post_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, text, created_at
	`
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, postID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// GetByPostIDs fetches comments with their authors for all posts in one
// query, grouped by post id and ordered oldest first within each post.
func (r *commentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	if len(postIDs) == 0 {
		return map[int64][]model.Comment{}, nil
	}

	query := `
		SELECT c.id, c.post_id, c.user_id, c.text, c.created_at,
		       u.username, p.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.user_id
		JOIN profiles p ON p.user_id = u.id
		WHERE c.post_id = ANY($1)
		ORDER BY c.post_id, c.created_at ASC, c.id ASC
	`
	type row struct {
		ID        int64     `db:"id"`
		PostID    int64     `db:"post_id"`
		UserID    int64     `db:"user_id"`
		Text      string    `db:"text"`
		CreatedAt time.Time `db:"created_at"`
		Username  string    `db:"username"`
		AvatarURL string    `db:"avatar_url"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get comments by post ids: %w", err)
	}

	result := make(map[int64][]model.Comment)
	for _, rw := range rows {
		result[rw.PostID] = append(result[rw.PostID], model.Comment{
			ID:        rw.ID,
			PostID:    rw.PostID,
			UserID:    rw.UserID,
			Text:      rw.Text,
			CreatedAt: rw.CreatedAt,
			Author: &model.UserSummary{
				ID:        rw.UserID,
				Username:  rw.Username,
				AvatarURL: rw.AvatarURL,
			},
		})
	}
	return result, nil
}
