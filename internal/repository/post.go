package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devnet/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, userID int64, message, visibility string) (*model.Post, error) {
	query := `
		INSERT INTO posts (user_id, message, visibility)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, message, visibility, like_count, comment_count, created_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, userID, message, visibility)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &post, nil
}

func (r *postRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// VisibleToViewer applies the visibility predicate in SQL: public posts, plus
// friends-only posts whose author is the viewer or in the viewer's friend
// set. Newest first for feed rendering.
func (r *postRepository) VisibleToViewer(ctx context.Context, viewerID int64, friendIDs []int64, limit int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.message, p.visibility, p.like_count, p.comment_count, p.created_at,
		       u.username, pr.avatar_url
		FROM posts p
		JOIN users u ON u.id = p.user_id
		JOIN profiles pr ON pr.user_id = u.id
		WHERE p.visibility = 'public'
		   OR (p.visibility = 'friends' AND (p.user_id = $1 OR p.user_id = ANY($2)))
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3
	`
	rows, err := r.db.QueryxContext(ctx, query, viewerID, pq.Array(friendIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("get visible posts: %w", err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

func (r *postRepository) ByAuthor(ctx context.Context, authorID int64, includeFriendsOnly bool) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.message, p.visibility, p.like_count, p.comment_count, p.created_at,
		       u.username, pr.avatar_url
		FROM posts p
		JOIN users u ON u.id = p.user_id
		JOIN profiles pr ON pr.user_id = u.id
		WHERE p.user_id = $1 AND (p.visibility = 'public' OR $2)
		ORDER BY p.created_at ASC, p.id ASC
	`
	rows, err := r.db.QueryxContext(ctx, query, authorID, includeFriendsOnly)
	if err != nil {
		return nil, fmt.Errorf("get posts by author: %w", err)
	}
	defer rows.Close()

	return scanPostsWithAuthor(rows)
}

func scanPostsWithAuthor(rows *sqlx.Rows) ([]model.Post, error) {
	var posts []model.Post
	for rows.Next() {
		var post model.Post
		var username, avatarURL string
		err := rows.Scan(&post.ID, &post.UserID, &post.Message, &post.Visibility,
			&post.LikeCount, &post.CommentCount, &post.CreatedAt, &username, &avatarURL)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		post.Author = &model.UserSummary{ID: post.UserID, Username: username, AvatarURL: avatarURL}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// CheckLikes checks which posts the user has liked.
// One query for the whole candidate set, never per-post.
func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}

// InsertLike relies on the unique (post_id, user_id) constraint: a concurrent
// duplicate insert resolves to inserted=false instead of racing check-then-act.
func (r *postRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *postRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

// IncrementLikeCount atomically updates the like_count on a post and returns
// the new value.
func (r *postRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	query := `UPDATE posts SET like_count = like_count + $1 WHERE id = $2 RETURNING like_count`
	var count int
	err := tx.GetContext(ctx, &count, query, delta, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update like count: %w", err)
	}
	return count, nil
}

// IncrementCommentCount atomically updates the comment_count on a post.
func (r *postRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	result, err := tx.ExecContext(ctx, `UPDATE posts SET comment_count = comment_count + $1 WHERE id = $2`, delta, postID)
	if err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}
