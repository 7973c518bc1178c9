package service

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"devnet/internal/model"
	"devnet/internal/queue"
	"devnet/internal/repository"
)

// PostService handles post creation, likes and comments.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	db          *sqlx.DB
	publisher   queue.Publisher
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		db:          db,
		publisher:   publisher,
	}
}

// Create validates and persists a new post for the author.
func (s *PostService) Create(ctx context.Context, userID int64, req *model.CreatePostRequest) (*model.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, userID, req.Message, req.Visibility)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// ToggleLike likes the post if the user hasn't liked it, unlikes otherwise.
// The like row and the denormalized counter move in one transaction so the
// count can't drift from the rows.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID int64) (*model.LikeState, error) {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.postRepo.InsertLike(ctx, tx, postID, userID)
	if err != nil {
		return nil, err
	}

	liked := inserted
	delta := 1
	if !inserted {
		if err := s.postRepo.DeleteLike(ctx, tx, postID, userID); err != nil {
			return nil, err
		}
		liked = false
		delta = -1
	}

	count, err := s.postRepo.IncrementLikeCount(ctx, tx, postID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if liked {
		s.publishPostLiked(ctx, userID, authorID, postID)
	}

	return &model.LikeState{
		PostID:    postID,
		Liked:     liked,
		LikeCount: count,
	}, nil
}

// AddComment appends a comment to the post and bumps its comment counter in
// one transaction.
func (s *PostService) AddComment(ctx context.Context, userID, postID int64, req *model.CreateCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment, err := s.commentRepo.Create(ctx, tx, postID, userID, req.Text)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.publishPostCommented(ctx, userID, authorID, postID, comment.ID)

	return comment, nil
}

func (s *PostService) publishPostLiked(ctx context.Context, actorID, authorID, postID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewPostLikedEvent(actorID, authorID, postID)
	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
		log.Printf("[PostService] Failed to publish PostLiked event: actor=%d post=%d err=%v",
			actorID, postID, err)
	}
}

func (s *PostService) publishPostCommented(ctx context.Context, actorID, authorID, postID, commentID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewPostCommentedEvent(actorID, authorID, postID, commentID)
	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
		log.Printf("[PostService] Failed to publish PostCommented event: actor=%d post=%d err=%v",
			actorID, postID, err)
	}
}
