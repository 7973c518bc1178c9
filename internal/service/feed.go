package service

import (
	"context"
	"fmt"

	"devnet/internal/model"
	"devnet/internal/repository"
)

// DefaultFeedLimit caps how many posts a single feed request returns.
const DefaultFeedLimit = 50

// FeedService assembles the home feed: visibility-scoped posts annotated
// with the viewer's like state, plus the viewer's pending friend requests.
type FeedService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	friendRepo  repository.FriendRequestRepository
}

func NewFeedService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	friendRepo repository.FriendRequestRepository,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		friendRepo:  friendRepo,
	}
}

// GetFeed returns the viewer's feed, newest posts first. The friend set is
// computed fresh on every call, so a just-accepted friendship widens the
// feed immediately and a declined one never does.
func (s *FeedService) GetFeed(ctx context.Context, viewerID int64, limit int) (*model.FeedResponse, error) {
	if limit <= 0 || limit > DefaultFeedLimit {
		limit = DefaultFeedLimit
	}

	friendIDs, err := s.friendRepo.FriendIDsOf(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute friend set: %w", err)
	}

	posts, err := s.postRepo.VisibleToViewer(ctx, viewerID, friendIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	posts, err = annotatePosts(ctx, viewerID, posts, s.postRepo, s.commentRepo)
	if err != nil {
		return nil, err
	}

	pending, err := s.friendRepo.PendingFor(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending requests: %w", err)
	}

	return &model.FeedResponse{
		Posts:           posts,
		PendingRequests: pending,
	}, nil
}

// annotatePosts enriches posts with the viewer's like state and each post's
// comments, for both the feed and the profile page. Both lookups are single
// batch queries over all post IDs, not one query per post.
func annotatePosts(ctx context.Context, viewerID int64, posts []model.Post, postRepo repository.PostRepository, commentRepo repository.CommentRepository) ([]model.Post, error) {
	if len(posts) == 0 {
		return []model.Post{}, nil
	}

	postIDs := make([]int64, len(posts))
	for i, post := range posts {
		postIDs[i] = post.ID
	}

	likeMap, err := postRepo.CheckLikes(ctx, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check likes: %w", err)
	}

	commentMap, err := commentRepo.GetByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	for i := range posts {
		posts[i].IsLiked = likeMap[posts[i].ID]
		posts[i].Comments = commentMap[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []model.Comment{}
		}
	}

	return posts, nil
}
