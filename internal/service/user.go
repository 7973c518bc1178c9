package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"devnet/internal/model"
	"devnet/internal/repository"
)

// UserService handles business logic for accounts and profiles
type UserService struct {
	repo        repository.UserRepository
	friendRepo  repository.FriendRequestRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewUserService(repo repository.UserRepository, friendRepo repository.FriendRequestRepository, postRepo repository.PostRepository, commentRepo repository.CommentRepository) *UserService {
	return &UserService{
		repo:        repo,
		friendRepo:  friendRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// Register creates a new user account. The empty profile is created in the
// same transaction, so every registered user is viewable immediately.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfilePage assembles a profile view for the viewer: the owner's
// profile, their post history, and the relationship flags the page is
// rendered from. Friends and the owner see the full post history; everyone
// else sees public posts only.
func (s *UserService) GetProfilePage(ctx context.Context, username string, viewerID int64) (*model.ProfilePage, error) {
	owner, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	page := &model.ProfilePage{
		User: model.UserSummary{
			ID:        owner.ID,
			Username:  owner.Username,
			AvatarURL: profile.AvatarURL,
		},
		Profile: *profile,
	}

	isSelf := viewerID == owner.ID
	if !isSelf {
		isFriend, err := s.friendRepo.AreFriends(ctx, viewerID, owner.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check friendship: %w", err)
		}
		page.IsFriend = isFriend

		if !isFriend {
			outgoing, err := s.friendRepo.GetByPair(ctx, viewerID, owner.ID)
			if err != nil && !errors.Is(err, model.ErrRequestNotFound) {
				return nil, fmt.Errorf("failed to check outgoing request: %w", err)
			}
			if err == nil && !outgoing.IsResolved() {
				page.HasPendingRequest = true
			}

			incoming, err := s.friendRepo.GetByPair(ctx, owner.ID, viewerID)
			if err != nil && !errors.Is(err, model.ErrRequestNotFound) {
				return nil, fmt.Errorf("failed to check incoming request: %w", err)
			}
			if err == nil && !incoming.IsResolved() {
				page.IncomingRequest = true
			}
		}
	}

	posts, err := s.postRepo.ByAuthor(ctx, owner.ID, isSelf || page.IsFriend)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	posts, err = annotatePosts(ctx, viewerID, posts, s.postRepo, s.commentRepo)
	if err != nil {
		return nil, err
	}
	page.Posts = posts

	return page, nil
}

// UpdateProfile applies a profile edit for the owner.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, userID, req)
}
