package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"devnet/internal/model"
	"devnet/internal/queue"
)

func pendingRequest(id, senderID, receiverID int64) *model.FriendRequest {
	return &model.FriendRequest{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.RequestStatusPending,
		CreatedAt:  time.Now(),
	}
}

func resolvedRequest(id, senderID, receiverID int64, status string) *model.FriendRequest {
	req := pendingRequest(id, senderID, receiverID)
	req.Status = status
	now := time.Now()
	req.RespondedAt = &now
	return req
}

func userByUsername(id int64, username string) func(ctx context.Context, name string) (*model.User, error) {
	return func(ctx context.Context, name string) (*model.User, error) {
		if name == username {
			return &model.User{ID: id, Username: username}, nil
		}
		return nil, model.ErrUserNotFound
	}
}

func TestFriendService_SendRequest_Sent(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	friendRepo := &mockFriendRequestRepository{}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, userRepo, pub)

	result, err := svc.SendRequest(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != model.OutcomeSent {
		t.Errorf("outcome = %q, want %q", result.Outcome, model.OutcomeSent)
	}
	if result.Request == nil || result.Request.Status != model.RequestStatusPending {
		t.Errorf("expected pending request in response, got %+v", result.Request)
	}
	if friendRepo.insertCalls != 1 {
		t.Errorf("Insert called %d times, want 1", friendRepo.insertCalls)
	}
	if len(pub.events) != 1 || pub.events[0].Type != queue.EventFriendRequested {
		t.Errorf("expected one friend_requested event, got %+v", pub.events)
	}
}

func TestFriendService_SendRequest_Self(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(1, "alice")}
	friendRepo := &mockFriendRequestRepository{}
	svc := NewFriendService(friendRepo, userRepo, nil)

	result, err := svc.SendRequest(context.Background(), 1, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != model.OutcomeSelfRequest {
		t.Errorf("outcome = %q, want %q", result.Outcome, model.OutcomeSelfRequest)
	}
	if friendRepo.insertCalls != 0 {
		t.Error("Insert should not be called for a self request")
	}
}

func TestFriendService_SendRequest_AlreadyFriends(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	friendRepo := &mockFriendRequestRepository{
		areFriendsFn: func(ctx context.Context, a, b int64) (bool, error) {
			return true, nil
		},
	}
	svc := NewFriendService(friendRepo, userRepo, nil)

	result, err := svc.SendRequest(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != model.OutcomeAlreadyFriends {
		t.Errorf("outcome = %q, want %q", result.Outcome, model.OutcomeAlreadyFriends)
	}
	if friendRepo.insertCalls != 0 {
		t.Error("Insert should not be called when already friends")
	}
}

func TestFriendService_SendRequest_AlreadyPending(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	friendRepo := &mockFriendRequestRepository{
		insertFn: func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, bool, error) {
			return pendingRequest(7, senderID, receiverID), false, nil
		},
	}
	svc := NewFriendService(friendRepo, userRepo, nil)

	result, err := svc.SendRequest(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != model.OutcomeAlreadyPending {
		t.Errorf("outcome = %q, want %q", result.Outcome, model.OutcomeAlreadyPending)
	}
}

func TestFriendService_SendRequest_PreviouslyResolved(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	friendRepo := &mockFriendRequestRepository{
		insertFn: func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, bool, error) {
			return resolvedRequest(7, senderID, receiverID, model.RequestStatusDeclined), false, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, userRepo, pub)

	result, err := svc.SendRequest(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != model.OutcomePreviouslyResolved {
		t.Errorf("outcome = %q, want %q", result.Outcome, model.OutcomePreviouslyResolved)
	}
	if len(pub.events) != 0 {
		t.Errorf("no events expected for resolved request, got %+v", pub.events)
	}
}

func TestFriendService_SendRequest_MutualAccepted(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	friendRepo := &mockFriendRequestRepository{
		// Bob already has a pending request to Alice.
		getByPairFn: func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
			if senderID == 2 && receiverID == 1 {
				return pendingRequest(9, 2, 1), nil
			}
			return nil, model.ErrRequestNotFound
		},
		resolveFn: func(ctx context.Context, id int64, status string) (*model.FriendRequest, error) {
			if status != model.RequestStatusAccepted {
				t.Errorf("resolve status = %q, want accepted", status)
			}
			return resolvedRequest(id, 2, 1, model.RequestStatusAccepted), nil
		},
	}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, userRepo, pub)

	result, err := svc.SendRequest(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != model.OutcomeMutualAccepted {
		t.Errorf("outcome = %q, want %q", result.Outcome, model.OutcomeMutualAccepted)
	}
	if friendRepo.insertCalls != 0 {
		t.Error("Insert should not be called when accepting the reverse request")
	}
	if len(pub.events) != 1 || pub.events[0].Type != queue.EventFriendAccepted {
		t.Errorf("expected one friend_accepted event, got %+v", pub.events)
	}
}

func TestFriendService_SendRequest_ReverseLookupError(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	friendRepo := &mockFriendRequestRepository{
		getByPairFn: func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := NewFriendService(friendRepo, userRepo, nil)

	result, err := svc.SendRequest(context.Background(), 1, "bob")
	if err == nil {
		t.Fatalf("expected error, got result %+v", result)
	}
	// A failed reverse lookup must not fall through to inserting a mirror
	// request on top of a possibly pending one.
	if friendRepo.insertCalls != 0 {
		t.Errorf("Insert called %d times, want 0", friendRepo.insertCalls)
	}
	if friendRepo.resolveCalls != 0 {
		t.Errorf("Resolve called %d times, want 0", friendRepo.resolveCalls)
	}
}

func TestFriendService_Respond(t *testing.T) {
	tests := []struct {
		name     string
		userID   int64
		decision string
		getByID  func(ctx context.Context, id int64) (*model.FriendRequest, error)
		resolve  func(ctx context.Context, id int64, status string) (*model.FriendRequest, error)
		wantErr  error
	}{
		{
			name:     "accept",
			userID:   2,
			decision: model.DecisionAccept,
			getByID: func(ctx context.Context, id int64) (*model.FriendRequest, error) {
				return pendingRequest(id, 1, 2), nil
			},
		},
		{
			name:     "decline",
			userID:   2,
			decision: model.DecisionDecline,
			getByID: func(ctx context.Context, id int64) (*model.FriendRequest, error) {
				return pendingRequest(id, 1, 2), nil
			},
		},
		{
			name:     "invalid decision",
			userID:   2,
			decision: "maybe",
			wantErr:  model.ErrInvalidDecision,
		},
		{
			name:     "not the receiver",
			userID:   3,
			decision: model.DecisionAccept,
			getByID: func(ctx context.Context, id int64) (*model.FriendRequest, error) {
				return pendingRequest(id, 1, 2), nil
			},
			wantErr: model.ErrNotRequestReceiver,
		},
		{
			name:     "already resolved",
			userID:   2,
			decision: model.DecisionAccept,
			getByID: func(ctx context.Context, id int64) (*model.FriendRequest, error) {
				return pendingRequest(id, 1, 2), nil
			},
			resolve: func(ctx context.Context, id int64, status string) (*model.FriendRequest, error) {
				return nil, model.ErrRequestResolved
			},
			wantErr: model.ErrRequestResolved,
		},
		{
			name:     "request not found",
			userID:   2,
			decision: model.DecisionAccept,
			wantErr:  model.ErrRequestNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			friendRepo := &mockFriendRequestRepository{
				getByIDFn: tt.getByID,
				resolveFn: tt.resolve,
			}
			svc := NewFriendService(friendRepo, &mockUserRepository{}, nil)

			resolved, err := svc.Respond(context.Background(), tt.userID, 5, tt.decision)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resolved.RespondedAt == nil {
				t.Error("resolved request should have responded_at set")
			}
		})
	}
}

func TestFriendService_Respond_AcceptPublishesEvent(t *testing.T) {
	friendRepo := &mockFriendRequestRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.FriendRequest, error) {
			return pendingRequest(id, 1, 2), nil
		},
	}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, &mockUserRepository{}, pub)

	if _, err := svc.Respond(context.Background(), 2, 5, model.DecisionAccept); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	event := pub.events[0]
	if event.Type != queue.EventFriendAccepted {
		t.Errorf("event type = %q, want %q", event.Type, queue.EventFriendAccepted)
	}
	// The original sender gets notified, by the accepter.
	if event.ActorID != 2 || event.RecipientID != 1 {
		t.Errorf("event actor=%d recipient=%d, want actor=2 recipient=1", event.ActorID, event.RecipientID)
	}
}

func TestFriendService_Respond_DeclinePublishesNothing(t *testing.T) {
	friendRepo := &mockFriendRequestRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.FriendRequest, error) {
			return pendingRequest(id, 1, 2), nil
		},
	}
	pub := &mockPublisher{}
	svc := NewFriendService(friendRepo, &mockUserRepository{}, pub)

	if _, err := svc.Respond(context.Background(), 2, 5, model.DecisionDecline); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pub.events) != 0 {
		t.Errorf("decline should publish nothing, got %+v", pub.events)
	}
}

func TestFriendService_Friends_Empty(t *testing.T) {
	svc := NewFriendService(&mockFriendRequestRepository{}, &mockUserRepository{}, nil)

	friends, err := svc.Friends(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if friends == nil || len(friends) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", friends)
	}
}

func TestFriendService_Friends(t *testing.T) {
	friendRepo := &mockFriendRequestRepository{
		friendIDsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{2, 3}, nil
		},
	}
	svc := NewFriendService(friendRepo, &mockUserRepository{}, nil)

	friends, err := svc.Friends(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(friends) != 2 {
		t.Errorf("len(friends) = %d, want 2", len(friends))
	}
}
