package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"devnet/internal/model"
	"devnet/internal/queue"
	"devnet/internal/repository"
)

// FriendService owns the friend-request lifecycle. Friendship itself is
// never stored: it is derived from accepted requests every time it is
// needed, so accepting or declining takes effect immediately everywhere.
type FriendService struct {
	friendRepo repository.FriendRequestRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFriendService(
	friendRepo repository.FriendRequestRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// SendRequest attempts to create a pending request from senderID to the
// named receiver. Every branch returns an outcome rather than an error so
// the caller always has user-facing feedback:
//
//   - self target            -> self_request, nothing created
//   - already friends        -> already_friends
//   - own request pending    -> already_pending
//   - own request resolved   -> previously_resolved (resolved rows are final)
//   - their request pending  -> mutual_accepted (accept it, don't duplicate)
//   - otherwise              -> sent
func (s *FriendService) SendRequest(ctx context.Context, senderID int64, receiverUsername string) (*model.SendFriendRequestResponse, error) {
	receiver, err := s.userRepo.GetByUsername(ctx, receiverUsername)
	if err != nil {
		return nil, err
	}

	if receiver.ID == senderID {
		return &model.SendFriendRequestResponse{Outcome: model.OutcomeSelfRequest}, nil
	}

	areFriends, err := s.friendRepo.AreFriends(ctx, senderID, receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if areFriends {
		return &model.SendFriendRequestResponse{Outcome: model.OutcomeAlreadyFriends}, nil
	}

	// A pending request in the other direction means both sides want the
	// connection. Accept it instead of creating a mirror row.
	reverse, err := s.friendRepo.GetByPair(ctx, receiver.ID, senderID)
	if err != nil && !errors.Is(err, model.ErrRequestNotFound) {
		return nil, fmt.Errorf("failed to check reverse request: %w", err)
	}
	if err == nil && !reverse.IsResolved() {
		accepted, err := s.friendRepo.Resolve(ctx, reverse.ID, model.RequestStatusAccepted)
		if err != nil {
			if errors.Is(err, model.ErrRequestResolved) {
				// Lost a race with the receiver's own response; friendship
				// state is whatever that response decided.
				return &model.SendFriendRequestResponse{Outcome: model.OutcomeAlreadyPending}, nil
			}
			return nil, err
		}
		s.publishFriendAccepted(ctx, senderID, receiver.ID, accepted.ID)
		return &model.SendFriendRequestResponse{
			Outcome: model.OutcomeMutualAccepted,
			Request: accepted,
		}, nil
	}

	request, inserted, err := s.friendRepo.Insert(ctx, senderID, receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	if !inserted {
		if request.IsResolved() {
			return &model.SendFriendRequestResponse{Outcome: model.OutcomePreviouslyResolved, Request: request}, nil
		}
		return &model.SendFriendRequestResponse{Outcome: model.OutcomeAlreadyPending, Request: request}, nil
	}

	s.publishFriendRequested(ctx, senderID, receiver.ID, request.ID)

	return &model.SendFriendRequestResponse{Outcome: model.OutcomeSent, Request: request}, nil
}

// Respond resolves a pending request. Only the receiver may respond, and a
// request can be resolved exactly once; concurrent responses lose with
// ErrRequestResolved.
func (s *FriendService) Respond(ctx context.Context, userID, requestID int64, decision string) (*model.FriendRequest, error) {
	var status string
	switch decision {
	case model.DecisionAccept:
		status = model.RequestStatusAccepted
	case model.DecisionDecline:
		status = model.RequestStatusDeclined
	default:
		return nil, model.ErrInvalidDecision
	}

	request, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.ReceiverID != userID {
		return nil, model.ErrNotRequestReceiver
	}

	resolved, err := s.friendRepo.Resolve(ctx, requestID, status)
	if err != nil {
		return nil, err
	}

	if status == model.RequestStatusAccepted {
		s.publishFriendAccepted(ctx, userID, request.SenderID, resolved.ID)
	}

	return resolved, nil
}

// Friends returns the user's current friends, derived fresh from accepted
// requests.
func (s *FriendService) Friends(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	ids, err := s.friendRepo.FriendIDsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute friend set: %w", err)
	}
	if len(ids) == 0 {
		return []model.UserSummary{}, nil
	}
	return s.userRepo.GetSummaries(ctx, ids)
}

// AreFriends reports whether the two users are connected by an accepted
// request in either direction.
func (s *FriendService) AreFriends(ctx context.Context, userA, userB int64) (bool, error) {
	return s.friendRepo.AreFriends(ctx, userA, userB)
}

// PendingRequests returns the user's incoming pending requests, newest first.
func (s *FriendService) PendingRequests(ctx context.Context, userID int64) ([]model.FriendRequestView, error) {
	return s.friendRepo.PendingFor(ctx, userID)
}

func (s *FriendService) publishFriendRequested(ctx context.Context, senderID, receiverID, requestID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewFriendRequestedEvent(senderID, receiverID, requestID)
	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
		log.Printf("[FriendService] Failed to publish FriendRequested event: sender=%d receiver=%d err=%v",
			senderID, receiverID, err)
	}
}

func (s *FriendService) publishFriendAccepted(ctx context.Context, accepterID, senderID, requestID int64) {
	if s.publisher == nil {
		return
	}
	event := queue.NewFriendAcceptedEvent(accepterID, senderID, requestID)
	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
		log.Printf("[FriendService] Failed to publish FriendAccepted event: accepter=%d sender=%d err=%v",
			accepterID, senderID, err)
	}
}
