package service

import (
	"context"
	"errors"
	"fmt"

	"devnet/internal/model"
	"devnet/internal/repository"
)

// ChatService gates two-party chat on friendship. Both policy checks run
// before any conversation row is read or created: a denied open leaves no
// trace in the database.
type ChatService struct {
	convRepo   repository.ConversationRepository
	friendRepo repository.FriendRequestRepository
	userRepo   repository.UserRepository
}

func NewChatService(
	convRepo repository.ConversationRepository,
	friendRepo repository.FriendRequestRepository,
	userRepo repository.UserRepository,
) *ChatService {
	return &ChatService{
		convRepo:   convRepo,
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// OpenThread finds or creates the conversation between the user and the
// named partner and returns it with its full message history. Opening a
// thread with yourself or a non-friend is denied before any row is touched.
func (s *ChatService) OpenThread(ctx context.Context, userID int64, partnerUsername string) (*model.ChatThread, error) {
	partner, err := s.userRepo.GetByUsername(ctx, partnerUsername)
	if err != nil {
		return nil, err
	}

	if partner.ID == userID {
		return nil, model.ErrSelfChat
	}

	areFriends, err := s.friendRepo.AreFriends(ctx, userID, partner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if !areFriends {
		return nil, model.ErrNotFriends
	}

	conv, err := s.between(ctx, userID, partner.ID)
	if err != nil {
		return nil, err
	}

	messages, err := s.convRepo.MessagesFor(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	summaries, err := s.userRepo.GetSummaries(ctx, []int64{partner.ID})
	if err != nil || len(summaries) == 0 {
		return nil, model.ErrUserNotFound
	}

	return &model.ChatThread{
		Conversation: *conv,
		Other:        summaries[0],
		Messages:     messages,
	}, nil
}

// PostMessage appends a message to the conversation. The sender must be a
// participant, and the pair must still be friends: friendship is re-derived
// on every send, so chat access ends the moment it would stop being true.
func (s *ChatService) PostMessage(ctx context.Context, userID, conversationID int64, req *model.PostMessageRequest) (*model.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, model.ErrConversationNotFound
	}

	other := conv.OtherParticipant(userID)
	areFriends, err := s.friendRepo.AreFriends(ctx, userID, other)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if !areFriends {
		return nil, model.ErrNotFriends
	}

	return s.convRepo.InsertMessage(ctx, conversationID, userID, req.Body)
}

// ChatList returns the user's conversations newest first, each with the
// other participant and the latest message, plus the friend list for
// starting new threads.
func (s *ChatService) ChatList(ctx context.Context, userID int64) (*model.ChatListResponse, error) {
	convs, err := s.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	friendIDs, err := s.friendRepo.FriendIDsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute friend set: %w", err)
	}

	var friends []model.UserSummary
	if len(friendIDs) > 0 {
		friends, err = s.userRepo.GetSummaries(ctx, friendIDs)
		if err != nil {
			return nil, err
		}
	} else {
		friends = []model.UserSummary{}
	}

	summaries := make([]model.ChatSummary, 0, len(convs))
	if len(convs) == 0 {
		return &model.ChatListResponse{Conversations: summaries, Friends: friends}, nil
	}

	convIDs := make([]int64, len(convs))
	otherIDs := make([]int64, len(convs))
	for i, conv := range convs {
		convIDs[i] = conv.ID
		otherIDs[i] = conv.OtherParticipant(userID)
	}

	lastByConv, err := s.convRepo.LastMessages(ctx, convIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load last messages: %w", err)
	}

	others, err := s.userRepo.GetSummaries(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	otherByID := make(map[int64]model.UserSummary, len(others))
	for _, u := range others {
		otherByID[u.ID] = u
	}

	for _, conv := range convs {
		summary := model.ChatSummary{
			Conversation: conv,
			Other:        otherByID[conv.OtherParticipant(userID)],
		}
		if last, ok := lastByConv[conv.ID]; ok {
			summary.LastMessage = &last
		}
		summaries = append(summaries, summary)
	}

	return &model.ChatListResponse{Conversations: summaries, Friends: friends}, nil
}

// between finds or creates the conversation for the pair. Losing the unique
// constraint race to a concurrent open is fine: re-fetch and both callers
// land on the same row.
func (s *ChatService) between(ctx context.Context, userA, userB int64) (*model.Conversation, error) {
	conv, err := s.convRepo.Find(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, model.ErrConversationNotFound) {
		return nil, err
	}

	conv, err = s.convRepo.Create(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if errors.Is(err, model.ErrConversationExists) {
		return s.convRepo.Find(ctx, userA, userB)
	}
	return nil, err
}
