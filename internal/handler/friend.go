package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"devnet/internal/httputil"
	"devnet/internal/model"
	"devnet/internal/service"
	"devnet/internal/transport/http/middleware"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// SendRequest sends a friend request by username
// POST /friend-requests
//
// The response always carries an outcome; only a missing receiver is an
// error. Clients render the outcome as feedback ("Request sent",
// "You are already friends", ...).
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.ReceiverUsername == "" {
		httputil.WriteBadRequest(w, "Receiver username is required")
		return
	}

	result, err := h.friendService.SendRequest(r.Context(), userID, req.ReceiverUsername)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] SendFriendRequest handler: %v", err)
		httputil.WriteInternalError(w, "Failed to send friend request")
		return
	}

	status := http.StatusOK
	if result.Outcome == model.OutcomeSent {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, result)
}

// respondBody is the request body for responding to a friend request.
type respondBody struct {
	Decision string `json:"decision"`
}

// Respond accepts or declines a pending friend request
// POST /friend-requests/{id}/respond
func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	requestID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid request ID")
		return
	}

	var body respondBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resolved, err := h.friendService.Respond(r.Context(), userID, requestID, body.Decision)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidDecision):
			httputil.WriteBadRequest(w, "Decision must be 'accept' or 'decline'")
		case errors.Is(err, model.ErrRequestNotFound):
			httputil.WriteNotFound(w, "Friend request not found")
		case errors.Is(err, model.ErrNotRequestReceiver):
			httputil.WriteForbidden(w, "Only the receiver can respond to this request")
		case errors.Is(err, model.ErrRequestResolved):
			httputil.WriteConflict(w, "Friend request already resolved")
		default:
			log.Printf("[ERROR] RespondFriendRequest handler: %v", err)
			httputil.WriteInternalError(w, "Failed to respond to friend request")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resolved)
}

// ListFriends returns the authenticated user's friends
// GET /friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	friends, err := h.friendService.Friends(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ListFriends handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list friends")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"friends": friends,
	})
}

// ListPending returns the authenticated user's incoming pending requests
// GET /friend-requests/pending
func (h *FriendHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	pending, err := h.friendService.PendingRequests(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ListPending handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list pending requests")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": pending,
	})
}
