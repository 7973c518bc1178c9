package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devnet/internal/httputil"
	"devnet/internal/model"
	"devnet/internal/service"
	"devnet/internal/transport/http/middleware"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// List returns the viewer's conversations and friends
// GET /chats
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	list, err := h.chatService.ChatList(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] ChatList handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list chats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, list)
}

// Open finds or creates the thread with the named partner
// GET /chats/with/{username}
//
// Policy denials carry a redirect hint so clients can send the user back
// to the right page with feedback instead of showing a dead end.
func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	username := chi.URLParam(r, "username")
	if username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	thread, err := h.chatService.OpenThread(r.Context(), userID, username)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrSelfChat):
			httputil.WriteErrorRedirect(w, http.StatusForbidden, httputil.ErrCodeForbidden,
				"You cannot chat with yourself", "/chats")
		case errors.Is(err, model.ErrNotFriends):
			httputil.WriteErrorRedirect(w, http.StatusForbidden, httputil.ErrCodeForbidden,
				"You can only chat with friends", "/users/"+username)
		default:
			log.Printf("[ERROR] OpenChat handler: %v", err)
			httputil.WriteInternalError(w, "Failed to open chat")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, thread)
}

// PostMessage appends a message to a conversation
// POST /chats/{id}/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	conversationID, err := parseIDParam(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid conversation ID")
		return
	}

	var req model.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	message, err := h.chatService.PostMessage(r.Context(), userID, conversationID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrBodyRequired):
			httputil.WriteBadRequest(w, "Message body is required")
		case errors.Is(err, model.ErrBodyTooLong):
			httputil.WriteBadRequest(w, "Message body exceeds maximum length")
		case errors.Is(err, model.ErrConversationNotFound):
			httputil.WriteNotFound(w, "Conversation not found")
		case errors.Is(err, model.ErrNotFriends):
			httputil.WriteForbidden(w, "You can only chat with friends")
		default:
			log.Printf("[ERROR] PostMessage handler: %v", err)
			httputil.WriteInternalError(w, "Failed to send message")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, message)
}
