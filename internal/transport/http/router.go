package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"devnet/internal/handler"
	"devnet/internal/httputil"
	authmw "devnet/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FeedHandler         *handler.FeedHandler
	PostHandler         *handler.PostHandler
	FriendHandler       *handler.FriendHandler
	ChatHandler         *handler.ChatHandler
	NotificationHandler *handler.NotificationHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Profiles
		r.Get("/users/{username}", cfg.UserHandler.GetProfile)
		r.Put("/profile", cfg.UserHandler.UpdateProfile)
		r.Put("/profile/avatar", cfg.UserHandler.UploadAvatar)

		// Feed
		r.Get("/feed", cfg.FeedHandler.GetFeed)

		// Posts
		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/posts/{id}/like", cfg.PostHandler.ToggleLike)
		r.Post("/posts/{id}/comments", cfg.PostHandler.AddComment)

		// Friend requests and friends
		r.Route("/friend-requests", func(r chi.Router) {
			r.Post("/", cfg.FriendHandler.SendRequest)
			r.Get("/pending", cfg.FriendHandler.ListPending)
			r.Post("/{id}/respond", cfg.FriendHandler.Respond)
		})
		r.Get("/friends", cfg.FriendHandler.ListFriends)

		// Chat
		r.Route("/chats", func(r chi.Router) {
			r.Get("/", cfg.ChatHandler.List)
			r.Get("/with/{username}", cfg.ChatHandler.Open)
			r.Post("/{id}/messages", cfg.ChatHandler.PostMessage)
		})

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Get("/unread-count", cfg.NotificationHandler.UnreadCount)
			r.Post("/read", cfg.NotificationHandler.MarkRead)
		})
	})

	return r
}
