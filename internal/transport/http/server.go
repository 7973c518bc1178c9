package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devnet/internal/cache"
	"devnet/internal/config"
	"devnet/internal/database"
	"devnet/internal/handler"
	"devnet/internal/queue"
	appredis "devnet/internal/redis"
	"devnet/internal/repository"
	"devnet/internal/service"
	"devnet/internal/worker"
)

// Run wires the whole application together and serves HTTP until the
// process receives SIGINT or SIGTERM.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Run migrations
	migrator, err := database.NewMigrator(cfg.MigrateURL(), cfg.MigrationsPath)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		return err
	}
	if err := migrator.Close(); err != nil {
		log.Printf("[Server] Closing migrator: %v", err)
	}

	// 3. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 4. Connect to Redis
	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	if err := redisClient.Ping(context.Background()); err != nil {
		return err
	}
	defer redisClient.Close()

	// 5. Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	friendRepo := repository.NewFriendRequestRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	convRepo := repository.NewConversationRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// 6. Queue and cache
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)
	unreadCache := cache.NewUnreadCache(redisClient.Client)

	// 7. Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, friendRepo, postRepo, commentRepo)
	friendService := service.NewFriendService(friendRepo, userRepo, publisher)
	postService := service.NewPostService(postRepo, commentRepo, db, publisher)
	feedService := service.NewFeedService(postRepo, commentRepo, friendRepo)
	chatService := service.NewChatService(convRepo, friendRepo, userRepo)
	notificationService := service.NewNotificationService(notifRepo, unreadCache)

	// Media is optional: without R2 credentials the server runs but avatar
	// uploads return 503.
	var mediaService *service.MediaService
	if svc, err := service.NewMediaService(context.Background(), cfg, userRepo); err != nil {
		log.Printf("[Server] Media service disabled: %v", err)
	} else {
		mediaService = svc
	}

	// 8. Notification workers
	workerHandler := worker.NewHandler(notifRepo, unreadCache)
	manager := worker.NewManager(consumer, workerHandler, worker.ManagerConfig{
		WorkerCount: cfg.WorkerCount,
	})
	if err := manager.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	// 9. Handlers and router
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		UserHandler:         handler.NewUserHandler(userService, mediaService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		PostHandler:         handler.NewPostHandler(postService),
		FriendHandler:       handler.NewFriendHandler(friendService),
		ChatHandler:         handler.NewChatHandler(chatService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received signal %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
