package router

import (
	"fmt"

	"github.com/anonto42/nano-thread/backend/internal/blob"
	"github.com/anonto42/nano-thread/backend/internal/handlers"
	"github.com/anonto42/nano-thread/backend/internal/middleware"
	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/anonto42/nano-thread/backend/internal/services"
	"github.com/anonto42/nano-thread/backend/pkg/config"
	"github.com/anonto42/nano-thread/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// avatarBodyLimit leaves room for multipart framing around a maximum size image.
const avatarBodyLimit = "6M"

// Dependencies are the external resources the routes are built on.
type Dependencies struct {
	DB       *gorm.DB
	Blobs    blob.Store
	Verifier services.IDTokenVerifier // nil disables firebase login
	Config   *config.Config
	Log      *zap.Logger
}

// SetupRoutes migrates the schema, wires repositories and services, and registers every
// route. The returned func flushes pending notifications and must be called on shutdown.
func SetupRoutes(e *echo.Echo, deps Dependencies) (func(), error) {
	log := deps.Log
	cfg := deps.Config

	if err := repositories.Migrate(deps.DB); err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed")

	e.Validator = validators.NewValidator()
	e.Use(middleware.Metrics())

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(deps.DB).Check)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB)

	// --- Initialize Services ---
	decorator := services.NewDecorator(cfg.PublicBaseURL, cfg.DefaultAvatarURL)
	notificationService := services.NewNotificationService(notificationRepo, decorator, log)

	var emitter services.Emitter = notificationService
	closeEmitter := func() {}
	if cfg.NotifyAsync {
		async := services.NewAsyncEmitter(notificationService, cfg.NotifyWorkers, cfg.NotifyQueueSize, log)
		emitter = async
		closeEmitter = async.Close
		log.Info("asynchronous notification fan-out enabled",
			zap.Int("workers", cfg.NotifyWorkers),
			zap.Int("queue_size", cfg.NotifyQueueSize))
	}

	identity := services.NewIdentityService(userRepo, deps.Verifier, decorator, services.IdentityConfig{
		JWTSecret:  cfg.JWTSecret,
		JWTTTL:     cfg.JWTTTL,
		DefaultBio: cfg.DefaultBio,
	}, log)
	threads := services.NewThreadService(postRepo, emitter, decorator, log)
	engagement := services.NewEngagementService(likeRepo, postRepo, emitter)
	graph := services.NewFollowService(followRepo, userRepo, emitter, decorator)
	feed := services.NewFeedService(postRepo, userRepo, decorator)
	avatars := services.NewAvatarService(userRepo, deps.Blobs, decorator, log)

	avatarHandler := handlers.NewAvatarHandler(avatars)
	avatarHandler.RegisterFileRoutes(e)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(identity).RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(identity, handlers.UserIDKey))

	handlers.NewUserHandler(identity, feed).RegisterProfileRoutes(api)
	handlers.NewFeedHandler(feed).RegisterFeedRoutes(api)
	handlers.NewPostHandler(threads).RegisterPostRoutes(api)
	handlers.NewLikeHandler(engagement).RegisterLikeRoutes(api)
	handlers.NewFollowHandler(graph).RegisterFollowRoutes(api)
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api)
	avatarHandler.RegisterAvatarRoutes(api, handlers.AvatarBodyLimit(avatarBodyLimit))

	log.Info("All routes configured")
	return closeEmitter, nil
}
