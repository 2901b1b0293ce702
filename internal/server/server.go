// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"time"

	"talenta/internal/bootstrap"
	"talenta/internal/config"
	"talenta/internal/featureflags"
	"talenta/internal/middleware"
	"talenta/internal/models"
	"talenta/internal/notifications"
	"talenta/internal/repository"
	"talenta/internal/service"
	"talenta/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "talenta-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	blobs          storage.BlobStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	tokens         *middleware.Tokens
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	authSvc         *service.AuthService
	notificationSvc *service.NotificationService
	feedSvc         *service.FeedService
	postSvc         *service.PostService
	engagementSvc   *service.EngagementService
	messageSvc      *service.MessageService
	profileSvc      *service.ProfileService
	referenceSvc    *service.ReferenceService
}

// NewServer connects to the database, Redis and object storage and builds a
// Server around them.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Blobs)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and storage.
// A nil redisClient disables caching, tickets and the realtime hub.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs storage.BlobStore) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}

	profiles := repository.NewProfileRepository(db)
	posts := repository.NewPostRepository(db)
	likes := repository.NewLikeRepository(db)
	follows := repository.NewFollowRepository(db)
	comments := repository.NewCommentRepository(db)
	messages := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	references := repository.NewReferenceRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		blobs:          blobs,
		promMiddleware: middleware.InitMetrics(serviceName),
		tokens:         middleware.NewTokens(cfg.JWTSecret, 0),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	var publisher service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}

	limits := service.MediaLimitsFromConfig(cfg)
	s.notificationSvc = service.NewNotificationService(notificationRepo, messages, profiles, publisher)
	s.authSvc = service.NewAuthService(profiles, s.notificationSvc, s.tokens, redisClient, cfg.Env == "development")
	s.feedSvc = service.NewFeedService(posts, profiles, likes, redisClient, s.featureFlags)
	s.postSvc = service.NewPostService(posts, blobs, s.notificationSvc, s.feedSvc, limits)
	s.engagementSvc = service.NewEngagementService(posts, profiles, likes, follows, comments, s.notificationSvc)
	s.messageSvc = service.NewMessageService(messages, profiles, s.notificationSvc, publisher)
	s.profileSvc = service.NewProfileService(profiles, blobs, s.featureFlags, limits)
	s.referenceSvc = service.NewReferenceService(references, blobs, limits)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Propagates request, user and trace IDs into the request context.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before anything that can short-circuit so browsers still
	// see the headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	auth := s.AuthRequired()
	optional := s.OptionalUser()

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.SignUp)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.SignIn)
	authGroup.Post("/logout", auth, s.SignOut)
	authGroup.Post("/forgot-password", middleware.RateLimit(s.redis, 3, 15*time.Minute, "forgot_password"), s.ForgotPassword)
	authGroup.Post("/reset-password", middleware.RateLimit(s.redis, 5, 15*time.Minute, "reset_password"), s.ResetPassword)
	authGroup.Get("/me", auth, s.CurrentUser)

	api.Post("/ws/ticket", auth, s.IssueWSTicket)
	api.Get("/ws", auth, s.WebsocketHandler())

	api.Get("/feature-flags", optional, s.GetFeatureFlags)

	api.Get("/feed", optional, s.GetFeed)
	api.Get("/feed/trending-skills", s.GetTrendingSkills)
	api.Get("/skills/suggested", s.GetSuggestedSkills)
	api.Get("/search", optional, middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.Search)

	posts := api.Group("/posts")
	posts.Post("/", auth, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	// Specific /:id/:resource routes before the generic /:id routes.
	posts.Post("/:id/like/toggle", auth, s.ToggleLike)
	posts.Post("/:id/like", auth, s.LikePost)
	posts.Delete("/:id/like", auth, s.UnlikePost)
	posts.Post("/:id/share", auth, s.SharePost)
	posts.Get("/:id/comments", optional, s.GetComments)
	posts.Post("/:id/comments", auth, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", optional, s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	profiles := api.Group("/profiles")
	profiles.Put("/me", auth, s.UpdateMyProfile)
	profiles.Patch("/me/hireable", auth, s.SetHireable)
	profiles.Get("/:id/follow", auth, s.GetFollowStatus)
	profiles.Post("/:id/follow", auth, s.FollowProfile)
	profiles.Delete("/:id/follow", auth, s.UnfollowProfile)
	profiles.Post("/:id/hire", auth, middleware.RateLimit(s.redis, 5, time.Hour, "hire_inquiry"), s.HireInquiry)
	profiles.Get("/:id/posts", optional, s.GetProfilePosts)
	profiles.Get("/:id/references", s.GetProfileReferences)
	profiles.Get("/:id", optional, s.GetProfile)

	references := api.Group("/references", auth)
	references.Post("/", s.AddReference)
	references.Delete("/:id", s.DeleteReference)

	notifs := api.Group("/notifications", auth)
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	api.Get("/badges", auth, s.GetBadges)

	messages := api.Group("/messages", auth)
	messages.Get("/conversations", s.GetConversations)
	messages.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/:partnerId", s.GetMessageHistory)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	storageStatus := "healthy"
	if s.blobs == nil {
		storageStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "Talenta API",
		BodyLimit: int(config.MaxBytes(s.config.PostMediaMaxMB, 50)) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	s.startHubWiring(s.shutdownCtx)

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// startHubWiring feeds Redis notification events to the websocket hub until
// ctx is cancelled. It is a no-op without Redis.
func (s *Server) startHubWiring(ctx context.Context) {
	if s.notifier == nil || s.hub == nil {
		return
	}
	go func() {
		if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start hub wiring", "hub", s.hub.Name(), "error", err)
		}
	}()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
