// Package server contains the HTTP handlers and route composition for the
// application.
package server

import (
	"context"
	"sync"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/feed"
	"quill/internal/middleware"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config  *config.Config
	db      *gorm.DB
	redis   *redis.Client
	users   repository.UserRepository
	feed    *feed.Service
	images  *storage.ImageStore
	tracing func(context.Context) error
}

// NewServer creates a new server instance with all dependencies wired from
// the configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	tracingShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "quill",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TraceExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}

	images, err := storage.NewImageStore(context.Background(), cfg)
	if err != nil {
		middleware.Logger.Warn("Image storage unavailable, uploads disabled", "error", err)
		images = nil
	}

	srv := NewServerWithDeps(cfg, db, cache.GetClient(), images)
	srv.tracing = tracingShutdown
	return srv, nil
}

// Shutdown releases server resources: the tracer provider, the Redis client
// and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.tracing != nil {
		if err := s.tracing(ctx); err != nil {
			middleware.Logger.Warn("Tracer shutdown error", "error", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Warn("Redis close error", "error", err)
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewServerWithDeps assembles a server over externally constructed
// dependencies. Tests use it with an in-memory database and no Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, images *storage.ImageStore) *Server {
	users := repository.NewUserRepository(db)
	groups := repository.NewGroupRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	follows := repository.NewFollowRepository(db)

	return &Server{
		config: cfg,
		db:     db,
		redis:  rdb,
		users:  users,
		feed:   feed.NewService(users, groups, posts, comments, follows),
		images: images,
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// fiberprometheus registers its collectors in the default registry, so the
// middleware must be created exactly once per process even when multiple apps
// are built (as tests do).
var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	promOnce.Do(func() {
		promMW = fiberprometheus.New("quill")
	})
	promMW.RegisterAt(app, "/metrics")
	app.Use(promMW.Middleware)

	app.Get("/health", s.HealthCheck)

	// Auth
	app.Get("/auth/login/", s.LoginForm)
	app.Post("/auth/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Post("/auth/signup/", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)

	// Index is the only cached page; one slot, 20 second TTL.
	app.Get("/", cache.CachedPage(cache.IndexPageKey, cache.IndexPageTTL), s.Index)

	// Specific /group/create/ must precede the /group/:slug/ wildcard
	app.Get("/group/create/", middleware.AuthRequired, s.NewGroupForm)
	app.Post("/group/create/", middleware.AuthRequired, s.CreateGroup)
	app.Get("/group/:slug/", s.GroupPosts)

	app.Get("/profile/:username/", middleware.OptionalAuth, s.Profile)
	app.Post("/profile/:username/follow/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.Follow)
	app.Post("/profile/:username/unfollow/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.Unfollow)

	app.Get("/create/", middleware.AuthRequired, s.NewPostForm)
	app.Post("/create/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)

	app.Get("/posts/:id/", s.PostDetail)
	app.Get("/posts/:id/edit/", middleware.AuthRequired, s.EditPostForm)
	app.Post("/posts/:id/edit/", middleware.AuthRequired, s.EditPost)
	app.Post("/posts/:id/delete/", middleware.AuthRequired, s.DeletePost)
	app.Post("/posts/:id/comment/", middleware.AuthRequired,
		middleware.RateLimit(s.redis, 15, time.Minute, "comment"), s.AddComment)

	app.Get("/follow/", middleware.AuthRequired, s.FollowIndex)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
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
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
