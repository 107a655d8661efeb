// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"agora/internal/archive"
	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/reward"
	"agora/internal/social"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	engine         *social.Engine
	rewards        reward.Sink
	archive        *archive.Store
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	redisClient := initRedis(cfg.RedisURL)

	var sink reward.Sink
	if redisClient != nil {
		sink = reward.NewRedisSink(redisClient)
	} else {
		log.Println("Redis unavailable: reward balances held in process memory")
		sink = reward.NewMemorySink()
	}

	var store *archive.Store
	if cfg.ArchiveDriver != "" {
		var err error
		store, err = archive.Open(cfg.ArchiveDriver, cfg.ArchiveDSN)
		if err != nil {
			return nil, fmt.Errorf("event archive connection failed: %w", err)
		}
	}

	srv := newServer(cfg, redisClient, sink, store)
	srv.promMiddleware = middleware.InitMetrics("agora-api")
	return srv, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes Redis and the
// archive. HTTP metrics are left off; collectors register globally and must
// only be created once per process.
func NewServerWithDeps(cfg *config.Config, redisClient *redis.Client, sink reward.Sink, store *archive.Store) *Server {
	return newServer(cfg, redisClient, sink, store)
}

func newServer(cfg *config.Config, redisClient *redis.Client, sink reward.Sink, store *archive.Store) *Server {
	middleware.InitMiddleware(cfg)

	srv := &Server{
		config:  cfg,
		redis:   redisClient,
		rewards: sink,
		archive: store,
		hub:     notifications.NewHub(),
	}
	if redisClient != nil {
		srv.notifier = notifications.NewNotifier(redisClient)
	}

	likeReward := cfg.LikeReward
	if likeReward == 0 {
		likeReward = reward.DefaultLikeReward
	}

	srv.engine = social.NewEngine(social.Options{
		Rewards: sink,
		Events: &eventFanout{
			notifier:   srv.notifier,
			hub:        srv.hub,
			archive:    store,
			likeReward: likeReward,
		},
		LikeReward: likeReward,
	})
	return srv
}

// initRedis dials the configured Redis instance. The address may be either a
// host:port pair or a redis:// URL. A missing or unreachable Redis is not
// fatal; realtime delivery and durable balances degrade gracefully.
func initRedis(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("Redis connection warning: invalid REDIS_URL %q: %v (continuing without Redis)", addr, err)
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without Redis)", err)
		return nil
	}
	log.Println("Redis connected successfully")
	return client
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and caller identity
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Backwards-compatible legacy route: map /health to readiness
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Agora Backend Metrics Dashboard",
	}))

	// Public profile routes (reads are open; identity is externally issued)
	profiles := api.Group("/profiles")
	// Define specific /:identity/:resource routes BEFORE generic /:identity route
	profiles.Get("/:identity/followers/:follower", s.GetFollowStatus)
	profiles.Get("/:identity/followers", s.GetFollowers)
	profiles.Get("/:identity", s.GetProfile)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	protected.Post("/profiles", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "create_profile"), s.CreateProfile)

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/reactions", s.CreateReaction)
	posts.Get("/:id", s.GetPost)

	// Follow graph routes
	follows := protected.Group("/follows")
	follows.Post("/", s.Follow)
	follows.Delete("/:target", s.Unfollow)

	// Reward routes
	protected.Get("/rewards/balance", s.GetRewardBalance)

	// Websocket event stream - token accepted via query for browser clients
	events := api.Group("/events", middleware.WebSocketAuthRequired)
	events.Get("/ws", s.EventStreamHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The social state lives in
// process memory, so only the configured optional dependencies are probed.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	status := fiber.StatusOK
	overallStatus := "healthy"

	redisStatus := "not configured"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
			status = fiber.StatusServiceUnavailable
			overallStatus = "unhealthy"
		}
	}

	archiveStatus := "not configured"
	if s.archive != nil {
		archiveStatus = "healthy"
		if err := s.archive.Ping(ctx); err != nil {
			archiveStatus = "unhealthy"
			status = fiber.StatusServiceUnavailable
			overallStatus = "unhealthy"
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"redis":   redisStatus,
			"archive": archiveStatus,
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
		AppName: "Agora API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to the Redis subscriber if available
	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the wiring goroutine
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close WebSocket connections gracefully
	if err := s.hub.Shutdown(ctx); err != nil {
		log.Printf("error shutting down %s: %v", s.hub.Name(), err)
	}

	// Close the event archive
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			log.Printf("error closing event archive: %v", err)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
