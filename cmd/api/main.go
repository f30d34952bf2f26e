// Package main is the entrypoint for the DevConnect API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/cache"
	"github.com/devconnect/devconnect/internal/config"
	"github.com/devconnect/devconnect/internal/handler"
	"github.com/devconnect/devconnect/internal/metrics"
	"github.com/devconnect/devconnect/internal/middleware"
	"github.com/devconnect/devconnect/internal/migrations"
	"github.com/devconnect/devconnect/internal/repository"
	"github.com/devconnect/devconnect/internal/server"
	"github.com/devconnect/devconnect/internal/service"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.WithKeyPrefix(cfg.RedisKeyPrefix))
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authService := service.NewAuthService(repo, newHasher(cfg), tokens, metricsRecorder)
	profileService := service.NewProfileService(repo, repo, metricsRecorder)
	postService := service.NewPostService(repo, repo, metricsRecorder)

	// Initialize handlers
	handlers := routeHandlers{
		base: handler.New(version),
		health: handler.NewHealthHandler(logger,
			handler.Dependency{Name: "database", Checker: repo},
			handler.Dependency{Name: "redis", Checker: cacheClient},
		),
		metrics: handler.NewMetricsHandler(metricsRecorder),
		auth:    handler.NewAuthHandler(authService, logger),
		profile: handler.NewProfileHandler(profileService, logger),
		post:    handler.NewPostHandler(postService, logger),
	}

	// Setup router
	r := setupRouter(handlers, tokens, cacheClient, metricsRecorder, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Closed in reverse order after the HTTP server stops.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHasher returns the password hasher selected by PASSWORD_ALGORITHM.
// Either hasher verifies hashes written by the other.
func newHasher(cfg *config.Config) *auth.PasswordHasher {
	if cfg.PasswordAlgorithm == config.PasswordBcrypt {
		return auth.NewBcryptHasher(cfg.BcryptCost)
	}
	return auth.NewArgon2Hasher()
}

func migrate(ctx context.Context, databaseURL string) error {
	db, err := migrations.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrations.Up(ctx, db)
}

type routeHandlers struct {
	base    *handler.Handler
	health  *handler.HealthHandler
	metrics *handler.MetricsHandler
	auth    *handler.AuthHandler
	profile *handler.ProfileHandler
	post    *handler.PostHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h routeHandlers,
	tokens *auth.TokenService,
	limiter middleware.RateLimiter,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	if !strings.EqualFold(cfg.TokenHeader, middleware.DefaultTokenHeader) {
		corsCfg.AllowedHeaders = append(corsCfg.AllowedHeaders, cfg.TokenHeader)
	}

	// Global middleware
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	// Root info endpoint
	r.Get("/", h.base.Hello)

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Verifier: tokens,
		Metrics:  recorder,
		Header:   cfg.TokenHeader,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:      logger,
		Limiter:     limiter,
		UserEnabled: cfg.RateLimitAPIEnabled,
		UserRPM:     cfg.RateLimitAPIRPM,
		UserBurst:   cfg.RateLimitAPIBurst,
		IPEnabled:   cfg.RateLimitAuthEnabled,
		IPRPS:       cfg.RateLimitAuthRPS,
		IPBurst:     cfg.RateLimitAuthBurst,
	}

	r.Route("/api", func(r chi.Router) {
		// Credential routes, limited per client IP
		r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/user/register", h.auth.Register)
		r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/auth", h.auth.Login)

		// Public reads
		r.Get("/profile", h.profile.List)
		r.Get("/profile/user/{user_id}", h.profile.GetByUser)
		r.Get("/post", h.post.List)
		r.Get("/post/{id}", h.post.Get)

		// Private routes behind the auth gate, limited per identity
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Get("/auth", h.auth.Me)

			r.Get("/profile/me", h.profile.Me)
			r.Post("/profile", h.profile.Upsert)
			r.Delete("/profile", h.profile.Delete)
			r.Put("/profile/experience", h.profile.AddExperience)
			r.Delete("/profile/experience/{exp_id}", h.profile.DeleteExperience)
			r.Put("/profile/education", h.profile.AddEducation)
			r.Delete("/profile/education/{edu_id}", h.profile.DeleteEducation)

			r.Post("/post", h.post.Create)
			r.Patch("/post/{id}", h.post.Update)
			r.Delete("/post/{id}", h.post.Delete)
			r.Put("/post/like/{id}", h.post.Like)
			r.Put("/post/unlike/{id}", h.post.Unlike)
			r.Post("/post/comment/{id}", h.post.Comment)
			r.Delete("/post/comment/{id}/{comment_id}", h.post.DeleteComment)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.base.NotFound)
	r.MethodNotAllowed(h.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
