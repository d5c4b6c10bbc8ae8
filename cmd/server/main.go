package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/membership-api/internal/config"
	"github.com/yukikurage/membership-api/internal/constants"
	"github.com/yukikurage/membership-api/internal/database"
	"github.com/yukikurage/membership-api/internal/handlers"
	"github.com/yukikurage/membership-api/internal/logger"
	"github.com/yukikurage/membership-api/internal/middleware"
	"github.com/yukikurage/membership-api/internal/notify"
	"github.com/yukikurage/membership-api/internal/repository"
	"github.com/yukikurage/membership-api/internal/security"
	"github.com/yukikurage/membership-api/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, zlog)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	// Run migrations
	if err := database.Migrate(db, zlog); err != nil {
		return err
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cfg, zlog)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(notifier, zlog, cfg.NotifyWorkers, cfg.NotifyQueueSize)

	// Wire services
	repos := repository.NewStore(db)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)

	authService := services.NewAuthService(repos, hasher, dispatcher, zlog)
	roleService := services.NewRoleService(repos)
	membershipService := services.NewMembershipService(repos, dispatcher, zlog)
	orgService := services.NewOrganizationService(repos, authService, dispatcher, zlog)
	statsService := services.NewStatsService(repos)

	r := gin.New()
	r.Use(gin.Recovery(), logger.AccessLog(zlog))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService, tokens, cfg.AccessTokenTTL, zlog),
		Organizations: handlers.NewOrganizationHandler(orgService, roleService, membershipService, zlog),
		Memberships:   handlers.NewMembershipHandler(orgService, roleService, membershipService, zlog),
		Stats:         handlers.NewStatsHandler(statsService, zlog),
	}, middleware.RequireAuth(tokens, authService), membershipService)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("Server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		zlog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	// Handlers are done; flush queued notifications.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zlog.Warn("Notification queue not drained", zap.Error(err))
	}
	zlog.Info("Server stopped")
	return nil
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		rs, err := redisStore.NewStore(
			10,              // Redis pool size
			"tcp",           // network type
			cfg.RedisAddr(), // Redis address from config
			"",              // username (empty for default user)
			"",              // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	default:
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenTTL / time.Second), // session expires with the access token
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func newNotifier(cfg *config.Config, zlog *zap.Logger) (notify.Notifier, error) {
	if cfg.EmailAPIKey == "" {
		zlog.Warn("EMAIL_API_KEY not set, notifications will only be logged")
		return notify.NewLogNotifier(zlog), nil
	}

	brevo := notify.NewBrevoNotifier(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailSenderName, cfg.EmailSender)
	if err := brevo.Validate(); err != nil {
		return nil, err
	}
	return brevo, nil
}
