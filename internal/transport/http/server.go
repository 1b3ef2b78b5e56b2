package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videotube/internal/cache"
	"videotube/internal/config"
	"videotube/internal/database"
	"videotube/internal/handler"
	"videotube/internal/logger"
	"videotube/internal/redis"
	"videotube/internal/repository"
	"videotube/internal/service"
)

// Run loads configuration, wires every component and serves HTTP until
// SIGINT or SIGTERM, then shuts down within the configured timeout.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	sameSite, err := cfg.SameSite()
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.LogRole)
	if !cfg.EnvFileLoaded {
		log.Info().Msg("no .env file found, relying on environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBAutoSchema {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("database schema ensured")
	}

	// 3. Optional Redis channel cache
	var channels cache.ChannelCache = cache.NopChannelCache{}
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		channels = cache.NewRedisChannelCache(client.Client, cfg.ChannelCacheTTL)
		log.Info().Dur("ttl", cfg.ChannelCacheTTL).Msg("channel cache enabled")
	}

	// 4. Media and upload staging
	uploader, err := service.NewMediaUploader(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init media uploader: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}
	stager := handler.NewStager(cfg.UploadDir)

	// 5. Repositories and services
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	tokens := service.NewTokenIssuer(service.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenExpiry,
		Issuer:        cfg.TokenIssuer,
	})
	authService := service.NewAuthService(userRepo, service.NewBcryptHasher(cfg.BcryptCost), tokens, uploader)
	userService := service.NewUserService(userRepo, subRepo, uploader, channels)
	subscriptionService := service.NewSubscriptionService(subRepo, userRepo, channels)

	// 6. Handlers and router
	cookies := handler.CookieConfig{
		Secure:     cfg.CookieSecure,
		SameSite:   sameSite,
		Domain:     cfg.CookieDomain,
		AccessTTL:  tokens.AccessTTL(),
		RefreshTTL: tokens.RefreshTTL(),
	}
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(authService, stager, cookies),
		UserHandler:         handler.NewUserHandler(userService, stager),
		SubscriptionHandler: handler.NewSubscriptionHandler(subscriptionService),
		Verifier:            tokens,
		Logger:              log,
		CORSOrigin:          cfg.CORSOrigin,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 7. Serve until a signal arrives
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
