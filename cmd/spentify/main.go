package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spentify/internal/auth"
	"spentify/internal/backend"
	"spentify/internal/cli"
	apphttp "spentify/internal/http"
	"spentify/internal/insights"
	"spentify/internal/log"
	"spentify/internal/services"
	"spentify/internal/users"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	resolver := users.NewResolver(result.Store, logger)
	records := services.NewRecordService(result.Store, result.Publisher, logger)

	var chat insights.ChatClient
	if insights.StateOf(cfg.AIAPIKey) == insights.CredentialValid {
		chat = insights.NewOpenAIClient(insights.ClientConfig{
			APIKey:   cfg.AIAPIKey,
			BaseURL:  cfg.AIBaseURL,
			Model:    cfg.AIModel,
			AppURL:   cfg.AppURL,
			AppTitle: cfg.AppTitle,
			Timeout:  cfg.AITimeout,
		})
	}
	generator := insights.New(insights.Config{
		APIKey:         cfg.AIAPIKey,
		CurrencySymbol: cfg.CurrencySymbol,
		Timeout:        cfg.AITimeout,
	}, chat, logger)
	logger.Info("Insight generator ready", "online", generator.Online(), log.FieldModel, cfg.AIModel)

	oauthEnabled := auth.InitProviders(cfg, logger)
	sessions := auth.NewSessionStore(cfg.SessionSecret, cfg.IsProduction())
	devEmail := cfg.DevAuthEmail
	if cfg.IsProduction() && devEmail != "" {
		logger.Warn("Ignoring DEV_AUTH_EMAIL in production")
		devEmail = ""
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Records:      records,
		Insights:     generator,
		Health:       result.Store,
		Auth:         auth.NewAuthenticator(sessions, resolver, devEmail, apphttp.WriteAuthError, logger),
		AuthHandlers: auth.NewHandlers(oauthEnabled, sessions, resolver, logger),
		Logger:       logger,

		CurrencySymbol:     cfg.CurrencySymbol,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		HomeCacheSize:      cfg.HomeCacheSize,
		HomeCacheTTL:       cfg.HomeCacheTTL,
	})
	srv.ReadTimeout = 15 * time.Second
	// Model calls can take a while.
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting spentify server", "port", cfg.Port, "backend", cfg.DataBackend, "oauth", oauthEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
