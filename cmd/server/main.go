package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ecomstore/passport/accounts"
	passportapi "github.com/ecomstore/passport/api/echo"
	"github.com/ecomstore/passport/cache"
	redicache "github.com/ecomstore/passport/cache/redis"
	"github.com/ecomstore/passport/config"
	"github.com/ecomstore/passport/internal/federation"
	"github.com/ecomstore/passport/internal/metrics"
	"github.com/ecomstore/passport/internal/server"
	"github.com/ecomstore/passport/resolver"
	"github.com/ecomstore/passport/session"
	"github.com/ecomstore/passport/token"
)

var rootCmd = &cobra.Command{
	Use:   "passport",
	Short: "passport is the multi-store OAuth login broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogger(cfg)

	promRegistry := prometheus.NewRegistry()
	metrics.Init(promRegistry)

	profiles := newProfileCache(cfg)
	defer profiles.Close()

	accountsSvc := accounts.NewHTTPClient(cfg.StoreAPIURL, cfg.MainAPIURL)

	registry := federation.NewRegistry()
	registerGlobalProviders(registry, cfg)

	api := passportapi.NewPassportAPI(
		cfg,
		registry,
		session.NewManager(),
		profiles,
		accountsSvc,
		resolver.New(accountsSvc),
		token.NewIssuer(cfg.JWTSecret),
	)

	reconcileCtx, stopReconcile := context.WithCancel(ctx)
	defer stopReconcile()
	reconciler := federation.NewReconciler(registry, accountsSvc, cfg.ReconcileInterval(), cfg.ReconcileStagger())
	go reconciler.Run(reconcileCtx)

	httpServer := server.NewHTTPServer(cfg, api, promRegistry)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	stopReconcile()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newProfileCache(cfg *config.Config) cache.ProfileCache {
	if cfg.RedisAddr == "" {
		log.Info().Msg("using in-memory profile cache")
		return cache.NewMemoryProfileCache()
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis profile cache")
	return redicache.NewProfileCache(client)
}

// registerGlobalProviders installs the app-wide strategies from config.
// Providers with empty credentials are skipped, not errors.
func registerGlobalProviders(registry *federation.Registry, cfg *config.Config) {
	for provider, creds := range cfg.Providers {
		pair := federation.Credentials{ClientID: creds.ClientID, ClientSecret: creds.ClientSecret}
		if pair.Empty() {
			continue
		}
		if _, err := registry.Register(provider, 0, pair); err != nil {
			log.Warn().Err(err).Str("provider", provider).Msg("skipping global provider")
		}
	}
}
