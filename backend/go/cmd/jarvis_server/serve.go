package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jarvis/backend/go/internal/bootstrap"
	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/internal/dialogue"
	"jarvis/backend/go/internal/jarvis_service/api"
	"jarvis/backend/go/pkg/circuitbreaker"
	jhttp "jarvis/backend/go/pkg/http"
	"jarvis/backend/go/pkg/logger"
	"jarvis/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log.Info("Logger initialized")

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.WithErr(err).Error("initialization failed")
		return err
	}
	defer app.Close()

	opts, err := routerOptions(cfg, log)
	if err != nil {
		return err
	}
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(app.Orchestrator, app.Learner, app.Journal, cfg.App.Name)
	router := api.SetupRouter(handler, opts)
	log.Info("Router setup completed")

	server := jhttp.NewServer(router, jhttp.WithAddress(cfg.Server.Address))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("address", server.Addr()).WithField("frontend_path", cfg.Server.StaticDir).
			Info("JARVIS initialization complete. Server ready to receive requests.")
		return server.ListenAndServe()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Dialogue.Store == "sql" {
		g.Go(func() error {
			purgeDialogueStates(ctx, dialogue.NewSQLStateStore(app.DB), cfg.Dialogue, log)
			return nil
		})
	}
	return g.Wait()
}

func routerOptions(cfg *config.AppConfig, log *logger.Logger) (api.RouterOptions, error) {
	opts := api.RouterOptions{Logger: log, StaticDir: cfg.Server.StaticDir}
	if rl := cfg.Middleware.RateLimiter; rl.Enabled {
		limiter, err := ratelimiter.FromConfig(rl)
		if err != nil {
			return opts, err
		}
		log.WithField("algorithm", rl.Algorithm).Info("Enabling Rate Limiter middleware")
		opts.Limiter = limiter
	}
	breaker, err := circuitbreaker.FromConfig(cfg.Middleware.CircuitBreaker)
	if err != nil {
		return opts, err
	}
	if breaker != nil {
		log.Info("Enabling Circuit Breaker middleware")
	}
	opts.Breaker = breaker
	return opts, nil
}

// purgeDialogueStates deletes expired dialogue rows once per TTL until ctx ends.
func purgeDialogueStates(ctx context.Context, store *dialogue.SQLStateStore, cfg config.DialogueConfig, log *logger.Logger) {
	every, err := cfg.StateTTLDuration()
	if err != nil || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				log.WithErr(err).Warn("failed to purge expired dialogue states")
				continue
			}
			if n > 0 {
				log.WithField("purged", n).Debug("expired dialogue states removed")
			}
		}
	}
}
