package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gastroguide/internal/anthropic"
	"gastroguide/internal/config"
	"gastroguide/internal/logger"
	"gastroguide/internal/mealplan"
	"gastroguide/internal/server"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	// The credential is read once here and injected; nothing below touches the environment.
	client := anthropic.NewClient(cfg.Anthropic.ClientOptions())
	if !client.Configured() {
		log.Warn().Msg("ANTHROPIC_API_KEY is not set, meal plan generation will fail until it is configured")
	}

	generator := mealplan.NewGenerator(client, cfg.Anthropic.GeneratorSettings())
	apiServer := server.NewServer(cfg, generator, client.Configured())

	if err := run(apiServer); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Graceful shutdown complete.")
}

// run serves until SIGINT/SIGTERM, then gives in-flight requests
// shutdownTimeout to finish.
func run(apiServer *http.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("GastroGuide listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
		stop() // Allow Ctrl+C to force shutdown

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exiting")
		return nil
	})

	return g.Wait()
}
