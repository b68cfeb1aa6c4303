package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AIFitnessCoach/internal/catalog"
	"AIFitnessCoach/internal/config"
	"AIFitnessCoach/internal/database"
	"AIFitnessCoach/internal/geminiservice"
	"AIFitnessCoach/internal/plan"
	"AIFitnessCoach/internal/server"
	"AIFitnessCoach/internal/utility"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := utility.SetupLogger(os.Stderr, cfg.LogLevel, cfg.IsDevelopment())

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The database is optional and only backs the countries table.
	var (
		db      database.Service
		querier catalog.Querier
	)
	if cfg.DatabaseURL != "" {
		db, err = database.NewService(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		querier = db.Pool()
	}

	cat, err := catalog.Load(ctx, cfg.CountriesCSV, querier)
	if err != nil {
		return err
	}

	client := geminiservice.NewClient(cfg.Gemini.Settings(), &logger)
	planner := plan.NewService(client, &logger)

	apiServer, err := server.NewServer(cfg, server.Dependencies{
		Planner: planner,
		Catalog: cat,
		DB:      db,
		Model:   client.Settings().Model,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", apiServer.Addr).
			Str("model", client.Settings().Model).
			Int("countries", len(cat.Countries())).
			Msg("Server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
		stop() // Allow Ctrl+C to force shutdown

		// The server has shutdownTimeout to finish the requests it is handling.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().Msg("Graceful shutdown complete")
	return nil
}
