/*
Package server implements the application's network transport layer.
It serves the questionnaire form, the JSON API and the health endpoint, and
hands every submission to a Planner.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"AIFitnessCoach/internal/catalog"
	"AIFitnessCoach/internal/config"
	"AIFitnessCoach/internal/database"
	"AIFitnessCoach/internal/plan"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Planner turns a questionnaire into a plan. *plan.Service implements it.
type Planner interface {
	Submit(ctx context.Context, p plan.UserProfile) (plan.Plan, error)
}

// Dependencies are the collaborators built by main and injected here.
type Dependencies struct {
	Planner Planner
	Catalog *catalog.Catalog

	// DB is optional; when set its pool stats appear on /health.
	DB database.Service

	// Model is reported on /health.
	Model string
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	planner Planner
	catalog *catalog.Catalog
	db      database.Service
	model   string

	// limiter is nil when rate limiting is disabled.
	limiter *rateLimiter

	// markdown renders plan text for the HTML form.
	markdown goldmark.Markdown
}

// New builds a Server from cfg and deps.
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	if deps.Planner == nil {
		return nil, fmt.Errorf("server: planner is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("server: catalog is required")
	}

	limiter, err := newRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	return &Server{
		planner:  deps.Planner,
		catalog:  deps.Catalog,
		db:       deps.DB,
		model:    deps.Model,
		limiter:  limiter,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// NewServer initializes a Server and returns a configured *http.Server.
// The write timeout leaves room for every retry of the outbound call.
func NewServer(cfg *config.Config, deps Dependencies) (*http.Server, error) {
	app, err := New(cfg, deps)
	if err != nil {
		return nil, err
	}

	writeTimeout := cfg.Gemini.Timeout*time.Duration(cfg.Gemini.MaxRetries) + 30*time.Second

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,      // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second, // Maximum duration for reading the entire request.
		WriteTimeout: writeTimeout,
	}

	return server, nil
}
