/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the meal
plan generator into the form and JSON handlers.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gastroguide/internal/config"
	"gastroguide/internal/mealplan"
	"gastroguide/internal/profile"
)

// Planner produces a meal plan for a collected profile.
type Planner interface {
	Plan(ctx context.Context, p profile.PatientProfile) (mealplan.GeneratedPlan, error)
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// planner turns a profile into plan text.
	planner Planner

	// generation describes the generator for the health endpoint.
	generation GenerationInfo

	startTime time.Time
}

// GenerationInfo is reported by /health.
type GenerationInfo struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model"`
	MaxTokens  int    `json:"max_tokens"`
}

// New builds a Server around planner.
func New(port int, planner Planner, info GenerationInfo) *Server {
	return &Server{
		port:       port,
		planner:    planner,
		generation: info,
		startTime:  time.Now(),
	}
}

// NewServer initializes a Server from cfg and returns a configured *http.Server.
// configured is the generation client's own view of its credential.
func NewServer(cfg *config.Config, planner Planner, configured bool) *http.Server {
	newApp := New(cfg.Port, planner, GenerationInfo{
		Configured: configured,
		Model:      cfg.Anthropic.Model,
		MaxTokens:  cfg.Anthropic.MaxTokens,
	})

	// The write timeout has to outlast a full generation call including retries.
	writeTimeout := cfg.Anthropic.Timeout*time.Duration(cfg.Anthropic.MaxRetries+1) + 30*time.Second

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", newApp.port),
		Handler:      newApp.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
	}
}
