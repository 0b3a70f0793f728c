/*
Package mealplan turns a patient profile into a prompt and asks the
text-generation service for a Morning/Lunch/Dinner plan.
*/
package mealplan

import (
	"context"
	"time"

	"gastroguide/internal/anthropic"
	"gastroguide/internal/metrics"
	"gastroguide/internal/profile"

	"github.com/rs/zerolog"
)

// FallbackText is returned when the service answers without any content.
const FallbackText = "No meal plan generated. Please try again."

// Fixed generation parameters.
const (
	DefaultModel       = "claude-3-5-sonnet-20240620"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.0
)

// MessageCreator is the part of the Messages API client the generator needs.
type MessageCreator interface {
	CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error)
}

// Settings are fixed for the lifetime of a Generator.
type Settings struct {
	Model        string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

// DefaultSettings returns the model parameters the service was designed around.
func DefaultSettings() Settings {
	return Settings{
		Model:        DefaultModel,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		SystemPrompt: SystemPrompt,
	}
}

// GeneratedPlan is the text shown to the user.
type GeneratedPlan struct {
	Text     string `json:"plan"`
	Fallback bool   `json:"fallback"`
}

// Generator builds prompts and sends them through a MessageCreator.
type Generator struct {
	client   MessageCreator
	settings Settings
}

// NewGenerator returns a Generator. Empty settings fields take the defaults;
// Temperature is used as given since zero is the intended value.
func NewGenerator(client MessageCreator, settings Settings) *Generator {
	def := DefaultSettings()
	if settings.Model == "" {
		settings.Model = def.Model
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = def.MaxTokens
	}
	if settings.SystemPrompt == "" {
		settings.SystemPrompt = def.SystemPrompt
	}
	return &Generator{client: client, settings: settings}
}

// Settings returns the parameters sent with every request.
func (g *Generator) Settings() Settings {
	return g.settings
}

// Plan builds the prompt for p and generates the plan.
func (g *Generator) Plan(ctx context.Context, p profile.PatientProfile) (GeneratedPlan, error) {
	return g.Generate(ctx, BuildPrompt(p))
}

// Generate sends prompt and returns the first content segment unmodified,
// or FallbackText when the response carries no segments. Service errors are
// returned to the caller untouched.
func (g *Generator) Generate(ctx context.Context, prompt string) (GeneratedPlan, error) {
	log := zerolog.Ctx(ctx)
	start := time.Now()

	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.settings.Model,
		MaxTokens:   g.settings.MaxTokens,
		Temperature: g.settings.Temperature,
		System:      g.settings.SystemPrompt,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
	})
	elapsed := time.Since(start)

	if err != nil {
		observe(metrics.OutcomeError, elapsed)
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("Meal plan generation failed")
		return GeneratedPlan{}, err
	}

	metrics.GenerationTokens.WithLabelValues("input").Add(float64(resp.Usage.InputTokens))
	metrics.GenerationTokens.WithLabelValues("output").Add(float64(resp.Usage.OutputTokens))

	if len(resp.Content) == 0 {
		observe(metrics.OutcomeFallback, elapsed)
		log.Warn().Str("stop_reason", resp.StopReason).Msg("Messages API returned no content, using fallback text")
		return GeneratedPlan{Text: FallbackText, Fallback: true}, nil
	}

	observe(metrics.OutcomePlan, elapsed)
	log.Info().
		Dur("elapsed", elapsed).
		Int("output_tokens", resp.Usage.OutputTokens).
		Str("stop_reason", resp.StopReason).
		Msg("Meal plan generated")

	return GeneratedPlan{Text: resp.Content[0].Text}, nil
}

func observe(outcome string, elapsed time.Duration) {
	metrics.PlanGenerations.WithLabelValues(outcome).Inc()
	metrics.PlanGenerationDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
