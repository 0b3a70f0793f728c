package server

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"gastroguide/internal/anthropic"
	"gastroguide/internal/mealplan"
	"gastroguide/internal/metrics"
	"gastroguide/internal/profile"
	"gastroguide/internal/utility"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// PlanResponse is the JSON answer of POST /api/plan.
type PlanResponse struct {
	RequestID string                 `json:"request_id"`
	Plan      string                 `json:"plan"`
	Fallback  bool                   `json:"fallback"`
	Profile   profile.PatientProfile `json:"profile"`
}

// formPage is the data behind templates/index.html.
type formPage struct {
	Profile         profile.PatientProfile
	Diagnoses       []profile.Diagnosis
	Preferences     []profile.DietaryPreference
	ActivityLevels  []profile.ActivityLevel
	MinLevel        int
	MaxLevel        int
	Error           string
	Fields          map[string]string
	LevelInputs     map[string]string
	PreferenceError string
	HasPlan         bool
	Fallback        bool
	Plan            template.HTML
}

func newFormPage(p profile.PatientProfile) formPage {
	return formPage{
		Profile:        p,
		Diagnoses:      profile.Diagnoses,
		Preferences:    profile.DietaryPreferences,
		ActivityLevels: profile.ActivityLevels,
		MinLevel:       profile.MinLevel,
		MaxLevel:       profile.MaxLevel,
		Fields:         map[string]string{},
		LevelInputs: map[string]string{
			"pain_level":   strconv.Itoa(p.PainLevel),
			"stress_level": strconv.Itoa(p.StressLevel),
		},
	}
}

// Raw HTML in the model output is dropped by goldmark's default renderer.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

/*=================================================================================
									HANDLERS
=================================================================================*/

// renderFormHandler serves the empty form prefilled with defaults.
func (s *Server) renderFormHandler(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", newFormPage(profile.Default()))
}

// submitFormHandler handles the HTML form post and renders the plan below the form.
func (s *Server) submitFormHandler(c echo.Context) error {
	log := utility.GetLogger(c)

	form, err := c.FormParams()
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse form")
		page := newFormPage(profile.Default())
		page.Error = "Invalid form submission"
		return c.Render(http.StatusBadRequest, "index.html", page)
	}

	sub, err := profile.SubmissionFromForm(form)
	page := newFormPage(sub.Apply(profile.Default()))
	if err != nil {
		recordRejections(err)
		var vErr *profile.ValidationError
		if errors.As(err, &vErr) {
			// Unparsable levels are shown back as typed.
			for key := range page.LevelInputs {
				if _, bad := vErr.Fields[key]; bad {
					page.LevelInputs[key] = form.Get(key)
				}
			}
		}
	} else {
		var plan mealplan.GeneratedPlan
		_, plan, err = s.generatePlan(c.Request().Context(), sub)
		if err == nil {
			html, renderErr := renderMarkdown(plan.Text)
			if renderErr != nil {
				log.Error().Err(renderErr).Msg("Failed to render plan markdown, showing plain text")
				html = template.HTML("<pre>" + template.HTMLEscapeString(plan.Text) + "</pre>")
			}
			page.HasPlan = true
			page.Fallback = plan.Fallback
			page.Plan = html
			return c.Render(http.StatusOK, "index.html", page)
		}
	}

	status, msg := errorResponse(err)
	page.Error = msg
	var vErr *profile.ValidationError
	if errors.As(err, &vErr) {
		for field, problem := range vErr.Fields {
			if strings.HasPrefix(field, "dietary_preferences") {
				page.PreferenceError = problem
				continue
			}
			page.Fields[field] = problem
		}
	}
	return c.Render(status, "index.html", page)
}

// generatePlanHandler is the JSON variant of the form post.
func (s *Server) generatePlanHandler(c echo.Context) error {
	log := utility.GetLogger(c)

	var sub profile.Submission
	if err := c.Bind(&sub); err != nil {
		log.Error().Err(err).Msg("Failed to bind request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	p, plan, err := s.generatePlan(c.Request().Context(), sub)
	if err != nil {
		status, msg := errorResponse(err)
		var vErr *profile.ValidationError
		if errors.As(err, &vErr) {
			return c.JSON(status, map[string]interface{}{
				"error":  msg,
				"fields": vErr.Fields,
			})
		}
		return c.JSON(status, map[string]string{"error": msg})
	}

	return c.JSON(http.StatusOK, PlanResponse{
		RequestID: utility.GetRequestID(c),
		Plan:      plan.Text,
		Fallback:  plan.Fallback,
		Profile:   p,
	})
}

// generatePlan is the request/response core shared by both surfaces:
// collect the profile, then ask the planner.
func (s *Server) generatePlan(ctx context.Context, sub profile.Submission) (profile.PatientProfile, mealplan.GeneratedPlan, error) {
	p, err := profile.Collect(sub)
	if err != nil {
		recordRejections(err)
		return profile.PatientProfile{}, mealplan.GeneratedPlan{}, err
	}

	plan, err := s.planner.Plan(ctx, p)
	if err != nil {
		return p, mealplan.GeneratedPlan{}, err
	}
	return p, plan, nil
}

// errorResponse maps an error to a status code and a user-facing message.
func errorResponse(err error) (int, string) {
	var vErr *profile.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "Please correct the highlighted fields."
	case errors.Is(err, anthropic.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "Meal plan generation is not configured. Please contact the administrator."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The meal plan service took too long to respond. Please try again."
	default:
		return http.StatusBadGateway, "Meal plan service temporarily unavailable. Please try again later."
	}
}

// recordRejections counts each rejected field of a validation error.
func recordRejections(err error) {
	var vErr *profile.ValidationError
	if !errors.As(err, &vErr) {
		return
	}
	for field := range vErr.Fields {
		metrics.ProfileRejections.WithLabelValues(metricField(field)).Inc()
	}
}

func renderMarkdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// metricField strips slice indexes so label values stay bounded.
func metricField(field string) string {
	name, _, _ := strings.Cut(field, "[")
	return name
}
