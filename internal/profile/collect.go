package profile

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is the raw form or JSON payload. Nil fields were not sent and
// take the form defaults.
type Submission struct {
	Symptoms           *string  `json:"symptoms"`
	Diagnosis          *string  `json:"diagnosis"`
	Allergies          *string  `json:"allergies"`
	DietaryPreferences []string `json:"dietary_preferences"`
	ActivityLevel      *string  `json:"activity_level"`
	PainLevel          *int     `json:"pain_level"`
	StressLevel        *int     `json:"stress_level"`
	FoodDislikes       *string  `json:"food_dislikes"`
	RestrictedFoods    *string  `json:"restricted_foods"`
}

// ValidationError maps json field names to a human readable problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("diagnosis", validateDiagnosis)
	validate.RegisterValidation("activity_level", validateActivityLevel)
	validate.RegisterValidation("dietary_preference", validateDietaryPreference)
}

// collected mirrors PatientProfile with the rules the collector enforces.
type collected struct {
	Diagnosis          Diagnosis           `json:"diagnosis" validate:"diagnosis"`
	DietaryPreferences []DietaryPreference `json:"dietary_preferences" validate:"dive,dietary_preference"`
	ActivityLevel      ActivityLevel       `json:"activity_level" validate:"activity_level"`
	PainLevel          int                 `json:"pain_level" validate:"min=1,max=10"`
	StressLevel        int                 `json:"stress_level" validate:"min=1,max=10"`
}

// Apply overlays the fields present in s onto base without validating them.
func (s Submission) Apply(base PatientProfile) PatientProfile {
	p := base

	if s.Symptoms != nil {
		p.Symptoms = *s.Symptoms
	}
	if s.Diagnosis != nil {
		p.Diagnosis = Diagnosis(*s.Diagnosis)
	}
	if s.Allergies != nil {
		p.Allergies = *s.Allergies
	}
	if s.DietaryPreferences != nil {
		p.DietaryPreferences = dedupePreferences(s.DietaryPreferences)
	}
	if s.ActivityLevel != nil {
		p.ActivityLevel = ActivityLevel(*s.ActivityLevel)
	}
	if s.PainLevel != nil {
		p.PainLevel = *s.PainLevel
	}
	if s.StressLevel != nil {
		p.StressLevel = *s.StressLevel
	}
	if s.FoodDislikes != nil {
		p.FoodDislikes = *s.FoodDislikes
	}
	if s.RestrictedFoods != nil {
		p.RestrictedFoods = *s.RestrictedFoods
	}
	return p
}

// Collect fills unset fields with defaults and checks the enumerated and
// bounded fields. Free text is kept exactly as submitted.
func Collect(sub Submission) (PatientProfile, error) {
	p := sub.Apply(Default())

	err := validate.Struct(collected{
		Diagnosis:          p.Diagnosis,
		DietaryPreferences: p.DietaryPreferences,
		ActivityLevel:      p.ActivityLevel,
		PainLevel:          p.PainLevel,
		StressLevel:        p.StressLevel,
	})
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return PatientProfile{}, toValidationError(fieldErrs)
		}
		return PatientProfile{}, fmt.Errorf("failed to validate profile: %w", err)
	}

	return p, nil
}

// SubmissionFromForm reads an application/x-www-form-urlencoded submission.
// Keys absent from the form stay nil; an unparsable level is a ValidationError.
func SubmissionFromForm(form url.Values) (Submission, error) {
	var sub Submission
	fieldErrs := map[string]string{}

	text := func(key string) *string {
		if _, ok := form[key]; !ok {
			return nil
		}
		v := form.Get(key)
		return &v
	}
	level := func(key string) *int {
		raw := text(key)
		if raw == nil {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil {
			fieldErrs[key] = levelMessage
			return nil
		}
		return &n
	}

	sub.Symptoms = text("symptoms")
	sub.Diagnosis = text("diagnosis")
	sub.Allergies = text("allergies")
	sub.ActivityLevel = text("activity_level")
	sub.PainLevel = level("pain_level")
	sub.StressLevel = level("stress_level")
	sub.FoodDislikes = text("food_dislikes")
	sub.RestrictedFoods = text("restricted_foods")

	// An HTML form omits unchecked boxes entirely, so no key means none selected.
	sub.DietaryPreferences = append([]string{}, form["dietary_preferences"]...)

	if len(fieldErrs) > 0 {
		return sub, &ValidationError{Fields: fieldErrs}
	}
	return sub, nil
}

var levelMessage = fmt.Sprintf("must be a whole number between %d and %d", MinLevel, MaxLevel)

func toValidationError(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Fields: make(map[string]string, len(errs))}
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "min", "max":
			msg = levelMessage
		case "diagnosis":
			msg = "must be one of " + joinOptions(Diagnoses)
		case "activity_level":
			msg = "must be one of " + joinOptions(ActivityLevels)
		case "dietary_preference":
			msg = "must be one of " + joinOptions(DietaryPreferences)
		default:
			msg = "is invalid"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

func dedupePreferences(raw []string) []DietaryPreference {
	seen := make(map[string]bool, len(raw))
	out := make([]DietaryPreference, 0, len(raw))
	for _, v := range raw {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, DietaryPreference(v))
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateDiagnosis(fl validator.FieldLevel) bool {
	return isOneOf(Diagnosis(fl.Field().String()), Diagnoses)
}

func validateActivityLevel(fl validator.FieldLevel) bool {
	return isOneOf(ActivityLevel(fl.Field().String()), ActivityLevels)
}

func validateDietaryPreference(fl validator.FieldLevel) bool {
	return isOneOf(DietaryPreference(fl.Field().String()), DietaryPreferences)
}

func isOneOf[T ~string](v T, options []T) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

func joinOptions[T ~string](options []T) string {
	parts := make([]string, len(options))
	for i, o := range options {
		parts[i] = string(o)
	}
	return strings.Join(parts, ", ")
}
