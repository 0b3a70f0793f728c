// Package profile holds the patient profile collected from the meal plan form.
package profile

// Diagnosis is the stomach condition picked on the form.
type Diagnosis string

const (
	DiagnosisGastritis Diagnosis = "Gastritis"
	DiagnosisUlcers    Diagnosis = "Ulcers"
	DiagnosisIBS       Diagnosis = "IBS"
	DiagnosisNone      Diagnosis = "None"
	DiagnosisOther     Diagnosis = "Other"
)

// Diagnoses lists the form options in display order.
var Diagnoses = []Diagnosis{DiagnosisGastritis, DiagnosisUlcers, DiagnosisIBS, DiagnosisNone, DiagnosisOther}

// DietaryPreference is one entry of the dietary multi-select.
type DietaryPreference string

const (
	PreferenceVegetarian DietaryPreference = "Vegetarian"
	PreferenceVegan      DietaryPreference = "Vegan"
	PreferenceGlutenFree DietaryPreference = "Gluten-free"
	PreferenceNone       DietaryPreference = "None"
)

var DietaryPreferences = []DietaryPreference{PreferenceVegetarian, PreferenceVegan, PreferenceGlutenFree, PreferenceNone}

// ActivityLevel is the daily activity select.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "Sedentary"
	ActivityModeratelyActive ActivityLevel = "Moderately Active"
	ActivityVeryActive       ActivityLevel = "Very Active"
)

var ActivityLevels = []ActivityLevel{ActivitySedentary, ActivityModeratelyActive, ActivityVeryActive}

// Level bounds shared by pain and stress.
const (
	MinLevel = 1
	MaxLevel = 10
)

// Form defaults. Text areas start out filled with an example.
const (
	DefaultSymptoms        = "E.g., bloating, acid reflux, indigestion"
	DefaultAllergies       = "E.g., lactose, gluten, nuts"
	DefaultFoodDislikes    = "E.g., spicy food, dairy products"
	DefaultRestrictedFoods = "E.g., citrus, caffeine, fried foods"
	DefaultDiagnosis       = DiagnosisGastritis
	DefaultActivityLevel   = ActivitySedentary
	DefaultPainLevel       = 5
	DefaultStressLevel     = 5
)

// PatientProfile is a fully populated, validated form submission.
// Build it with Collect; the zero value is not a valid profile.
type PatientProfile struct {
	Symptoms           string              `json:"symptoms"`
	Diagnosis          Diagnosis           `json:"diagnosis"`
	Allergies          string              `json:"allergies"`
	DietaryPreferences []DietaryPreference `json:"dietary_preferences"`
	ActivityLevel      ActivityLevel       `json:"activity_level"`
	PainLevel          int                 `json:"pain_level"`
	StressLevel        int                 `json:"stress_level"`
	FoodDislikes       string              `json:"food_dislikes"`
	RestrictedFoods    string              `json:"restricted_foods"`
}

// Default returns the profile the form shows before the user edits anything.
func Default() PatientProfile {
	return PatientProfile{
		Symptoms:           DefaultSymptoms,
		Diagnosis:          DefaultDiagnosis,
		Allergies:          DefaultAllergies,
		DietaryPreferences: []DietaryPreference{},
		ActivityLevel:      DefaultActivityLevel,
		PainLevel:          DefaultPainLevel,
		StressLevel:        DefaultStressLevel,
		FoodDislikes:       DefaultFoodDislikes,
		RestrictedFoods:    DefaultRestrictedFoods,
	}
}

// HasPreference reports whether p selected pref. Used by the form template.
func (p PatientProfile) HasPreference(pref DietaryPreference) bool {
	for _, have := range p.DietaryPreferences {
		if have == pref {
			return true
		}
	}
	return false
}
