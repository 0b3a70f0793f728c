package mealplan

import (
	"fmt"
	"strings"

	"gastroguide/internal/profile"
)

/* =================================================================================
						PROMPT ENGINEERING
=================================================================================*/

// SystemPrompt is the persona sent as the system instruction on every request.
const SystemPrompt = "You are a world-class nutritionist specializing in stomach-related conditions."

// ClosingInstruction ends every prompt.
const ClosingInstruction = "Please provide a meal plan for Morning, Lunch, and Dinner that is suitable for the patient's condition."

/*
UserPromptTemplate is filled in field order: symptoms, diagnosis, allergies,
dietary preferences, activity level, pain level, stress level, food dislikes,
restricted foods.
*/
const UserPromptTemplate = `Create a daily meal plan for a patient with the following details:

Symptoms: %s
Diagnosis: %s
Allergies: %s
Dietary Preferences: %s
Activity Level: %s
Pain Level: %d
Stress Level: %d
Food Dislikes: %s
Restricted Foods: %s

` + ClosingInstruction

// BuildPrompt renders p into the user prompt. Field values are embedded as-is.
func BuildPrompt(p profile.PatientProfile) string {
	return fmt.Sprintf(UserPromptTemplate,
		p.Symptoms,
		p.Diagnosis,
		p.Allergies,
		formatPreferences(p.DietaryPreferences),
		p.ActivityLevel,
		p.PainLevel,
		p.StressLevel,
		p.FoodDislikes,
		p.RestrictedFoods,
	)
}

// formatPreferences joins the selection with ", ". No selection renders as an
// empty value, which stays distinct from an explicit "None".
func formatPreferences(prefs []profile.DietaryPreference) string {
	parts := make([]string, len(prefs))
	for i, p := range prefs {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
