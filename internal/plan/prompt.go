package plan

import (
	"fmt"
	"strconv"
	"strings"
)

/* =================================================================================
								PROMPT TEMPLATE
=================================================================================*/

// PromptTemplate is the fixed instruction sent to the model. Placeholders are
// filled in field order by BuildPrompt.
const PromptTemplate = "You are Chad, an expert body trainer and dietician who has successfully helped numerous celebrities achieve their desired physique. " +
	"A new user has joined your academy, and your job is to guide the user with a proper exercise plan and diet plan to achieve their ideal shape. " +
	"I will provide you with the user information, and you have to strictly output in a markdown table form. " +
	"User Information: " +
	"Age: %s, " +
	"Country of residence: %s, " +
	"Height: %s in meters, " +
	"Weight: %s in kilograms, " +
	"BMI: %d, " +
	"Current physical build: %s, " +
	"Current body flexibility: %s, " +
	"Preferred Diet: %s, " +
	"Daily water intake: %s, " +
	"Usual sleep duration: %s, " +
	"How long workouts: %s, " +
	"Workout frequency: %s, " +
	"User work schedule: %s, " +
	"Usual daily activity of user: %s, " +
	"Body Struggles: %s, " +
	"Bad Habits: %s, " +
	"Dream physique: %s, " +
	"Favorite Foods: %s, " +
	"Foods to Avoid: %s, " +
	"Dietary Restrictions: %s, " +
	"Meal Types: %s, " +
	"Macro Goals: %s. " +
	"Carefully design a diet and exercise plan keeping all this information in mind. " +
	"Separate Diet Plan, Exercise Plan, Recommendations by --- at the end."

// NoSensitivities stands in for an empty body sensitivity selection.
const NoSensitivities = "None"

// BuildPrompt renders the profile into PromptTemplate. It is a pure function:
// identical profiles always produce byte-identical prompts.
func BuildPrompt(p UserProfile) string {
	bodySensitivity := NoSensitivities
	if len(p.BodySensitivities) > 0 {
		bodySensitivity = joinChoices(p.BodySensitivities)
	}

	return fmt.Sprintf(PromptTemplate,
		strconv.Itoa(p.Age),
		p.Country,
		formatNumber(p.HeightCM/100),
		formatNumber(p.WeightKG),
		p.BMI(),
		p.Build,
		p.Flexibility,
		p.Diet,
		p.WaterIntake,
		p.SleepDuration,
		p.WorkoutDuration,
		p.WorkoutFrequency,
		p.WorkSchedule,
		p.DailyActivity,
		bodySensitivity,
		p.BadHabits,
		p.FitnessGoal,
		p.FavoriteFoods,
		p.DislikedFoods,
		joinChoices(p.DietaryRestrictions),
		joinChoices(p.MealTypes),
		p.MacroGoal,
	)
}

// joinChoices joins a multi-choice answer with ", ". An empty selection
// becomes the empty string.
func joinChoices(values []string) string {
	return strings.Join(values, ", ")
}

// formatNumber prints the shortest decimal that round-trips, so 170/100
// renders as "1.7" and 60 as "60".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
