// Package catalog holds the reference data that drives the questionnaire: the
// choice lists for every categorical question and the list of countries.
package catalog

// Choice lists offered by the form. Submitted values are not checked against them.
var (
	BuildOptions = []string{"Thin", "Average", "Broad or Muscular", "Significantly Overweight"}

	FlexibilityOptions = []string{"Very flexible", "Pretty flexible", "Not that good", "I'm not sure"}

	DietPreferences = []string{
		"Vegan", "Vegetarian", "Jain", "Swaminarayan", "Non-Vegetarian",
		"Paleo", "Ketogenic", "Mediterranean", "DASH", "Gluten-Free", "Intermittent Fasting", "Low-FODMAP",
	}

	WaterIntakeOptions = []string{"Less than 2 glasses", "About 2 glasses", "2 to 6 glasses", "More than 5 glasses"}

	SleepDurationOptions = []string{"Less than 5 hours", "5-6 hours", "7-8 hours", "More than 8 hours"}

	WorkoutDurationOptions = []string{"10-15 minutes", "15-25 minutes", "25+ minutes", "Don't know"}

	WorkoutFrequencyOptions = []string{"Almost every day", "Several times per week", "Several times per month", "Never"}

	WorkScheduleOptions = []string{"9 to 5", "Night shifts", "My hours are flexible", "Not working/retired"}

	DailyActivityOptions = []string{"I spend most of the day sitting", "I take active breaks", "I'm on my feet all day long"}

	BodySensitivityOptions = []string{
		"Sensitive back", "Sensitive knees", "None",
		"Chronic pain", "Recent injury", "Joint issues",
		"Muscle strains", "Limited mobility", "Balance problems",
	}

	FitnessGoalOptions = []string{"Build muscle & strength", "Lose weight", "Improve mobility", "Develop flexibility", "Improve overall fitness"}

	AdditionalGoalOptions = []string{
		"Increase endurance", "Improve mental health", "Get fit for an event",
		"Enhance athletic performance", "Improve posture", "Train for a specific sport",
		"Increase flexibility", "Boost energy levels", "Reduce stress", "Achieve a specific weight",
	}

	DietaryRestrictionOptions = []string{"Gluten-Free", "Nut-Free", "Dairy-Free", "Vegetarian", "Vegan"}

	MealTypeOptions = []string{"Breakfast", "Lunch", "Dinner", "Snacks"}
)

// Form defaults for the numeric questions.
const (
	DefaultAge      = 18
	DefaultHeightCM = 168
	DefaultWeightKG = 60
)

// Options is the full set of choices, serialised for the options endpoint.
type Options struct {
	Countries           []string `json:"countries"`
	Build               []string `json:"build"`
	Flexibility         []string `json:"flexibility"`
	Diet                []string `json:"diet"`
	WaterIntake         []string `json:"water_intake"`
	SleepDuration       []string `json:"sleep_duration"`
	WorkoutDuration     []string `json:"workout_duration"`
	WorkoutFrequency    []string `json:"workout_frequency"`
	WorkSchedule        []string `json:"work_schedule"`
	DailyActivity       []string `json:"daily_activity"`
	BodySensitivities   []string `json:"body_sensitivities"`
	FitnessGoal         []string `json:"fitness_goal"`
	AdditionalGoals     []string `json:"additional_goals"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	MealTypes           []string `json:"meal_types"`
	Defaults            Defaults `json:"defaults"`
}

// Defaults are the initial numeric values shown by the form.
type Defaults struct {
	Age      int     `json:"age"`
	HeightCM float64 `json:"height"`
	WeightKG float64 `json:"weight"`
}

// Catalog is the startup-loaded reference data. It is read-only once built.
type Catalog struct {
	countries []string
}

// New builds a Catalog around an already loaded country list.
func New(countries []string) *Catalog {
	cp := make([]string, len(countries))
	copy(cp, countries)
	return &Catalog{countries: cp}
}

// Countries returns a copy of the country names in source order.
func (c *Catalog) Countries() []string {
	out := make([]string, len(c.countries))
	copy(out, c.countries)
	return out
}

// Options returns every choice list plus the numeric defaults.
func (c *Catalog) Options() Options {
	return Options{
		Countries:           c.Countries(),
		Build:               BuildOptions,
		Flexibility:         FlexibilityOptions,
		Diet:                DietPreferences,
		WaterIntake:         WaterIntakeOptions,
		SleepDuration:       SleepDurationOptions,
		WorkoutDuration:     WorkoutDurationOptions,
		WorkoutFrequency:    WorkoutFrequencyOptions,
		WorkSchedule:        WorkScheduleOptions,
		DailyActivity:       DailyActivityOptions,
		BodySensitivities:   BodySensitivityOptions,
		FitnessGoal:         FitnessGoalOptions,
		AdditionalGoals:     AdditionalGoalOptions,
		DietaryRestrictions: DietaryRestrictionOptions,
		MealTypes:           MealTypeOptions,
		Defaults: Defaults{
			Age:      DefaultAge,
			HeightCM: DefaultHeightCM,
			WeightKG: DefaultWeightKG,
		},
	}
}
