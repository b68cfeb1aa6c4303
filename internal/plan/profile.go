/*
Package plan turns a user's fitness questionnaire into a single prompt for the
generation service and hands the reply back untouched.

The package has two halves: the collector rules (CheckBounds, Validate) that
decide whether a submission may go out at all, and the builder (BMI,
BuildPrompt, Service) that assembles and sends it.
*/
package plan

import "math"

// UserProfile is the flat questionnaire submitted by a user. It lives for one
// request only and is never stored.
type UserProfile struct {
	// Numeric answers. Floors are enforced by CheckBounds.
	Age      int     `json:"age" form:"age"`
	HeightCM float64 `json:"height" form:"height"`
	WeightKG float64 `json:"weight" form:"weight"`

	// Single-choice answers.
	Country          string `json:"country" form:"country"`
	Build            string `json:"build" form:"build"`
	Flexibility      string `json:"flexibility" form:"flexibility"`
	Diet             string `json:"diet" form:"diet"`
	WaterIntake      string `json:"water_intake" form:"water_intake"`
	SleepDuration    string `json:"sleep_duration" form:"sleep_duration"`
	WorkoutDuration  string `json:"workout_duration" form:"workout_duration"`
	WorkoutFrequency string `json:"workout_frequency" form:"workout_frequency"`
	WorkSchedule     string `json:"work_schedule" form:"work_schedule"`
	DailyActivity    string `json:"daily_activity" form:"daily_activity"`
	FitnessGoal      string `json:"fitness_goal" form:"fitness_goal"`
	MacroGoal        string `json:"macro_goal" form:"macro_goal"`

	// Multi-choice answers. BodySensitivities must not be empty.
	BodySensitivities   []string `json:"body_sensitivities" form:"body_sensitivities"`
	AdditionalGoals     []string `json:"additional_goals" form:"additional_goals"`
	DietaryRestrictions []string `json:"dietary_restrictions" form:"dietary_restrictions"`
	MealTypes           []string `json:"meal_types" form:"meal_types"`

	// Free text.
	BadHabits     string `json:"bad_habits" form:"bad_habits"`
	FavoriteFoods string `json:"favorite_foods" form:"favorite_foods"`
	DislikedFoods string `json:"disliked_foods" form:"disliked_foods"`
}

// Plan is the outcome of a successful submission.
type Plan struct {
	// Text is the service reply exactly as received (markdown).
	Text string `json:"plan"`
	BMI  int    `json:"bmi"`
}

// BMI returns weight / (height in meters)^2 rounded to the nearest integer,
// ties to even.
// Callers must run CheckBounds first; out-of-range inputs have no defined result.
func BMI(heightCM, weightKG float64) int {
	return int(math.RoundToEven(rawBMI(heightCM, weightKG)))
}

func rawBMI(heightCM, weightKG float64) float64 {
	meters := heightCM / 100
	return weightKG / (meters * meters)
}

// BMI is the body mass index derived from the profile's height and weight.
func (p UserProfile) BMI() int {
	return BMI(p.HeightCM, p.WeightKG)
}
