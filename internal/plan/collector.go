package plan

import "math"

const (
	MinAge      = 16
	MinHeightCM = 100
	MinWeightKG = 20
)

// Messages shown to the user when a submission is refused.
const (
	BodySensitivityRequiredMessage = "Please select at least one option from Body Sensitivity to continue."
	AgeTooLowMessage               = "Age must be at least 16."
	HeightTooLowMessage            = "Height must be at least 100 centimeters."
	WeightTooLowMessage            = "Weight must be at least 20 kilograms."
	BMIOutOfRangeMessage           = "Height and weight do not give a usable BMI. Please check both values."
)

// maxBMI bounds the computed index so it always fits an int.
const maxBMI = math.MaxInt32

// ValidationError is a refusal that is recovered locally and shown to the
// user as-is. No request is sent when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CheckBounds enforces the numeric floors of the input widgets. Height and
// weight must also be finite, and the BMI they give must fit an int.
func CheckBounds(p UserProfile) error {
	if p.Age < MinAge {
		return &ValidationError{Field: "age", Message: AgeTooLowMessage}
	}
	if !finite(p.HeightCM) || p.HeightCM < MinHeightCM {
		return &ValidationError{Field: "height", Message: HeightTooLowMessage}
	}
	if !finite(p.WeightKG) || p.WeightKG < MinWeightKG {
		return &ValidationError{Field: "weight", Message: WeightTooLowMessage}
	}
	if bmi := rawBMI(p.HeightCM, p.WeightKG); !finite(bmi) || bmi > maxBMI {
		return &ValidationError{Field: "weight", Message: BMIOutOfRangeMessage}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate runs CheckBounds and then the body sensitivity rule. Categorical
// answers are not checked against the option lists.
func Validate(p UserProfile) error {
	if err := CheckBounds(p); err != nil {
		return err
	}
	if len(p.BodySensitivities) == 0 {
		return &ValidationError{Field: "body_sensitivities", Message: BodySensitivityRequiredMessage}
	}
	return nil
}
