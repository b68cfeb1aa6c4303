package plan

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *UserProfile)
		wantMsg string
	}{
		{"valid", func(p *UserProfile) {}, ""},
		{"minimums accepted", func(p *UserProfile) { p.Age, p.HeightCM, p.WeightKG = 16, 100, 20 }, ""},
		{"age below floor", func(p *UserProfile) { p.Age = 15 }, AgeTooLowMessage},
		{"height below floor", func(p *UserProfile) { p.HeightCM = 99.9 }, HeightTooLowMessage},
		{"weight below floor", func(p *UserProfile) { p.WeightKG = 19 }, WeightTooLowMessage},
		{"zero values", func(p *UserProfile) { *p = UserProfile{} }, AgeTooLowMessage},
		{"height NaN", func(p *UserProfile) { p.HeightCM = math.NaN() }, HeightTooLowMessage},
		{"height +Inf", func(p *UserProfile) { p.HeightCM = math.Inf(1) }, HeightTooLowMessage},
		{"weight NaN", func(p *UserProfile) { p.WeightKG = math.NaN() }, WeightTooLowMessage},
		{"weight +Inf", func(p *UserProfile) { p.WeightKG = math.Inf(1) }, WeightTooLowMessage},
		{"bmi overflows int", func(p *UserProfile) { p.WeightKG = 1e300 }, BMIOutOfRangeMessage},
		{"bmi at ceiling", func(p *UserProfile) { p.HeightCM, p.WeightKG = 100, maxBMI }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProfile()
			tt.mutate(&p)

			err := CheckBounds(p)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidate_BodySensitivityRequired(t *testing.T) {
	p := sampleProfile()
	p.BodySensitivities = []string{}

	err := Validate(p)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "body_sensitivities", verr.Field)
	assert.Equal(t, "Please select at least one option from Body Sensitivity to continue.", verr.Message)
}

func TestValidate_BoundsCheckedFirst(t *testing.T) {
	p := sampleProfile()
	p.Age = 10
	p.BodySensitivities = nil

	err := Validate(p)
	require.Error(t, err)
	assert.Equal(t, AgeTooLowMessage, err.Error())
}

func TestValidate_CategoricalValuesUnchecked(t *testing.T) {
	p := sampleProfile()
	p.Build = "Something not on the list"
	p.Country = ""

	assert.NoError(t, Validate(p))
}
