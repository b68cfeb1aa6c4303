package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func TestSubmit_ReturnsReplyUnmodified(t *testing.T) {
	reply := "| Diet Plan |\n|---|\n| Oats  |\n\n---\n\n| Exercise Plan |\n\n---\n\nRecommendations  \n"
	gen := &stubGenerator{reply: reply}
	svc := NewService(gen, nil)

	got, err := svc.Submit(context.Background(), sampleProfile())
	require.NoError(t, err)

	assert.Equal(t, reply, got.Text)
	assert.Equal(t, 24, got.BMI)
	require.Equal(t, 1, gen.calls)
	assert.Equal(t, BuildPrompt(sampleProfile()), gen.prompts[0])
}

func TestSubmit_EmptySensitivitiesNeverCallsGenerator(t *testing.T) {
	gen := &stubGenerator{reply: "should not be used"}
	svc := NewService(gen, nil)

	p := sampleProfile()
	p.BodySensitivities = nil

	_, err := svc.Submit(context.Background(), p)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, BodySensitivityRequiredMessage, verr.Message)
	assert.Zero(t, gen.calls)
}

func TestSubmit_BoundsRejectedBeforeBuilder(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewService(gen, nil)

	p := sampleProfile()
	p.WeightKG = 10

	_, err := svc.Submit(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, WeightTooLowMessage, err.Error())
	assert.Zero(t, gen.calls)
}

func TestSubmit_PropagatesGeneratorError(t *testing.T) {
	sentinel := errors.New("quota exceeded")
	gen := &stubGenerator{err: sentinel}
	svc := NewService(gen, nil)

	_, err := svc.Submit(context.Background(), sampleProfile())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, gen.calls)
}
