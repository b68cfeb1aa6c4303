package plan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Generator sends a prompt to the text generation service and returns its
// reply. geminiservice.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service validates submissions and forwards them to a Generator.
type Service struct {
	gen Generator
	log *zerolog.Logger
}

// NewService wires a Service to gen. A nil logger disables logging.
func NewService(gen Generator, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{gen: gen, log: logger}
}

// Submit handles one submission end to end: Validate, BuildPrompt, one call to
// the generator. The reply text is returned exactly as received. A
// *ValidationError means the generator was never called.
func (s *Service) Submit(ctx context.Context, p UserProfile) (Plan, error) {
	if err := Validate(p); err != nil {
		s.log.Info().Err(err).Msg("Submission refused by collector")
		return Plan{}, err
	}

	prompt := BuildPrompt(p)
	bmi := p.BMI()

	s.log.Info().
		Int("bmi", bmi).
		Int("prompt_chars", len(prompt)).
		Msg("Sending plan request")

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return Plan{}, fmt.Errorf("generating plan: %w", err)
	}

	s.log.Info().Int("response_chars", len(text)).Msg("Plan received")
	return Plan{Text: text, BMI: bmi}, nil
}
