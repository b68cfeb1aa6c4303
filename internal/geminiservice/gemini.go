package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// --- Gemini API Configuration ---
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel      = "gemini-1.5-pro"
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 3
	initialBackoff    = 1 * time.Second
	maxErrorBody      = 4 << 10
)

// Settings is everything a Client needs. It is built once at startup and
// never mutated afterwards.
type Settings struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int

	Generation GenerationConfig
	Safety     []SafetySetting
}

// DefaultSettings returns the fixed generation parameters and safety
// thresholds for the given key and model.
func DefaultSettings(apiKey, model string) Settings {
	if model == "" {
		model = DefaultModel
	}
	return Settings{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		Model:      model,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		Generation: DefaultGenerationConfig(),
		Safety:     DefaultSafetySettings(),
	}
}

// DefaultGenerationConfig: temperature 0.7, top-p 1, top-k 1, 8192 output tokens.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopP:            1,
		TopK:            1,
		MaxOutputTokens: 8192,
	}
}

// DefaultSafetySettings blocks medium severity and above in all four
// categories.
func DefaultSafetySettings() []SafetySetting {
	categories := []string{
		HarmCategoryHarassment,
		HarmCategoryHateSpeech,
		HarmCategorySexuallyExplicit,
		HarmCategoryDangerousContent,
	}
	settings := make([]SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, SafetySetting{Category: c, Threshold: BlockMediumAndAbove})
	}
	return settings
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	settings   Settings
	httpClient *http.Client
	log        *zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client from settings. Zero values in settings fall back
// to the package defaults.
func NewClient(settings Settings, logger *zerolog.Logger) *Client {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
	if settings.MaxRetries <= 0 {
		settings.MaxRetries = 1
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		settings:   settings,
		httpClient: &http.Client{Timeout: settings.Timeout},
		log:        logger,
		sleep:      sleepContext,
	}
}

// Settings returns a copy of the client's settings.
func (c *Client) Settings() Settings {
	return c.settings
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate verbatim. Failures are always *ServiceError. Retryable
// kinds are attempted up to MaxRetries times with exponential backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload := c.buildPayload(prompt)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", &ServiceError{Kind: KindRejected, Message: "failed to marshal payload", Err: err}
	}

	var lastErr *ServiceError

	// Exponential backoff retry loop
	for i := 0; i < c.settings.MaxRetries; i++ {
		c.log.Info().Str("model", c.settings.Model).Msgf("Attempt %d: Calling Gemini API...", i+1)

		text, serr := c.generateOnce(ctx, payloadBytes)
		if serr == nil {
			return text, nil
		}

		lastErr = serr
		if !serr.Retryable() || ctx.Err() != nil {
			return "", serr
		}

		c.log.Warn().Err(serr).Str("kind", string(serr.Kind)).Msgf("Attempt %d failed", i+1)

		if i < c.settings.MaxRetries-1 {
			backoff := initialBackoff * time.Duration(math.Pow(2, float64(i)))
			if err := c.sleep(ctx, backoff); err != nil {
				return "", classifyTransport(err)
			}
		}
	}

	lastErr.Attempts = c.settings.MaxRetries
	return "", lastErr
}

func (c *Client) buildPayload(prompt string) GeminiPayload {
	generation := c.settings.Generation
	return GeminiPayload{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: prompt}}},
		},
		GenerationConfig: &generation,
		SafetySettings:   c.settings.Safety,
	}
}

// generateOnce performs a single HTTP round trip.
func (c *Client) generateOnce(ctx context.Context, payload []byte) (string, *ServiceError) {
	reqCtx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", c.settings.BaseURL, c.settings.Model)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &ServiceError{Kind: KindRejected, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.settings.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", classifyStatus(resp.StatusCode, body)
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", &ServiceError{Kind: KindEmptyResponse, StatusCode: resp.StatusCode, Message: "failed to decode response", Err: err}
	}

	return extractText(geminiResp)
}

// extractText joins the text parts of the first candidate. Blocked prompts and
// safety-stopped candidates without text are reported as content_filtered;
// anything else without text is an empty_response.
func extractText(resp GeminiResponse) (string, *ServiceError) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &ServiceError{
			Kind:    KindContentFiltered,
			Reason:  resp.PromptFeedback.BlockReason,
			Message: "prompt was blocked",
		}
	}

	if len(resp.Candidates) == 0 {
		return "", &ServiceError{Kind: KindEmptyResponse, Message: "no candidates in Gemini response"}
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}

	if sb.Len() > 0 {
		return sb.String(), nil
	}

	if isSafetyFinish(candidate.FinishReason) {
		return "", &ServiceError{
			Kind:    KindContentFiltered,
			Reason:  candidate.FinishReason,
			Message: "response was blocked",
		}
	}

	return "", &ServiceError{
		Kind:    KindEmptyResponse,
		Reason:  candidate.FinishReason,
		Message: "no content found in Gemini response",
	}
}

func isSafetyFinish(reason string) bool {
	switch reason {
	case FinishReasonSafety, FinishReasonBlocklist, FinishReasonProhibitedContent, FinishReasonSPII, FinishReasonRecitation:
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsKind reports whether err is a *ServiceError of the given kind.
func IsKind(err error, kind Kind) bool {
	var serr *ServiceError
	return errors.As(err, &serr) && serr.Kind == kind
}
