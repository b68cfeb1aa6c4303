package geminiservice

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents         []GeminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []SafetySetting   `json:"safetySettings,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

// GenerationConfig controls sampling and output length.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// SafetySetting sets how aggressively one harm category is filtered.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

const (
	HarmCategoryHarassment       = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent = "HARM_CATEGORY_DANGEROUS_CONTENT"

	BlockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"
)

// Finish reasons reported on a candidate.
const (
	FinishReasonStop              = "STOP"
	FinishReasonMaxTokens         = "MAX_TOKENS"
	FinishReasonSafety            = "SAFETY"
	FinishReasonRecitation        = "RECITATION"
	FinishReasonBlocklist         = "BLOCKLIST"
	FinishReasonProhibitedContent = "PROHIBITED_CONTENT"
	FinishReasonSPII              = "SPII"
)

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// apiErrorBody is the error envelope returned with non-200 statuses.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}
