package geminiservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure of the generation service.
type Kind string

const (
	// KindTransient covers network failures, timeouts and 5xx statuses.
	KindTransient Kind = "transient"
	// KindRateLimited is HTTP 429, including exhausted quota.
	KindRateLimited Kind = "rate_limited"
	// KindAuth means the credential was rejected. The key must be reconfigured.
	KindAuth Kind = "auth"
	// KindContentFiltered means the prompt or the reply was blocked by the
	// safety thresholds.
	KindContentFiltered Kind = "content_filtered"
	// KindEmptyResponse is a 200 that carried no usable text.
	KindEmptyResponse Kind = "empty_response"
	// KindRejected is any other 4xx.
	KindRejected Kind = "rejected"
)

// ServiceError is returned by Client.Generate for every failure.
type ServiceError struct {
	Kind       Kind
	StatusCode int
	// Reason is the block or finish reason reported by the service, if any.
	Reason   string
	Message  string
	Attempts int
	Err      error
}

func (e *ServiceError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "gemini %s", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Reason != "" {
		fmt.Fprintf(&sb, " [%s]", e.Reason)
	}
	if e.Attempts > 1 {
		fmt.Fprintf(&sb, " after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed without user action.
func (e *ServiceError) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindRateLimited
}

func classifyTransport(err error) *ServiceError {
	msg := "request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	} else if errors.Is(err, context.Canceled) {
		msg = "request canceled"
	}
	return &ServiceError{Kind: KindTransient, Message: msg, Err: err}
}

func classifyStatus(status int, body []byte) *ServiceError {
	var envelope apiErrorBody
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	serr := &ServiceError{StatusCode: status, Message: message}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		serr.Kind = KindAuth
	case status == http.StatusTooManyRequests:
		serr.Kind = KindRateLimited
	case status >= 500:
		serr.Kind = KindTransient
	case status == http.StatusBadRequest && isInvalidKey(envelope, message):
		serr.Kind = KindAuth
	default:
		serr.Kind = KindRejected
	}
	return serr
}

// isInvalidKey detects the 400 INVALID_ARGUMENT Gemini returns for a bad key.
func isInvalidKey(envelope apiErrorBody, message string) bool {
	for _, d := range envelope.Error.Details {
		if d.Reason == "API_KEY_INVALID" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(message), "api key")
}
