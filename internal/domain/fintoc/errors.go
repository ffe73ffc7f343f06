package fintoc

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrProviderUnreachable is returned when the Fintoc API cannot be reached.
	ErrProviderUnreachable = errors.New("could not establish the connection to the Fintoc API, please try again later")

	// ErrProviderRequestFailed is returned when the Fintoc API answers with HTTP >= 400.
	ErrProviderRequestFailed = errors.New("fintoc request failed")

	// ErrValidation is returned when a local precondition is violated.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned when required credentials are missing.
	ErrConfiguration = errors.New("fintoc provider is not configured")

	// ErrNoMatchingTransaction is returned when no transaction matches a notification.
	ErrNoMatchingTransaction = fmt.Errorf("%w: no transaction could be matched from webhook notification data", ErrValidation)

	// ErrInvalidSignature is returned for a missing or invalid Fintoc-Signature header.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedPayload is returned when a webhook body is not a usable event.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrForbidden is returned when a return URL fails access checks.
	ErrForbidden = errors.New("forbidden")

	// ErrTransactionNotFound is returned when a transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrEventNotFound is returned when a webhook event is not found.
	ErrEventNotFound = errors.New("webhook event not found")

	// ErrDuplicateReference is returned when a transaction reference already exists.
	ErrDuplicateReference = errors.New("transaction reference already exists")
)

// ValidationError carries a user facing message for a failed precondition.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProviderRequestError is returned for Fintoc API responses with HTTP >= 400.
type ProviderRequestError struct {
	StatusCode int
	Message    string
	Body       map[string]any
}

func (e *ProviderRequestError) Error() string {
	return fmt.Sprintf("Fintoc API request failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// Unwrap makes errors.Is(err, ErrProviderRequestFailed) hold.
func (e *ProviderRequestError) Unwrap() error { return ErrProviderRequestFailed }

// NewProviderRequestError builds a ProviderRequestError from a parsed response body.
func NewProviderRequestError(statusCode int, body map[string]any) *ProviderRequestError {
	return &ProviderRequestError{
		StatusCode: statusCode,
		Message:    ExtractErrorMessage(body),
		Body:       body,
	}
}

// errorText renders the first present of message and error for substring checks.
// Structured values are rendered as JSON so nested code and param fields are kept.
func errorText(body map[string]any) string {
	for _, key := range []string{"message", "error"} {
		value, ok := body[key]
		if !ok || value == nil {
			continue
		}
		if v, ok := value.(string); ok {
			if v != "" {
				return v
			}
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	}
	return ""
}

// ExtractErrorMessage returns the first present of message, error and detail.
func ExtractErrorMessage(body map[string]any) string {
	for _, key := range []string{"message", "error", "detail"} {
		value, ok := body[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if msg, ok := v["message"].(string); ok && msg != "" {
				return msg
			}
			return fmt.Sprint(v)
		default:
			return fmt.Sprint(v)
		}
	}
	return "Unknown API error"
}
