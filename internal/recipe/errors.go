package recipe

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingName is returned when a recipe without a name is saved.
	ErrMissingName = errors.New("recipe name is required")
	// ErrNotFound is returned when no saved recipe has the requested name.
	ErrNotFound = errors.New("recipe not found")
)

func errMissingField(name string) error {
	return fmt.Errorf("generated recipe is missing %s", name)
}

// ErrorKind classifies a GenerationError.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrInvalidImage
	ErrEmptyResponse
	ErrInvalidAPIKey
	ErrQuotaExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidImage:
		return "invalid_image"
	case ErrEmptyResponse:
		return "empty_response"
	case ErrInvalidAPIKey:
		return "invalid_api_key"
	case ErrQuotaExceeded:
		return "quota_exceeded"
	default:
		return "unknown"
	}
}

var userMessages = map[ErrorKind]string{
	ErrUnknown:       "An unexpected error occurred while generating the recipe. Please try again.",
	ErrInvalidImage:  "Invalid image data format. Expected a data URL.",
	ErrEmptyResponse: "No response text received from the API. Please try again.",
	ErrInvalidAPIKey: "The Gemini API key is invalid. Please ensure it is configured correctly.",
	ErrQuotaExceeded: "API quota exceeded. Please check your Gemini account status.",
}

// GenerationError is returned by recipe generators. Message is safe to show
// to the user; Err keeps the underlying cause for logs.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewGenerationError builds a GenerationError carrying the user message for kind.
func NewGenerationError(kind ErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Message: userMessages[kind], Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first GenerationError in err's chain, or
// ErrUnknown.
func KindOf(err error) ErrorKind {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ErrUnknown
}
