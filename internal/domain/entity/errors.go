package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPayload is returned when a request carries no usable input
	ErrMissingPayload = errors.New("missing required payload")

	// ErrUnsupportedMedia is returned for content types the service cannot read
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrUnknownEngine is returned for engine names other than gemini and gpt
	ErrUnknownEngine = errors.New("unknown engine")
)

// InputAcquisitionError means the input could not be turned into text:
// OCR, speech-to-text or the URL download failed, or the payload was empty.
type InputAcquisitionError struct {
	Source string
	Err    error
}

func (e *InputAcquisitionError) Error() string {
	return fmt.Sprintf("input acquisition failed (%s): %v", e.Source, e.Err)
}

func (e *InputAcquisitionError) Unwrap() error { return e.Err }

// ConfigurationError is raised before any network I/O when a provider
// credential or endpoint is missing.
type ConfigurationError struct {
	Provider string
	Setting  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Provider, e.Setting)
}

// ProviderError wraps any failure reported by an extraction or STT provider
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedExtractionOutput means the model reply was not a conforming
// invoice JSON object. It never leaves the extraction service; the request
// ends as a degraded success instead.
type MalformedExtractionOutput struct {
	Raw string
	Err error
}

func (e *MalformedExtractionOutput) Error() string {
	return fmt.Sprintf("malformed extraction output: %v", e.Err)
}

func (e *MalformedExtractionOutput) Unwrap() error { return e.Err }
