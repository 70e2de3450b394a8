package services

import (
	"errors"
	"strings"

	"github.com/bannerworks/alertbanner/internal/content"
)

var (
	// ErrAlertNotFound indicates the requested alert record does not exist.
	ErrAlertNotFound = errors.New("alert service: alert not found")

	// ErrLanguageNotFound indicates the locale is unknown to the tenant.
	ErrLanguageNotFound = errors.New("language service: language not found")
)

// ValidationError carries the field-addressable messages produced by the
// content model. It is never fatal; the caller surfaces each message inline.
type ValidationError struct {
	Fields content.FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e.Fields))
	for key, message := range e.Fields {
		parts = append(parts, string(key)+": "+message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError extracts a ValidationError when err wraps one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
