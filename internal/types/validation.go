package types

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validation failures are rejected before any optimistic state change
// or network call.
var (
	ErrMissingTitle = errors.New("item requires a non-empty title")
	ErrMissingImage = errors.New("item requires an image reference")
	ErrMissingName  = errors.New("trip requires a non-empty name")
	ErrInlineImage  = errors.New("inline image data must not reach the remote store")
)

// ValidateItem checks the persistence invariant: a non-empty title and
// an image reference candidate. The candidate may still be a local path
// or inline data at this point; materialization resolves it later.
func ValidateItem(it SavedItem) error {
	if err := validate.Struct(it); err != nil || strings.TrimSpace(it.Title) == "" {
		return ErrMissingTitle
	}
	if it.ImageURI == "" {
		return ErrMissingImage
	}
	return nil
}

// ValidateTrip checks the trip invariant (name required; dates are
// loosely validated free-form strings).
func ValidateTrip(t Trip) error {
	if err := validate.Struct(t); err != nil || strings.TrimSpace(t.Name) == "" {
		return ErrMissingName
	}
	return nil
}

// IsInlineImage reports whether uri is an inline base64 data URL.
// Inline payloads bloat remote rows and must never be persisted.
func IsInlineImage(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}
