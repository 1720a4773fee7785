package pokedex

import (
	"errors"
	"fmt"

	"github.com/latoulicious/pokedex/pkg/database/models"
)

var (
	// ErrNotFound means the identifier exists neither locally nor upstream
	ErrNotFound = errors.New("not found")

	// ErrResolutionFailed matches every *ResolutionError
	ErrResolutionFailed = errors.New("resolution failed")

	// ErrMissingLinkage is returned when a species or chain would be created
	// without its owning entity
	ErrMissingLinkage = errors.New("missing linkage")

	// ErrInvalidIdentifier is returned for empty or non-positive identifiers
	ErrInvalidIdentifier = models.ErrInvalidIdentifier

	// ErrConflict marks two writers racing on the same unique key. It is
	// logged and resolved last-writer-wins, never returned.
	ErrConflict = errors.New("conflicting write")

	// ErrMalformedPayload is wrapped in a ResolutionError when an upstream
	// payload lacks the fields the sync layer depends on
	ErrMalformedPayload = errors.New("malformed payload")
)

// ResolutionError reports a failure talking to or decoding the upstream API
type ResolutionError struct {
	Kind       Kind
	Identifier string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s %q: %v", e.Kind, e.Identifier, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrResolutionFailed) match
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolutionFailed
}

// NotFoundError wraps ErrNotFound with the identifier that was looked up
func NotFoundError(kind Kind, identifier string) error {
	return fmt.Errorf("%s %q: %w", kind, identifier, ErrNotFound)
}
