package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserHeader carries the viewer id set by the fronting gateway
const UserHeader = "X-User-ID"

var (
	// ErrUnauthenticated is returned when an operation needs a viewer and none is known
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidViewer is returned when the supplied identity cannot be parsed
	ErrInvalidViewer = errors.New("invalid viewer identity")
)

// AuthProvider resolves the viewer of a request. A nil id with a nil error
// means an anonymous request.
type AuthProvider interface {
	Viewer(r *http.Request) (*uuid.UUID, error)
}

// HeaderAuthProvider trusts the X-User-ID header. Token validation happens
// upstream of this service.
type HeaderAuthProvider struct{}

var _ AuthProvider = HeaderAuthProvider{}

func (HeaderAuthProvider) Viewer(r *http.Request) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(UserHeader))
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil, ErrInvalidViewer
	}
	return &id, nil
}
