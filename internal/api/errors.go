package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/latoulicious/pokedex/pkg/pokedex"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, pokedex.ErrInvalidIdentifier), errors.Is(err, errBadQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidViewer):
		return http.StatusUnauthorized
	case errors.Is(err, pokedex.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pokedex.ErrResolutionFailed):
		return http.StatusBadGateway
	default:
		// includes ErrMissingLinkage, which no request should be able to cause
		return http.StatusInternalServerError
	}
}

// abortWithError records err for the request middleware and writes the
// mapped status. Internal errors are not echoed to the client.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
