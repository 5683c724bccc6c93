// Package apierror carries the abstract error kinds spec §7 defines and
// maps each to the HTTP status the boundary must return.
package apierror

import (
	"errors"
	"net/http"

	"github.com/zidane0000/ai-interview-platform/coordinator"
	"github.com/zidane0000/ai-interview-platform/rag"
)

// Kind is one of the error kinds spec §7 enumerates.
type Kind string

const (
	NotFound          Kind = "NotFound"
	InvalidState      Kind = "InvalidState"
	ValidationFailed  Kind = "ValidationFailed"
	UnsupportedFormat Kind = "UnsupportedFormat"
	GenerationFailed  Kind = "GenerationFailed"
	BadFrame          Kind = "BadFrame"
	Internal          Kind = "Internal"

	// Unauthorized is an HTTP-boundary-only kind (spec §6's bearer-token
	// auth requirement); it has no coordinator-side equivalent since auth
	// never reaches the coordinator.
	Unauthorized Kind = "Unauthorized"
)

var statusByKind = map[Kind]int{
	NotFound:          http.StatusNotFound,
	InvalidState:      http.StatusConflict,
	ValidationFailed:  http.StatusBadRequest,
	UnsupportedFormat: http.StatusUnsupportedMediaType,
	GenerationFailed:  http.StatusBadGateway,
	BadFrame:          http.StatusBadRequest,
	Internal:          http.StatusInternalServerError,
	Unauthorized:      http.StatusUnauthorized,
}

// Error is the typed error carrier handlers return to the response writer.
// Degraded marks a response that succeeded in a reduced-fidelity mode
// (spec §7: IndexUnavailable/STTUnavailable/CVUnavailable never masked as a
// plain success) rather than failed outright.
type Error struct {
	Kind     Kind
	Message  string
	Degraded bool
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status code for this error's Kind.
func (e *Error) Status() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// FromCoordinator classifies an error returned by the coordinator package
// into the spec §7 kind it corresponds to, defaulting to Internal for
// anything unrecognised (persistence failures etc., which spec §7 says are
// surfaced rather than recovered locally).
func FromCoordinator(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, coordinator.ErrNotFound):
		return New(NotFound, err.Error())
	case errors.Is(err, coordinator.ErrNotInProgress):
		return New(InvalidState, err.Error())
	case errors.Is(err, coordinator.ErrUnknownQuestion):
		return New(NotFound, err.Error())
	case errors.Is(err, coordinator.ErrValidationFailed):
		return New(ValidationFailed, err.Error())
	case errors.Is(err, rag.ErrUnsupportedFormat):
		return New(UnsupportedFormat, err.Error())
	case errors.Is(err, coordinator.ErrGenerationFailed):
		return New(GenerationFailed, err.Error())
	default:
		return New(Internal, err.Error())
	}
}
