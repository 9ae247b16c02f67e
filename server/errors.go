package server

import (
	"net/http"

	"github.com/teranos/qfactor/errors"
)

// Server lifecycle errors
var (
	ErrServerNotRunning = errors.New("server is not running")
	ErrServerDraining   = errors.New("server is draining")
	ErrStorageDisabled  = errors.New("factor storage is disabled")
	ErrTooManyClients   = errors.New("too many websocket clients")
)

// statusFor maps an error to the HTTP status it is reported with
func statusFor(err error) int {
	switch {
	case errors.IsInvalidRequestError(err), errors.IsInvalidFactorError(err):
		return http.StatusBadRequest
	case errors.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, ErrServerDraining), errors.Is(err, ErrTooManyClients):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
