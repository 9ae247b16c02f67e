// Package errors provides error handling for qfactor.
//
// This package re-exports github.com/cockroachdb/errors, providing stack
// traces, wrapping, hints and safe details, and adds the sentinel errors the
// parser, catalog, store and server share.
//
// Usage:
//
//	if err := cat.Validate(); err != nil {
//	    return errors.Wrap(err, "load catalog")
//	}
//
//	return errors.WithHint(errors.ErrInvalidFactor, "name a player or team")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
	CombineErrors      = crdb.CombineErrors
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails

	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// GetStack is an alias for GetReportableStackTrace
var GetStack = crdb.GetReportableStackTrace

// Sentinel errors. Wrap these with errors.Wrap() to add context while
// keeping errors.Is() checks working.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrInvalidFactor indicates a parsed factor lacks the structure a prediction needs
	ErrInvalidFactor = New("invalid factor")

	// ErrBackendUnavailable indicates a linguistic backend could not be constructed
	ErrBackendUnavailable = New("linguistic backend unavailable")

	// ErrCatalogInvalid indicates the entity catalog data failed validation
	ErrCatalogInvalid = New("invalid entity catalog")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsInvalidFactorError checks if an error is or wraps ErrInvalidFactor
func IsInvalidFactorError(err error) bool {
	return err != nil && Is(err, ErrInvalidFactor)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
