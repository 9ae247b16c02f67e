package parser

import (
	"fmt"
	"strings"
	"time"
)

// ParseErrorKind categorizes what went wrong while parsing a factor.
// None of these reach Parse callers as errors; they are carried on detector
// results and logged so fallbacks can be told apart from empty matches.
type ParseErrorKind string

const (
	ErrorKindResolutionMiss     ParseErrorKind = "resolution_miss"     // Entity or condition below threshold
	ErrorKindBackendUnavailable ParseErrorKind = "backend_unavailable" // Higher-fidelity detector failed or absent
	ErrorKindMalformedInput     ParseErrorKind = "malformed_input"     // Empty or token-free text
	ErrorKindInternal           ParseErrorKind = "internal"            // Recovered panic or unexpected failure
)

// ParseError is a structured parser error with debug context
type ParseError struct {
	Err       error                  // Underlying error
	Kind      ParseErrorKind         // Error category
	Message   string                 // Human-readable message
	Text      string                 // Input being parsed
	Stage     Stage                  // Pipeline stage where it occurred
	Context   map[string]interface{} // Additional debug context
	Timestamp time.Time
}

// NewParseError creates a ParseError with the given kind and message
func NewParseError(kind ParseErrorKind, message string) *ParseError {
	return &ParseError{
		Kind:      kind,
		Message:   message,
		Context:   make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Stage != "" {
		fmt.Fprintf(&b, " (stage %s)", e.Stage)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap for errors.Is/As compatibility
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WithText records the input that triggered the error
func (e *ParseError) WithText(text string) *ParseError {
	e.Text = text
	return e
}

// WithStage records the pipeline stage
func (e *ParseError) WithStage(stage Stage) *ParseError {
	e.Stage = stage
	return e
}

// WithContext adds debug context metadata
func (e *ParseError) WithContext(key string, value interface{}) *ParseError {
	e.Context[key] = value
	return e
}

// WithUnderlying sets the underlying error
func (e *ParseError) WithUnderlying(err error) *ParseError {
	e.Err = err
	return e
}
