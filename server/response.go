package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/logger"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error     string   `json:"error"`
	Hints     []string `json:"hints,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, errorBody{Error: message, RequestID: w.Header().Get(requestIDHeader)})
}

// writeErr reports err with the status statusFor picks, logging server
// faults through the request logger.
func (s *FactorServer) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request failed",
			append(logger.FieldsFromContext(r.Context()),
				logger.FieldPath, r.URL.Path,
				logger.FieldError, err)...)
	}
	_ = writeJSON(w, status, errorBody{
		Error:     err.Error(),
		Hints:     errors.GetAllHints(err),
		RequestID: w.Header().Get(requestIDHeader),
	})
}

// readJSON decodes a size-limited JSON request body. Unknown fields are
// rejected.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "invalid request body: %v", err)
	}
	return nil
}

// queryInt reads an integer query parameter, returning def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewInvalidRequestError("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// queryFloat reads a float query parameter, returning def when absent
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewInvalidRequestError("%s must be a number, got %q", name, raw)
	}
	return f, nil
}

// shortID truncates an ID to 8 characters for logging
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
