package server

import (
	"time"

	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/factor/store"
	"github.com/teranos/qfactor/factor/types"
)

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 100

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout = 15 * time.Second

	// DefaultMaxBatchSize caps texts per batch request
	DefaultMaxBatchSize = 100

	// maxBodyBytes caps request bodies
	maxBodyBytes = 1 << 20

	// maxTextLength caps a single factor text
	maxTextLength = 2000
)

// ServerState is the lifecycle state reported by /health
type ServerState int32

const (
	ServerStateRunning ServerState = iota
	ServerStateDraining
	ServerStateStopped
)

func (s ServerState) String() string {
	switch s {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	}
	return "unknown"
}

// ParseRequest is the body of POST /api/factors/parse
type ParseRequest struct {
	Text   string `json:"text"`
	League string `json:"league,omitempty"`
	Save   bool   `json:"save,omitempty"`
}

// ParseResponse carries a factor with its validity and explanation
type ParseResponse struct {
	ID          string              `json:"id,omitempty"`
	Factor      *types.ParsedFactor `json:"factor"`
	Valid       bool                `json:"valid"`
	Reason      string              `json:"reason"`
	Explanation string              `json:"explanation"`
}

// BatchRequest is the body of POST /api/factors/batch
type BatchRequest struct {
	Texts  []string `json:"texts"`
	League string   `json:"league,omitempty"`
}

// BatchResponse lists factors in request order
type BatchResponse struct {
	Factors []*types.ParsedFactor `json:"factors"`
}

// ValidateResponse is returned by POST /api/factors/validate
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// ExplainResponse is returned by POST /api/factors/explain
type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// HistoryResponse is returned by GET /api/factors/history
type HistoryResponse struct {
	Records []*store.Record `json:"records"`
	Counts  map[string]int  `json:"counts"`
}

// LookupResponse is returned by GET /api/catalog/lookup
type LookupResponse struct {
	Query     string        `json:"query"`
	Kind      catalog.Kind  `json:"kind,omitempty"`
	Threshold float64       `json:"threshold"`
	Match     catalog.Match `json:"match"`
	Found     bool          `json:"found"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string               `json:"status"`
	State    string               `json:"state"`
	Version  string               `json:"version"`
	Commit   string               `json:"commit"`
	Parser   parser.Stats         `json:"parser"`
	Catalog  map[catalog.Kind]int `json:"catalog"`
	Storage  bool                 `json:"storage"`
	Clients  int                  `json:"clients"`
	Uptime   string               `json:"uptime"`
	Rejected int64                `json:"rate_limited"`
}

// wsRequest is the optional JSON form of a WebSocket frame. Plain text
// frames are parsed as the factor text.
type wsRequest struct {
	ID     string `json:"id,omitempty"`
	Text   string `json:"text"`
	League string `json:"league,omitempty"`
}

// wsResponse is one reply frame
type wsResponse struct {
	Type   string              `json:"type"` // "factor" or "error"
	ID     string              `json:"id,omitempty"`
	Factor *types.ParsedFactor `json:"factor,omitempty"`
	Valid  bool                `json:"valid"`
	Reason string              `json:"reason,omitempty"`
	Error  string              `json:"error,omitempty"`
}
