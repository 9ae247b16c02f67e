// Package server exposes the factor parser over HTTP and WebSocket.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/factor/store"
	"github.com/teranos/qfactor/logger"
)

// Options configures a FactorServer
type Options struct {
	Parser *parser.Parser
	// Store persists parses when set; history endpoints answer 501 without it
	Store          *store.FactorStore
	AllowedOrigins []string
	// RateLimitRPS <= 0 disables rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBatchSize   int
	Logger         *zap.SugaredLogger
}

// FactorServer serves parse requests. The parser can be swapped while
// requests are in flight, which is how config and catalog reloads land.
type FactorServer struct {
	parser         atomic.Pointer[parser.Parser]
	store          *store.FactorStore
	allowedOrigins []string
	limiter        *rate.Limiter
	rateLimited    atomic.Int64
	maxBatch       int
	upgrader       websocket.Upgrader
	logger         *zap.SugaredLogger
	handler        http.Handler

	clients map[*Client]bool
	mu      sync.RWMutex

	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	state      atomic.Int32
	started    time.Time
}

// New builds a server around opts.Parser
func New(opts Options) (*FactorServer, error) {
	if opts.Parser == nil {
		return nil, errors.New("server requires a parser")
	}
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("server")
	}
	maxBatch := opts.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &FactorServer{
		store:          opts.Store,
		allowedOrigins: opts.AllowedOrigins,
		maxBatch:       maxBatch,
		logger:         log,
		clients:        make(map[*Client]bool),
		ctx:            ctx,
		cancel:         cancel,
		started:        time.Now(),
	}
	s.parser.Store(opts.Parser)

	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     s.checkOrigin,
	}
	s.handler = s.routes()
	s.state.Store(int32(ServerStateRunning))
	return s, nil
}

// Handler returns the HTTP handler with all middleware applied
func (s *FactorServer) Handler() http.Handler { return s.handler }

// Parser returns the parser currently serving requests
func (s *FactorServer) Parser() *parser.Parser { return s.parser.Load() }

// SetParser swaps the parser used by subsequent requests
func (s *FactorServer) SetParser(p *parser.Parser) {
	if p == nil {
		return
	}
	s.parser.Store(p)
	s.logger.Infow("parser replaced", logger.FieldBackend, p.Backend().Kind())
}

// State reports the lifecycle state
func (s *FactorServer) State() ServerState { return ServerState(s.state.Load()) }

// ClientCount returns the number of connected WebSocket clients
func (s *FactorServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *FactorServer) register(c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) >= MaxClients {
		return ErrTooManyClients
	}
	s.clients[c] = true
	return nil
}

func (s *FactorServer) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}
