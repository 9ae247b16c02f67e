package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/catalog"
	"github.com/teranos/qfactor/factor/parser"
	"github.com/teranos/qfactor/factor/store"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/logger"
	"github.com/teranos/qfactor/version"
)

// checkText rejects factor texts the parser should never see
func checkText(text string) error {
	switch {
	case strings.TrimSpace(text) == "":
		return errors.WithHint(
			errors.NewInvalidRequestError("text is required"),
			"send {\"text\": \"LeBron James scores over 25 points\"}")
	case len(text) > maxTextLength:
		return errors.NewInvalidRequestError("text exceeds %d bytes", maxTextLength)
	}
	return nil
}

// HandleParse parses one factor and optionally stores it
func (s *FactorServer) HandleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := checkText(req.Text); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if req.Save && s.store == nil {
		s.writeErr(w, r, errors.WithHint(ErrStorageDisabled, "set storage.enabled = true"))
		return
	}

	pf := s.Parser().ParseWithOptions(req.Text, parser.ParseOptions{League: req.League})
	valid, reason := parser.Validate(pf)
	resp := ParseResponse{
		Factor:      pf,
		Valid:       valid,
		Reason:      reason,
		Explanation: parser.Explain(pf),
	}

	if req.Save {
		id, err := s.store.Save(r.Context(), pf)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		resp.ID = id
		s.logger.Infow("factor stored",
			append(logger.FieldsFromContext(r.Context()),
				logger.FieldFactorID, shortID(id),
				logger.FieldFactorType, pf.FactorType)...)
	}
	_ = writeJSON(w, http.StatusOK, resp)
}

// HandleBatch parses many factors in parallel, in request order
func (s *FactorServer) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if len(req.Texts) > s.maxBatch {
		s.writeErr(w, r, errors.NewInvalidRequestError("batch of %d exceeds limit of %d", len(req.Texts), s.maxBatch))
		return
	}
	for i, text := range req.Texts {
		if len(text) > maxTextLength {
			s.writeErr(w, r, errors.NewInvalidRequestError("texts[%d] exceeds %d bytes", i, maxTextLength))
			return
		}
	}

	factors := s.Parser().ParseMultiWithOptions(req.Texts, parser.ParseOptions{League: req.League})
	s.logger.Debugw("batch request parsed",
		append(logger.FieldsFromContext(r.Context()), logger.FieldBatchSize, len(req.Texts))...)
	_ = writeJSON(w, http.StatusOK, BatchResponse{Factors: factors})
}

// HandleValidate checks a factor document
func (s *FactorServer) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var pf types.ParsedFactor
	if err := readJSON(w, r, &pf); err != nil {
		s.writeErr(w, r, err)
		return
	}
	valid, reason := parser.Validate(&pf)
	_ = writeJSON(w, http.StatusOK, ValidateResponse{Valid: valid, Reason: reason})
}

// HandleExplain renders a factor document as a sentence
func (s *FactorServer) HandleExplain(w http.ResponseWriter, r *http.Request) {
	var pf types.ParsedFactor
	if err := readJSON(w, r, &pf); err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, ExplainResponse{Explanation: parser.Explain(&pf)})
}

// HandleHistory lists recently stored factors with per-type counts
func (s *FactorServer) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeErr(w, r, errors.WithHint(ErrStorageDisabled, "set storage.enabled = true"))
		return
	}
	limit, err := queryInt(r, "limit", store.DefaultRecentLimit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	records, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	counts, err := s.store.CountByType(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, HistoryResponse{Records: records, Counts: counts})
}

// HandleGetFactor returns one stored factor by ID
func (s *FactorServer) HandleGetFactor(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeErr(w, r, errors.WithHint(ErrStorageDisabled, "set storage.enabled = true"))
		return
	}
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, rec)
}

// HandleLookup fuzzy-matches q against the catalog
func (s *FactorServer) HandleLookup(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.writeErr(w, r, errors.NewInvalidRequestError("q is required"))
		return
	}
	kind, ok := catalog.ParseKind(r.URL.Query().Get("type"))
	if !ok {
		s.writeErr(w, r, errors.WithHint(
			errors.NewInvalidRequestError("unknown entity type %q", r.URL.Query().Get("type")),
			"use league, team, player or condition"))
		return
	}
	threshold, err := queryFloat(r, "threshold", catalog.DefaultThreshold)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if threshold < 0 || threshold > 1 {
		s.writeErr(w, r, errors.NewInvalidRequestError("threshold must be between 0 and 1"))
		return
	}

	m := s.Parser().Catalog().FindEntity(q, kind, threshold)
	_ = writeJSON(w, http.StatusOK, LookupResponse{
		Query:     q,
		Kind:      kind,
		Threshold: threshold,
		Match:     m,
		Found:     m.Found(),
	})
}

// HandleHealth reports backend, cache and lifecycle state
func (s *FactorServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	p := s.Parser()
	info := version.Get()
	state := s.State()
	status := "ok"
	code := http.StatusOK
	if state != ServerStateRunning {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	_ = writeJSON(w, code, HealthResponse{
		Status:   status,
		State:    state.String(),
		Version:  info.Version,
		Commit:   info.Short(),
		Parser:   p.Stats(),
		Catalog:  p.Catalog().Counts(),
		Storage:  s.store != nil,
		Clients:  s.ClientCount(),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Rejected: s.rateLimited.Load(),
	})
}

// HandleWebSocket upgrades the connection and streams parse replies
func (s *FactorServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.State() != ServerStateRunning {
		s.writeErr(w, r, ErrServerDraining)
		return
	}
	if s.ClientCount() >= MaxClients {
		s.writeErr(w, r, ErrTooManyClients)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Warnw("websocket upgrade failed",
			append(logger.FieldsFromContext(r.Context()), logger.FieldError, err)...)
		return
	}

	c := newClient(s, conn, r.RemoteAddr)
	if err := s.register(c); err != nil {
		c.closeWith(websocket.CloseTryAgainLater, err.Error())
		return
	}
	s.logger.Infow("websocket client connected",
		logger.FieldAddress, c.addr,
		"clients", s.ClientCount())

	s.wg.Add(2)
	go c.writePump()
	go c.readPump()
}
