// Package classifier calls a remote negation model over HTTP. It backs
// the parser's transformer tier.
//
// The service receives {"text": "..."} and answers either
//
//	{"negated": true, "score": 0.97}
//
// or a text-classification list such as
//
//	[{"label": "NEGATED", "score": 0.97}, {"label": "AFFIRMED", "score": 0.03}]
package classifier

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/internal/httpclient"
	"github.com/teranos/qfactor/logger"
)

const (
	DefaultTimeout    = 2 * time.Second
	DefaultMaxRetries = 2
	retryDelay        = 100 * time.Millisecond
)

// negativeLabels are label values read as "negated"
var negativeLabels = map[string]bool{
	"negated": true, "negation": true, "negative": true, "neg": true,
	"label_1": true, "true": true, "yes": true,
}

// Config configures a Client
type Config struct {
	URL        string
	APIKey     string // sent as a bearer token when set
	Timeout    time.Duration
	MaxRetries int
	// RatePerSecond caps outbound requests; zero means unlimited
	RatePerSecond float64
	// AllowPrivate permits loopback and private-network URLs
	AllowPrivate bool
	Logger       *zap.SugaredLogger
}

// Client implements parser.NegationClassifier
type Client struct {
	url        string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	http       *httpclient.Client
	limiter    *rate.Limiter
	log        *zap.SugaredLogger
}

// Result is one classification
type Result struct {
	Negated bool    `json:"negated"`
	Score   float64 `json:"score"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// New validates cfg.URL against the endpoint policy and builds a client
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.WithHint(errors.New("classifier URL is empty"), "set parser.classifier_url")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	log := cfg.Logger
	if log == nil {
		log = logger.ComponentLogger("classifier")
	}

	hc := httpclient.New(cfg.Timeout, httpclient.Policy{AllowPrivate: cfg.AllowPrivate})
	if _, err := hc.Check(cfg.URL); err != nil {
		return nil, errors.Wrapf(err, "classifier URL %q rejected", cfg.URL)
	}

	c := &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		http:       hc,
		log:        log,
	}
	if cfg.RatePerSecond > 0 {
		burst := int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return c, nil
}

// SetHTTPClient swaps the transport; tests point it at httptest servers
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.http = httpclient.WrapClient(hc, httpclient.Policy{AllowPrivate: true})
}

// ClassifyNegation satisfies parser.NegationClassifier
func (c *Client) ClassifyNegation(text string) (bool, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout*time.Duration(c.maxRetries+1))
	defer cancel()
	res, err := c.Classify(ctx, text)
	if err != nil {
		return false, 0, err
	}
	return res.Negated, res.Score, nil
}

// Classify asks the model about text, retrying transient failures
func (c *Client) Classify(ctx context.Context, text string) (Result, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, errors.Wrap(ctx.Err(), "classifier retry cancelled")
			case <-time.After(time.Duration(attempt) * retryDelay):
			}
			c.log.Debugw("retrying negation classifier", "attempt", attempt, logger.FieldError, lastErr)
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return Result{}, errors.Wrap(err, "classifier rate limit wait")
			}
		}

		res, err := c.classifyOnce(ctx, text)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return Result{}, errors.Wrap(lastErr, "negation classifier failed")
}

func (c *Client) classifyOnce(ctx context.Context, text string) (Result, error) {
	var header http.Header
	if c.apiKey != "" {
		header = http.Header{"Authorization": []string{"Bearer " + c.apiKey}}
	}
	var raw json.RawMessage
	if err := c.http.PostJSON(ctx, c.url, header, map[string]string{"text": text}, &raw); err != nil {
		return Result{}, err
	}
	return decode(raw)
}

func decode(raw json.RawMessage) (Result, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var labels []labelScore
		if err := json.Unmarshal(raw, &labels); err != nil {
			// Some pipelines nest one list per input
			var nested [][]labelScore
			if nestedErr := json.Unmarshal(raw, &nested); nestedErr != nil {
				return Result{}, errors.Wrap(err, "invalid label list")
			}
			if len(nested) > 0 {
				labels = nested[0]
			}
		}
		return fromLabels(labels)
	}

	var res struct {
		Negated *bool    `json:"negated"`
		Score   *float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, errors.Wrap(err, "invalid classifier response")
	}
	if res.Negated == nil {
		return Result{}, errors.New("classifier response has no \"negated\" field")
	}
	out := Result{Negated: *res.Negated, Score: 1}
	if res.Score != nil {
		out.Score = *res.Score
	}
	return out, nil
}

func fromLabels(labels []labelScore) (Result, error) {
	if len(labels) == 0 {
		return Result{}, errors.New("classifier returned no labels")
	}
	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return Result{
		Negated: negativeLabels[strings.ToLower(best.Label)],
		Score:   best.Score,
	}, nil
}

func retryable(err error) bool {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "eof"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
