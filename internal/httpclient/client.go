// Package httpclient provides the outbound HTTP client used for model
// services. It refuses URLs and dial targets outside its Policy so a
// misconfigured endpoint cannot reach internal hosts.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/qfactor/errors"
)

const (
	defaultMaxRedirects = 5
	defaultMaxBodyBytes = 1 << 20
)

// Policy controls which endpoints a Client may reach
type Policy struct {
	AllowedSchemes []string // Default: ["http", "https"]
	MaxRedirects   int      // Default: 5
	// AllowPrivate permits loopback and private networks. Model servers
	// usually run next to the parser, so this is opt-in per endpoint.
	AllowPrivate bool
	MaxBodyBytes int64 // Default: 1 MiB
}

func (p Policy) withDefaults() Policy {
	if len(p.AllowedSchemes) == 0 {
		p.AllowedSchemes = []string{"http", "https"}
	}
	if p.MaxRedirects <= 0 {
		p.MaxRedirects = defaultMaxRedirects
	}
	if p.MaxBodyBytes <= 0 {
		p.MaxBodyBytes = defaultMaxBodyBytes
	}
	return p
}

// Client wraps http.Client with endpoint checks
type Client struct {
	*http.Client
	policy Policy
}

// StatusError is returned by PostJSON for non-2xx responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the server may succeed on a later attempt
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// New creates a client enforcing policy
func New(timeout time.Duration, policy Policy) *Client {
	c := &Client{
		Client: &http.Client{Timeout: timeout},
		policy: policy.withDefaults(),
	}
	c.CheckRedirect = c.checkRedirect

	if !c.policy.AllowPrivate {
		dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
		c.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, _, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, errors.Wrap(err, "invalid address")
				}
				// Resolved addresses are checked too; public names can point inward
				ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to resolve host %q", host)
				}
				for _, ip := range ips {
					if isPrivateIP(ip) {
						return nil, errors.Newf("private IP address blocked: %s", ip)
					}
				}
				return dialer.DialContext(ctx, network, addr)
			},
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		}
	}
	return c
}

// WrapClient applies policy to an existing http.Client, keeping its
// transport. Tests use it with httptest servers.
func WrapClient(hc *http.Client, policy Policy) *Client {
	c := &Client{Client: hc, policy: policy.withDefaults()}
	c.CheckRedirect = c.checkRedirect
	return c
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= c.policy.MaxRedirects {
		return errors.Newf("stopped after %d redirects", c.policy.MaxRedirects)
	}
	if err := c.check(req.URL); err != nil {
		return errors.Wrap(err, "redirect blocked")
	}
	return nil
}

// Check parses rawURL and verifies it is reachable under the policy
func (c *Client) Check(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}
	if err := c.check(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) check(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range c.policy.AllowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.policy.AllowedSchemes)
	}
	if u.User != nil {
		// http://model.example.com@10.0.0.1/ style confusion
		return errors.New("URL must not carry user info")
	}
	host := u.Hostname()
	if host == "" {
		return errors.New("URL missing hostname")
	}
	if c.policy.AllowPrivate {
		return nil
	}
	if isLocalhost(host) {
		return errors.New("localhost access blocked")
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return errors.Newf("private IP address blocked: %s", host)
	}
	return nil
}

// Do executes req after checking its URL
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.check(req.URL); err != nil {
		return nil, errors.Wrap(err, "request blocked by endpoint policy")
	}
	return c.Client.Do(req)
}

// PostJSON sends in as a JSON body and decodes a 2xx response into out.
// Non-2xx responses return a *StatusError.
func (c *Client) PostJSON(ctx context.Context, rawURL string, header http.Header, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.policy.MaxBodyBytes+1))
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if int64(len(respBody)) > c.policy.MaxBodyBytes {
		return errors.Newf("response exceeds %d bytes", c.policy.MaxBodyBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	return nil
}

var reservedV4 = []net.IPNet{
	{IP: net.IPv4(0, 0, 0, 0), Mask: net.CIDRMask(8, 32)},     // "this" network
	{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}, // carrier-grade NAT
	{IP: net.IPv4(240, 0, 0, 0), Mask: net.CIDRMask(4, 32)},   // reserved
}

// isPrivateIP reports loopback, private, link-local, multicast and
// reserved addresses
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return true
	}
	if ip4 := ip.To4(); ip4 != nil {
		for _, block := range reservedV4 {
			if block.Contains(ip4) {
				return true
			}
		}
		return false
	}
	// fec0::/10 site-local and 2001:db8::/32 documentation
	if len(ip) == net.IPv6len {
		if ip[0] == 0xfe && ip[1]&0xc0 == 0xc0 {
			return true
		}
		if ip[0] == 0x20 && ip[1] == 0x01 && ip[2] == 0x0d && ip[3] == 0xb8 {
			return true
		}
	}
	return false
}

func isLocalhost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "localhost" ||
		host == "localhost.localdomain" ||
		strings.HasSuffix(host, ".localhost")
}
