// Package api is the gateway to the remote student API. Every operation is a
// single request: no retries, no timeouts, and no cancellation once issued.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"brochure/internal/adapters/http/perf"
	"brochure/internal/domain/portfolio"
)

// DefaultBaseURL is the fixed origin the remote API listens on in development.
const DefaultBaseURL = "http://localhost:3000"

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Endpoint paths on the remote API.
const (
	pathStudents        = "/fetchStudents"
	pathOwnPortfolio    = "/fetchPortfolio"
	pathPortfolio       = "/portfolio/"
	pathSubmitPortfolio = "/submitportfolio"
	pathRegister        = "/register"
	pathLogin           = "/login"
	pathLogout          = "/logout"
	pathAdminLogin      = "/adminlogin"
	pathAdminLogout     = "/adminlogout"
)

// ClientConfig configures the gateway.
type ClientConfig struct {
	// BaseURL is the remote API origin, without a trailing slash.
	BaseURL string

	// HTTPClient performs the requests. Its Timeout must stay zero.
	HTTPClient *http.Client

	// Collector receives one KindUpstream entry per call. Optional.
	Collector *perf.Collector

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultClientConfig returns a config for baseURL with a plain HTTP client.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
	}
}

// Credentials are an email/password pair. Pass is the remote API's field name.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"pass"`
}

// Client is the remote data gateway.
type Client struct {
	baseURL   string
	http      *http.Client
	collector *perf.Collector
	logger    *slog.Logger
}

// NewClient creates a gateway client.
// PRE: config.BaseURL is an absolute URL
// POST: returned client never retries and never imposes a deadline
func NewClient(config ClientConfig) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		http:      config.HTTPClient,
		collector: config.Collector,
		logger:    config.Logger,
	}
}

// call describes one request.
type call struct {
	method string
	path   string
	label  string // perf grouping; defaults to path
	jar    http.CookieJar
	body   any
	basic  *Credentials
}

// response is a fully read answer.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// empty reports whether the body carries no value: nothing, whitespace or JSON null.
func (r response) empty() bool {
	b := bytes.TrimSpace(r.body)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// do performs exactly one request. The caller's cancellation is deliberately
// detached: once issued, a call runs to completion.
func (c *Client) do(ctx context.Context, cl call) (response, error) {
	ctx = context.WithoutCancel(ctx)

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return response{}, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.basic != nil {
		token := base64.StdEncoding.EncodeToString([]byte(cl.basic.Email + ":" + cl.basic.Password))
		req.Header.Set("Authorization", "Basic "+token)
	}

	hc := c.http
	if cl.jar != nil {
		withJar := *c.http
		withJar.Jar = cl.jar
		hc = &withJar
	}

	label := cl.label
	if label == "" {
		label = cl.path
	}

	start := time.Now()
	resp, err := hc.Do(req)
	var out response
	if err == nil {
		out.status = resp.StatusCode
		out.body, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
		resp.Body.Close()
	}
	c.observe(cl.method+" "+label, start, out.status, err)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w", cl.method, label, err)
	}
	return out, nil
}

func (c *Client) observe(op string, start time.Time, status int, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		c.logger.Warn("upstream_call", "op", op, "duration_ms", durationMs, "error", err)
	} else {
		c.logger.Debug("upstream_call", "op", op, "status", status, "duration_ms", durationMs)
	}
	if c.collector != nil {
		c.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       op,
			StatusCode: status,
			Failed:     err != nil || status >= 500,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ListStudents fetches every student. Unauthenticated.
// POST: a 2xx body that is not a JSON array yields ErrInvalidFormat
func (c *Client) ListStudents(ctx context.Context) ([]portfolio.Student, error) {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: pathStudents})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newAPIError(resp.status, resp.body)
	}
	trimmed := bytes.TrimSpace(resp.body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("list students: %w", ErrInvalidFormat)
	}
	var students []portfolio.Student
	if err := json.Unmarshal(trimmed, &students); err != nil {
		return nil, fmt.Errorf("list students: %w: %v", ErrInvalidFormat, err)
	}
	return students, nil
}

// FetchOwnPortfolio fetches the portfolio of the student the jar's cookies belong to.
// 204, 404, an empty body and JSON null all mean "no record yet"; every other
// failure, including an unparseable body, is reported as Failed.
func (c *Client) FetchOwnPortfolio(ctx context.Context, jar http.CookieJar) OwnPortfolioResult {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: pathOwnPortfolio, jar: jar})
	if err != nil {
		return failed(err)
	}
	switch {
	case resp.status == http.StatusNoContent, resp.status == http.StatusNotFound:
		return notFound()
	case resp.status == http.StatusUnauthorized:
		return failed(ErrUnauthorized)
	case !resp.ok():
		return failed(newAPIError(resp.status, resp.body))
	case resp.empty():
		return notFound()
	}
	var p portfolio.Portfolio
	if err := json.Unmarshal(resp.body, &p); err != nil {
		return failed(fmt.Errorf("own portfolio: %w: %v", ErrInvalidFormat, err))
	}
	p.Normalize()
	return found(p)
}

// FetchPortfolio fetches a portfolio by student id. Unauthenticated.
func (c *Client) FetchPortfolio(ctx context.Context, id string) (portfolio.Portfolio, error) {
	resp, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   pathPortfolio + url.PathEscape(id),
		label:  pathPortfolio + ":id",
	})
	if err != nil {
		return portfolio.Portfolio{}, err
	}
	if resp.status == http.StatusNotFound || (resp.ok() && resp.empty()) {
		return portfolio.Portfolio{}, fmt.Errorf("portfolio %s: %w", id, ErrNotFound)
	}
	if !resp.ok() {
		return portfolio.Portfolio{}, newAPIError(resp.status, resp.body)
	}
	var p portfolio.Portfolio
	if err := json.Unmarshal(resp.body, &p); err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("portfolio %s: %w: %v", id, ErrInvalidFormat, err)
	}
	p.Normalize()
	return p, nil
}

// SubmitPortfolio replaces the caller's portfolio with p.
// POST: a non-2xx answer yields *APIError carrying the body's message
func (c *Client) SubmitPortfolio(ctx context.Context, jar http.CookieJar, p portfolio.Portfolio) error {
	p.Normalize()
	resp, err := c.do(ctx, call{method: http.MethodPost, path: pathSubmitPortfolio, jar: jar, body: p})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return newAPIError(resp.status, resp.body)
	}
	return nil
}

// RegisterStudent creates a student login. Requires an admin session in jar.
// POST: 401 yields ErrUnauthorized; other non-2xx yield *APIError
func (c *Client) RegisterStudent(ctx context.Context, jar http.CookieJar, creds Credentials) error {
	resp, err := c.do(ctx, call{method: http.MethodPost, path: pathRegister, jar: jar, body: creds})
	if err != nil {
		return err
	}
	if resp.status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if !resp.ok() {
		return newAPIError(resp.status, resp.body)
	}
	return nil
}

// Login opens a student session; the server's session cookie lands in jar.
func (c *Client) Login(ctx context.Context, jar http.CookieJar, creds Credentials) error {
	return c.login(ctx, jar, pathLogin, creds)
}

// AdminLogin opens an admin session; the server's session cookie lands in jar.
func (c *Client) AdminLogin(ctx context.Context, jar http.CookieJar, creds Credentials) error {
	return c.login(ctx, jar, pathAdminLogin, creds)
}

func (c *Client) login(ctx context.Context, jar http.CookieJar, path string, creds Credentials) error {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: path, jar: jar, basic: &creds})
	if err != nil {
		return err
	}
	if resp.status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if !resp.ok() {
		return newAPIError(resp.status, resp.body)
	}
	return nil
}

// Logout ends the student session. Any HTTP answer counts as logged out;
// only a transport failure is returned.
func (c *Client) Logout(ctx context.Context, jar http.CookieJar) error {
	return c.logout(ctx, jar, pathLogout)
}

// AdminLogout ends the admin session with the same semantics as Logout.
func (c *Client) AdminLogout(ctx context.Context, jar http.CookieJar) error {
	return c.logout(ctx, jar, pathAdminLogout)
}

func (c *Client) logout(ctx context.Context, jar http.CookieJar, path string) error {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: path, jar: jar})
	if err != nil {
		return err
	}
	if !resp.ok() {
		c.logger.Info("upstream_logout_status", "path", path, "status", resp.status)
	}
	return nil
}
