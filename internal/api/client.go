// Package api is the pre-configured HTTP client for the PropertyDeal admin
// API. It attaches credentials through a cookie jar, mirrors the CSRF cookie
// into a header on mutating requests, and routes 401/403 responses to an
// injected auth-error handler. Endpoint methods are thin wrappers: they send
// a request, unwrap the data envelope, and let errors propagate.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"propadmin/internal/api/metrics"
	"propadmin/internal/api/tracer"
	"propadmin/pkg/cookies"
	dErrors "propadmin/pkg/domain-errors"
)

const (
	// CSRFCookieName is the non-HTTP-only cookie the server rotates.
	CSRFCookieName = "csrf_token"
	// CSRFHeaderName carries the mirrored token on mutating requests.
	CSRFHeaderName = "X-CSRF-Token"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "propadmin-console/1.0"
	maxResponseBytes = 10 << 20

	defaultUnauthorizedMessage = "Session expired. Please log in again."
	defaultForbiddenMessage    = "You do not have permission to access this resource."
)

// Client talks to the admin API. All session credentials live in the cookie
// jar; application code never sees the session token itself.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	jar       http.CookieJar
	logger    *slog.Logger
	tracer    tracer.Tracer
	metrics   *metrics.Metrics
	userAgent string

	handler   *handlerSlot
	csrfGroup singleflight.Group
	breaker   *breaker
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. A timeout surfaces as a generic network
// error, never as an auth error.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the request tracer. Default is the no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMetrics sets the Prometheus collectors. Default is unmetered.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithAuthErrorHandler injects the auth-error callback at construction time.
// Whatever composes the session manager passes its handler here; at most one
// consumer is supported, and SetAuthErrorHandler replaces it.
func WithAuthErrorHandler(h AuthErrorHandler) Option {
	return func(c *Client) {
		c.handler.set(h)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCircuitBreaker fails requests fast after threshold consecutive
// transport failures, probing the backend once per cooldown. Disabled by
// default; the console enables it so a dead backend surfaces immediately
// instead of stacking up timeouts.
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(c *Client) {
		if threshold > 0 && cooldown > 0 {
			c.breaker = newBreaker(threshold, cooldown)
		}
	}
}

// WithHTTPTransport swaps the underlying round tripper (for testing).
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// New creates a client for the admin API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: u,
		jar:     jar,
		http: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
		logger:    slog.New(slog.DiscardHandler),
		tracer:    tracer.NewNoop(),
		userAgent: defaultUserAgent,
		handler:   &handlerSlot{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetAuthErrorHandler replaces the registered auth-error handler. Passing nil
// unregisters it. The slot holds at most one handler; the session manager is
// the expected consumer and unregisters itself on teardown.
func (c *Client) SetAuthErrorHandler(h AuthErrorHandler) {
	c.handler.set(h)
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// FetchCSRFToken asks the server to issue a CSRF token, priming the cookie
// when it has not been set yet (cold start). Failures are non-fatal by
// design: the caller gets "" and the server will reject a later mutating
// request if it actually required the token. Concurrent primes collapse
// into one request.
func (c *Client) FetchCSRFToken(ctx context.Context) string {
	v, _, _ := c.csrfGroup.Do("prime", func() (any, error) {
		ctx, span := c.tracer.Start(ctx, tracer.SpanCSRFPrime)
		var out struct {
			CSRFToken string `json:"csrfToken"`
		}
		err := c.do(ctx, http.MethodGet, "/csrf-token", nil, nil, &out)
		span.End(err)
		c.metrics.ObserveCSRFPrime(err == nil)
		if err != nil {
			c.logger.WarnContext(ctx, "failed to fetch csrf token", "error", err)
			return "", nil
		}
		return out.CSRFToken, nil
	})
	token, _ := v.(string)
	return token
}

// apiErrorBody is the error envelope the admin API attaches to non-2xx
// responses. Every field is optional.
type apiErrorBody struct {
	Message      string     `json:"message"`
	Code         string     `json:"code"`
	LockoutUntil *time.Time `json:"lockoutUntil"`
}

var mutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// do issues one request and decodes the JSON response into out (when
// non-nil). It owns the interceptor contract: CSRF header injection on the
// way out, 401/403 dispatch on the way back. The returned error always
// propagates to the caller even when a dispatch happened.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	data, err := c.doRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decode response")
	}
	return nil
}

// doRaw is do without response decoding; export endpoints use it for blobs.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if c.breaker != nil && !c.breaker.allow() {
		return nil, dErrors.New(dErrors.CodeUnavailable, "admin API unreachable, retrying shortly")
	}

	requestID := uuid.NewString()

	ref := &url.URL{Path: path}
	if query != nil {
		ref.RawQuery = query.Encode()
	}
	target := c.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Mirror the CSRF cookie into the header on state-changing requests.
	// The cookie is read fresh every time because the server may rotate it.
	csrfSet := false
	if mutatingMethods[method] {
		if token, ok := cookies.FromJar(c.jar, c.baseURL, CSRFCookieName); ok {
			req.Header.Set(CSRFHeaderName, token)
			csrfSet = true
		}
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanRequest,
		tracer.String(tracer.AttrMethod, method),
		tracer.String(tracer.AttrPath, path),
		tracer.String(tracer.AttrRequestID, requestID),
		tracer.Bool(tracer.AttrCSRFHeader, csrfSet),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, elapsed)
		derr := c.classifyTransportError(err)
		if c.breaker != nil && !errors.Is(err, context.Canceled) {
			if c.breaker.recordFailure() {
				c.logger.WarnContext(ctx, "circuit opened, backend unreachable")
			}
		}
		span.End(derr)
		c.logger.WarnContext(ctx, "request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err,
		)
		return nil, derr
	}
	defer resp.Body.Close()

	if c.breaker != nil && c.breaker.recordSuccess() {
		c.logger.InfoContext(ctx, "circuit closed, backend reachable again")
	}

	span.SetAttributes(tracer.Int(tracer.AttrStatus, resp.StatusCode))
	c.metrics.ObserveRequest(method, resp.StatusCode, elapsed)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		derr := dErrors.Wrap(err, dErrors.CodeUnavailable, "read response body")
		span.End(derr)
		return nil, derr
	}

	if resp.StatusCode >= 400 {
		derr := c.errorFromResponse(ctx, resp.StatusCode, data, span)
		span.End(derr)
		c.logger.DebugContext(ctx, "request rejected",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return nil, derr
	}

	span.End(nil)
	return data, nil
}

// errorFromResponse translates a non-2xx response into a domain error and,
// for 401/403, dispatches the auth-error handler exactly once.
func (c *Client) errorFromResponse(ctx context.Context, status int, data []byte, span tracer.Span) error {
	var envelope apiErrorBody
	// A missing or malformed envelope is fine; defaults apply.
	_ = json.Unmarshal(data, &envelope)

	switch status {
	case http.StatusUnauthorized:
		msg := envelope.Message
		if msg == "" {
			msg = defaultUnauthorizedMessage
		}
		c.dispatchAuthError(ctx, AuthError{Kind: AuthErrorUnauthorized, Message: msg}, span)
		return dErrors.New(dErrors.CodeUnauthorized, msg)

	case http.StatusForbidden:
		msg := envelope.Message
		if msg == "" {
			msg = defaultForbiddenMessage
		}
		c.dispatchAuthError(ctx, AuthError{Kind: AuthErrorForbidden, Message: msg}, span)
		return dErrors.New(dErrors.CodeForbidden, msg)
	}

	code := statusToCode(status)
	if envelope.Code == "ACCOUNT_LOCKED" {
		err := &dErrors.Error{Code: dErrors.CodeAccountLocked, Message: envelope.Message}
		if envelope.LockoutUntil != nil {
			err.Err = &LockoutError{Until: *envelope.LockoutUntil}
		}
		return err
	}
	msg := envelope.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return dErrors.New(code, msg)
}

func (c *Client) dispatchAuthError(ctx context.Context, authErr AuthError, span tracer.Span) {
	c.metrics.ObserveAuthError(string(authErr.Kind))
	span.AddEvent(tracer.EventAuthErrorDispatched, tracer.String("kind", string(authErr.Kind)))
	if h := c.handler.get(); h != nil {
		h(authErr)
	}
}

// classifyTransportError maps transport failures onto domain codes. Timeouts
// and connection errors never enter the auth-error path; only explicit
// status codes do.
func (c *Client) classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "request canceled")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "network error")
}

func statusToCode(status int) dErrors.Code {
	switch status {
	case http.StatusBadRequest:
		return dErrors.CodeBadRequest
	case http.StatusNotFound:
		return dErrors.CodeNotFound
	case http.StatusConflict:
		return dErrors.CodeConflict
	case http.StatusLocked:
		return dErrors.CodeAccountLocked
	case http.StatusUnprocessableEntity:
		return dErrors.CodeValidation
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return dErrors.CodeUnavailable
	default:
		return dErrors.CodeInternal
	}
}
