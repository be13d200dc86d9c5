package foursquare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NordCoder/checkins/internal/domain"
	"github.com/NordCoder/checkins/internal/obs"
	"github.com/NordCoder/checkins/internal/obs/retry"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.foursquare.com/v2/"
	DefaultVersion = "20180323"

	maxBodyBytes = 4 << 20
)

type Config struct {
	BaseURL            string
	Token              string
	Version            string
	Locale             string
	UserAgent          string
	Timeout            time.Duration
	InsecureSkipVerify bool
	Retry              RetryConfig
}

// RetryConfig applies to GET requests only.
type RetryConfig struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

// Client performs authenticated calls against the Foursquare v2 API and
// unwraps the response envelope.
type Client struct {
	base    *url.URL
	token   string
	version string
	locale  string
	ua      string
	http    *http.Client
	log     *zap.Logger
	retry   retry.Policy
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.With(zap.String("component", "foursquare.client"))
		}
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", raw)
	}

	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &Client{
		base:    base,
		token:   cfg.Token,
		version: version,
		locale:  cfg.Locale,
		ua:      cfg.UserAgent,
		log:     zap.L().With(zap.String("component", "foursquare.client")),
	}
	c.retry = retry.Policy{
		Name:     "foursquare.get",
		Attempts: cfg.Retry.Attempts,
		Backoff:  retry.ExpoJitter{Base: cfg.Retry.Base, Max: cfg.Retry.Max, Jitter: 0.2},
		Retryable: func(err error) bool {
			var tr *transientError
			return errors.As(err, &tr)
		},
		OnAttempt: func(i int, err error) {
			c.log.Debug("get attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		},
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(cfg)
	}
	return c, nil
}

// Get issues a GET and decodes response into out. Transient failures are
// retried according to the client's retry config.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	err := retry.Do(ctx, func() error {
		return c.do(ctx, http.MethodGet, path, query, out)
	}, c.retry)
	var tr *transientError
	if errors.As(err, &tr) {
		return tr.err
	}
	return err
}

// Post issues a form-encoded POST. It is never retried.
func (c *Client) Post(ctx context.Context, path string, form url.Values, out any) error {
	err := c.do(ctx, http.MethodPost, path, form, out)
	var tr *transientError
	if errors.As(err, &tr) {
		return tr.err
	}
	return err
}

// transientError marks failures worth another GET attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	rt := route(path)
	log := obs.WithTrace(ctx, c.log).With(zap.String("method", method), zap.String("route", rt))

	token := c.token
	if t, ok := tokenFrom(ctx); ok {
		token = t
	}
	if token == "" {
		mRequests.WithLabelValues(method, rt, "no_token").Inc()
		return fmt.Errorf("%s %s: %w: no oauth token", method, rt, domain.ErrAuth)
	}

	req, err := c.newRequest(ctx, method, path, token, params)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	mLatency.WithLabelValues(method, rt).Observe(time.Since(start).Seconds())
	if err != nil {
		mRequests.WithLabelValues(method, rt, "transport_error").Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("request failed", zap.Error(err))
		return &transientError{err: fmt.Errorf("%s %s: %w", method, rt, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		mRequests.WithLabelValues(method, rt, "transport_error").Inc()
		return &transientError{err: fmt.Errorf("%s %s: read body: %w", method, rt, err)}
	}

	var env envelope
	decErr := json.Unmarshal(body, &env)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300 && (env.Meta.Code == 0 || env.Meta.Code == http.StatusOK)

	if !ok {
		apiErr := classify(resp.StatusCode, env.Meta)
		mRequests.WithLabelValues(method, rt, outcome(apiErr)).Inc()
		log.Debug("api error",
			zap.Int("status", apiErr.Status),
			zap.String("error_type", apiErr.Type),
			zap.String("error_detail", apiErr.Detail),
		)
		if retryable(resp.StatusCode, env.Meta) {
			return &transientError{err: apiErr}
		}
		return apiErr
	}
	if decErr != nil {
		mRequests.WithLabelValues(method, rt, "decode_error").Inc()
		return fmt.Errorf("%s %s: decode envelope: %w", method, rt, remote(resp.StatusCode, decErr))
	}

	mRequests.WithLabelValues(method, rt, "ok").Inc()
	log.Debug("api call", zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if out == nil {
		return nil
	}
	if len(env.Response) == 0 {
		return fmt.Errorf("%s %s: %w", method, rt, remote(resp.StatusCode, errors.New("empty response")))
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, rt, remote(resp.StatusCode, err))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, params url.Values) (*http.Request, error) {
	u := c.base.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")})

	q := url.Values{}
	var body io.Reader
	if method == http.MethodGet {
		for k, vs := range params {
			q[k] = vs
		}
	} else if len(params) > 0 {
		body = strings.NewReader(params.Encode())
	}
	q.Set("oauth_token", token)
	q.Set("v", c.version)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.locale != "" {
		req.Header.Set("Accept-Language", c.locale)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
	return req, nil
}

func remote(status int, err error) error {
	return &domain.APIError{Status: status, Type: "decode_error", Detail: err.Error(), Kind: domain.ErrRemote}
}

func outcome(e *domain.APIError) string {
	switch {
	case errors.Is(e, domain.ErrAuth):
		return "auth"
	case errors.Is(e, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(e, domain.ErrPermissionDenied):
		return "forbidden"
	case errors.Is(e, domain.ErrNotFound):
		return "not_found"
	case errors.Is(e, domain.ErrInvalidSignature), errors.Is(e, domain.ErrValidation):
		return "invalid"
	default:
		return "remote"
	}
}
