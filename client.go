// Package twocaptcha is a client for 2captcha-compatible captcha solving
// services. A task is submitted to in.php, polled on res.php until the
// remote workers finish it, and decoded into a typed solution.
package twocaptcha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://2captcha.com"
	DefaultSoftID       = "4143"
	DefaultPollInterval = 5 * time.Second
	DefaultInitialDelay = 10 * time.Second
	DefaultTimeout      = 180 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second
)

// Config holds everything the client needs. Zero values are replaced by
// the Default* constants in New.
type Config struct {
	APIKey  string
	BaseURL string
	// SoftID identifies this integration to the service.
	SoftID string
	// CallbackURL, when set, is sent as pingback on every submission.
	CallbackURL string

	PollInterval time.Duration
	// DefaultInitialDelay is used for tasks that do not recommend one.
	DefaultInitialDelay time.Duration
	// Timeout bounds a whole Solve call, submission included.
	Timeout time.Duration
	// MaxAttempts caps the number of polls. Zero derives it from
	// Timeout and PollInterval.
	MaxAttempts int
	HTTPTimeout time.Duration

	// Browser selects a TLS fingerprint profile ("chrome", "firefox").
	// Empty uses the standard library TLS stack.
	Browser string
	// RequestsPerSecond throttles outgoing requests of this client.
	// Zero disables throttling.
	RequestsPerSecond float64
	Burst             int

	// Transport overrides the round tripper built from Browser.
	Transport http.RoundTripper
	Logger    *slog.Logger
	// Sleep suspends a flow before each poll. Nil waits on a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.SoftID == "" {
		c.SoftID = DefaultSoftID
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.DefaultInitialDelay <= 0 {
		c.DefaultInitialDelay = DefaultInitialDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		c.Burst = 1
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &Error{Kind: ErrInvalidInput, Op: "config", Message: "api key is required"}
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &Error{Kind: ErrInvalidInput, Op: "config", Message: fmt.Sprintf("base url %q is not absolute", c.BaseURL)}
	}
	return nil
}

// Client talks to the service. It is safe for concurrent use; each Solve
// call runs its own independent flow.
type Client struct {
	cfg     Config
	http    *resty.Client
	limiter *rate.Limiter
	log     *slog.Logger

	wait func(ctx context.Context, d time.Duration) error
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tr := cfg.Transport
	if tr == nil {
		var err error
		tr, err = newTransport(cfg.Browser)
		if err != nil {
			return nil, fmt.Errorf("create transport: %w", err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.HTTPTimeout).
		SetTransport(tr).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	for _, h := range apiHeaders(cfg.Browser) {
		rc.SetHeader(h[0], h[1])
	}

	c := &Client{
		cfg:  cfg,
		http: rc,
		log:  logger,
		wait: cfg.Sleep,
	}
	if c.wait == nil {
		c.wait = sleepContext
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return c, nil
}

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() Config {
	return c.cfg
}

// do sends one request and decodes the envelope. POST sends params as a
// form body, GET as the query string.
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values) (*envelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(op, err)
		}
	}

	req := c.http.R().SetContext(ctx)
	var (
		resp *resty.Response
		err  error
	)
	switch method {
	case http.MethodPost:
		resp, err = req.SetFormDataFromValues(params).Post(path)
	default:
		resp, err = req.SetQueryParamsFromValues(params).Get(path)
	}
	if err != nil {
		return nil, transportError(op, err)
	}
	if resp.IsError() {
		return nil, transportError(op, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode()))
	}

	c.log.Debug("response", "op", op, "status", resp.StatusCode(), "bytes", len(resp.Body()))
	return decodeEnvelope(op, resp.Body())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
