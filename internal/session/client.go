// Package session fetches generated session data (summary markdown plus
// flashcards) from the remote session API.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-mdcards/internal/h5p"
	"github.com/alnah/go-mdcards/internal/validation"
)

// Sentinel errors for session fetching.
var (
	ErrUnauthorized     = errors.New("session API rejected the credentials")
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnexpectedStatus = errors.New("unexpected session API status")
	ErrDecode           = errors.New("invalid session API response")
	ErrInvalidSession   = errors.New("session data failed validation")
	ErrEmptySessionID   = errors.New("session id is empty")
	ErrMissingBaseURL   = errors.New("session API base URL is not set")
	ErrInvalidBaseURL   = errors.New("session API base URL is invalid")
	ErrRetriesExhausted = errors.New("session API unavailable after retries")
)

// Defaults applied by NewClient.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond

	maxBackoff     = 8 * time.Second
	maxErrorBody   = 1024
	maxSessionBody = 4 << 20

	// RequestIDHeader carries a per-request id for server-side correlation.
	RequestIDHeader = "X-Request-Id"
)

var validate = validation.New()

// Session is the payload of GET /sessions/{id}.
type Session struct {
	ID         string     `json:"id" validate:"notblank"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Flashcards []h5p.Card `json:"flashcards" validate:"dive"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed attempt is retried. Zero disables
// retrying.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay of the exponential backoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// WithLogger sets the logger for request events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to the session API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// NewClient creates a client for baseURL authenticated with a bearer token.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch retrieves and validates one session. Transport errors and 5xx
// responses are retried; every other failure returns immediately.
func (c *Client) Fetch(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptySessionID
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.delay(attempt)); err != nil {
				return nil, err
			}
		}

		s, retry, err := c.fetchOnce(ctx, id)
		if err == nil {
			return s, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("session fetch failed",
			slog.String("session", id),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
	}
	return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, id string) (*Session, bool, error) {
	endpoint := c.baseURL + "/sessions/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, resp.StatusCode >= http.StatusInternalServerError, err
	}

	var s Session
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSessionBody)).Decode(&s); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := validate.Struct(s); err != nil {
		return nil, false, fmt.Errorf("%w: %s", ErrInvalidSession, validation.Describe(err))
	}
	return &s, false, nil
}

// delay returns base*2^(attempt-1) capped at maxBackoff, with up to 50%
// random jitter added.
func (c *Client) delay(attempt int) time.Duration {
	if c.backoff == 0 {
		return 0
	}
	d := c.backoff
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	d = min(d, maxBackoff)
	return d + rand.N(d/2+1)
}

func sleep(ctx context.Context, d time.Duration) error {
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
