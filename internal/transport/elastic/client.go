package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/poisearch/internal/domain"
	"github.com/kailas-cloud/poisearch/internal/logger"
	"github.com/kailas-cloud/poisearch/internal/metrics"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 64 << 10

// Client posts search requests to an Elasticsearch-compatible backend.
// Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	pingIndex  string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Config holds the backend connection settings.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RateLimitRPS float64 // 0 = unlimited
	PingIndex    string  // checked by Ping; empty pings the cluster root
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// NewClient creates a backend client.
func NewClient(cfg *Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("backend api key is required")
	}

	c := &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		pingIndex:  cfg.PingIndex,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	return c, nil
}

// Search posts body to <index>/_search and decodes the response into out.
func (c *Client) Search(ctx context.Context, index string, body, out any) (err error) {
	start := time.Now()
	defer func() { c.record(index, start, err) }()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", index, err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/"+url.PathEscape(index)+"/_search", payload)
	if err != nil {
		return fmt.Errorf("search %s: %w", index, err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", index, domain.ErrDecode, err)
	}
	return nil
}

// Ping checks that the backend is reachable and accepts the API key.
// With a ping index it counts that index, which an index-scoped read key
// may do; the cluster root needs the monitor privilege.
func (c *Client) Ping(ctx context.Context) error {
	path := "/"
	if c.pingIndex != "" {
		path = "/" + url.PathEscape(c.pingIndex) + "/_count"
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(ctx, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(reqCtx); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("rate limiter: %w", classify(ctx, err))
			}
			// Otherwise the next token lies past the request deadline.
			return nil, fmt.Errorf("rate limiter: %w: %w", domain.ErrTimeout, err)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("X-Opaque-Id", opaqueID(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseBackendError(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", classify(ctx, err))
	}
	return body, nil
}

func (c *Client) record(index string, start time.Time, err error) {
	dur := time.Since(start)
	if err != nil {
		kind := domain.Kind(err)
		metrics.BackendRequestsTotal.WithLabelValues(index, "error").Inc()
		metrics.BackendErrorsTotal.WithLabelValues(index, kind).Inc()
		c.logger.Debug("backend request failed",
			zap.String("index", index),
			zap.String("kind", kind),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	metrics.BackendRequestsTotal.WithLabelValues(index, "success").Inc()
	metrics.BackendRequestDuration.WithLabelValues(index).Observe(dur.Seconds())
}

// opaqueID tags the outbound request so it can be traced in backend logs.
func opaqueID(ctx context.Context) string {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// classify maps a transport-level failure onto the domain error kinds.
// parent is the caller's context; its cancellation wins over everything else.
func classify(parent context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	if parent.Err() != nil {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}

// parseBackendError extracts the error type and reason from an Elasticsearch error body.
// The "error" field is an object on modern backends and a bare string on old ones.
func parseBackendError(status int, body []byte) error {
	be := &domain.BackendError{StatusCode: status}

	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil || len(parsed.Error) == 0 {
		if s := strings.TrimSpace(string(body)); s != "" {
			be.Reason = truncate(s, 200)
		}
		return be
	}

	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(parsed.Error, &detail) == nil {
		be.Type, be.Reason = detail.Type, detail.Reason
		return be
	}

	var msg string
	if json.Unmarshal(parsed.Error, &msg) == nil {
		be.Reason = msg
	}
	return be
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
