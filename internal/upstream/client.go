// Package upstream implements the HTTP client for the Vianexus dataset API.
// All reads are GETs, so the bounded retry policy is safe to apply to every
// request. The provider token rides a query parameter and must never reach
// logs or error messages; transport errors are sanitized before wrapping.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/vianexus/terminal-connector/pkg/errors"
	"github.com/vianexus/terminal-connector/pkg/metrics"
)

// maxRetryBudget caps retries regardless of configuration.
const maxRetryBudget = 2

// rejectionDetailLimit bounds how much of a 4xx body is surfaced.
const rejectionDetailLimit = 512

// Request identifies one dataset read.
type Request struct {
	Namespace string
	Dataset   string
	Symbols   []string
	Query     url.Values
}

// Record is one row of the provider's response array.
type Record = map[string]any

// Fetcher is the dispatcher's view of the provider.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]Record, error)
}

// Options configures the client. Zero values fall back to the documented
// defaults (10s timeout, 2 retries).
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the provider with explicit timeouts and a bounded
// exponential-backoff retry policy.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	retries int
	logger  *zap.Logger

	mu        sync.RWMutex
	healthy   bool
	lastError error
}

var _ Fetcher = (*Client)(nil)

// NewClient validates the options and builds a client.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("provider base URL %q needs scheme and host", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	if retries > maxRetryBudget {
		retries = maxRetryBudget
	}
	return &Client{
		baseURL: base,
		token:   opts.Token,
		http:    &http.Client{Timeout: timeout},
		retries: retries,
		logger:  logger,
		healthy: true,
	}, nil
}

// Healthy reports whether the most recent provider call succeeded.
func (c *Client) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// Fetch runs one dataset read, retrying transient failures within the
// budget. Returned errors always carry a taxonomy kind.
func (c *Client) Fetch(ctx context.Context, req Request) ([]Record, error) {
	if len(req.Symbols) == 0 {
		return nil, errors.Internal(fmt.Errorf("dataset %s/%s: empty symbol list", req.Namespace, req.Dataset))
	}
	endpoint := c.endpointFor(req)

	var records []Record
	attempt := 0
	operation := func() error {
		if attempt > 0 {
			metrics.ProviderRetries.Inc()
		}
		attempt++
		rows, err := c.fetchOnce(ctx, req, endpoint)
		if err != nil {
			c.logger.Warn("provider call failed",
				zap.String("namespace", req.Namespace),
				zap.String("dataset", req.Dataset),
				zap.Int("symbols", len(req.Symbols)),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		records = rows
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(c.retries)), ctx))
	err = classify(err)

	c.setHealth(err)
	metrics.ProviderRequests.WithLabelValues(req.Dataset, outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return records, nil
}

// fetchOnce performs a single HTTP attempt and classifies its outcome.
// Retryable outcomes return plain taxonomy errors; terminal ones are marked
// permanent so the backoff loop stops.
func (c *Client) fetchOnce(ctx context.Context, req Request, endpoint *url.URL) ([]Record, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, backoff.Permanent(errors.Internal(err))
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "vianexus-terminal-connector/1.0")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	metrics.ProviderLatency.WithLabelValues(req.Dataset).Observe(time.Since(start).Seconds())
	if err != nil {
		if isTimeout(err) {
			return nil, errors.UpstreamTimeout(sanitize(err))
		}
		return nil, errors.UpstreamUnavailable(sanitize(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		io.Copy(io.Discard, io.LimitReader(resp.Body, rejectionDetailLimit))
		return nil, errors.UpstreamUnavailable(fmt.Errorf("provider returned status %d", resp.StatusCode))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, backoff.Permanent(errors.UpstreamRejected(rejectionDetail(resp)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, errors.UpstreamUnavailable(fmt.Errorf("decode provider response: %w", err))
	}
	return records, nil
}

// endpointFor renders {base}/data/{NAMESPACE}/{DATASET}/{SYM1,SYM2} with the
// token attached as a query parameter.
func (c *Client) endpointFor(req Request) *url.URL {
	escaped := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		escaped = append(escaped, url.PathEscape(s))
	}
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") +
		"/data/" + url.PathEscape(req.Namespace) +
		"/" + url.PathEscape(req.Dataset) +
		"/" + strings.Join(escaped, ",")

	q := url.Values{}
	for key, vals := range req.Query {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	q.Set("token", c.token)
	endpoint.RawQuery = q.Encode()
	return &endpoint
}

func (c *Client) setHealth(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = err == nil
	c.lastError = err
}

// classify guarantees a taxonomy kind on every non-nil result. The backoff
// loop can surface a bare context error when the inbound request is
// cancelled mid-wait.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.UpstreamTimeout(err)
	}
	if errors.Is(err, context.Canceled) {
		return errors.UpstreamUnavailable(err)
	}
	return errors.Internal(err)
}

// sanitize strips URLs from transport errors. A *url.Error prints the full
// request URL, token included, so only its inner error may propagate.
func sanitize(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// rejectionDetail extracts a short plain-text reason from a 4xx body.
func rejectionDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, rejectionDetailLimit))
	detail := strings.TrimSpace(string(body))
	if err != nil || detail == "" {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	var msg struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal(body, &msg); jsonErr == nil {
		if msg.Error != "" {
			detail = msg.Error
		} else if msg.Message != "" {
			detail = msg.Message
		}
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, detail)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch errors.KindOf(err) {
	case errors.KindUpstreamTimeout:
		return "timeout"
	case errors.KindUpstreamRejected:
		return "rejected"
	case errors.KindUpstreamUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
