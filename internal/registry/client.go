// Package registry looks providers up in an NPI registry and serves a mock of one.
package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/provider-verify/internal/model"
	"github.com/sells-group/provider-verify/internal/resilience"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each lookup attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing lookups to rps per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client queries GET {baseURL}/lookup/{id}. It makes a single attempt per call
// and never returns a Go error: every failure is folded into the LookupResult.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a registry client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Lookup fetches the registry record for id.
func (c *Client) Lookup(ctx context.Context, id string) model.LookupResult {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.NotFound("registry: empty identifier")
	}

	res := c.lookup(ctx, id)
	zap.L().Debug("registry: lookup",
		zap.String("npi", id),
		zap.String("status", string(res.Status)),
		zap.String("reason", res.Reason),
	)
	return res
}

func (c *Client) lookup(ctx context.Context, id string) model.LookupResult {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return model.TransientError("", resilience.NewTransientError(eris.Wrap(err, "registry: rate limiter wait"), 0))
		}
	}

	endpoint := c.baseURL + "/lookup/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.TransientError("", eris.Wrap(err, "registry: create request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.TransientError("", resilience.NewTransientError(eris.Wrap(err, "registry: send request"), 0))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return model.TransientError("", resilience.NewTransientError(eris.Wrap(err, "registry: read response"), resp.StatusCode))
	}

	var parsed lookupResponse
	parseErr := json.Unmarshal(body, &parsed)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		reason := "registry: identifier not found"
		if parseErr == nil && parsed.Message != "" {
			reason = parsed.Message
		}
		return model.NotFound(reason)

	case resp.StatusCode != http.StatusOK:
		err := eris.Errorf("registry: unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return model.TransientError("", resilience.NewTransientError(err, resp.StatusCode))
		}
		return model.TransientError("", err)

	case parseErr != nil:
		return model.TransientError("", eris.Wrap(parseErr, "registry: unmarshal response"))

	case parsed.Status != statusSuccess || parsed.Data == nil:
		msg := parsed.Message
		if msg == "" {
			msg = "missing data"
		}
		return model.TransientError("", eris.Errorf("registry: status %q: %s", parsed.Status, msg))
	}

	return model.Success(parsed.Data.toModel(id))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
