package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gustimaulan/fb-marketing-dash/internal/metrics"
	"go.uber.org/zap"
)

// Kind classifies a transport failure for the caller.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindHTTPStatus Kind = "http_status"
	KindNetwork    Kind = "network"
)

// Error is a typed transport error raised by fetchers. Shape problems
// in the response body are not errors; they degrade to empty data.
type Error struct {
	Kind   Kind
	Source string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%s fetch failed: HTTP status %d", e.Source, e.Status)
	case KindTimeout:
		return fmt.Sprintf("%s fetch failed: request timeout", e.Source)
	default:
		return fmt.Sprintf("%s fetch failed: network error: %v", e.Source, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the error kind, or empty for non-fetch errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// maxBodySize caps response reads; the largest observed payload is a
// few MB of daily ad rows.
const maxBodySize = 32 << 20

// Client issues the upstream webhook GETs. Requests carry no custom
// headers so the browser-era CORS contract (no preflight) stays intact
// on the worker proxy.
type Client struct {
	httpc   *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewClient creates a fetch client with the given total-request timeout.
func NewClient(timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// getJSON performs a bare GET and returns the raw body. Failures are
// classified into the Kind taxonomy.
func (c *Client) getJSON(ctx context.Context, source, rawURL string) ([]byte, error) {
	if c.metrics != nil {
		c.metrics.FetchRequests.WithLabelValues(source).Inc()
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, c.fail(source, &Error{Kind: KindNetwork, Source: source, Err: err})
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		kind := KindNetwork
		var ue *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
			kind = KindTimeout
		}
		return nil, c.fail(source, &Error{Kind: kind, Source: source, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, c.fail(source, &Error{Kind: KindHTTPStatus, Source: source, Status: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.fail(source, &Error{Kind: KindNetwork, Source: source, Err: err})
	}

	if c.metrics != nil {
		c.metrics.FetchLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
	c.logger.Debug("fetched upstream data",
		zap.String("source", source),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)
	return body, nil
}

func (c *Client) fail(source string, ferr *Error) error {
	if c.metrics != nil {
		c.metrics.FetchFailures.WithLabelValues(source, string(ferr.Kind)).Inc()
	}
	c.logger.Warn("upstream fetch failed",
		zap.String("source", source),
		zap.String("kind", string(ferr.Kind)),
		zap.Error(ferr),
	)
	return ferr
}

// rangedURL appends the date-from / date-to query parameters.
func rangedURL(base, dateFrom, dateTo string) string {
	q := url.Values{}
	q.Set("date-from", dateFrom)
	q.Set("date-to", dateTo)
	return base + "?" + q.Encode()
}
