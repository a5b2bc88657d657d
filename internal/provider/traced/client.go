// Package traced provides an instrumented HTTP client for outbound calls
// to third-party APIs. Every request is wrapped in an OpenTelemetry client
// span and bounded by a timeout. Failures are never retried: a single
// upstream failure is surfaced to the caller so that outage checks cannot
// be confused by transient retry masking.
package traced

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/statuswatch/statuswatch/internal/provider/traced"

// DefaultTimeout bounds every outbound call, including connection setup
// and body read.
const DefaultTimeout = 30 * time.Second

// ErrTimeout is returned when an outbound call exceeds its deadline.
// It is distinct from other transport failures so callers can log it as such.
var ErrTimeout = errors.New("upstream request timed out")

// ClientConfig holds configuration for the traced HTTP client.
type ClientConfig struct {
	// Name identifies the downstream provider in spans and logs.
	Name string

	// Timeout is the per-request timeout. Default: DefaultTimeout.
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an HTTP client that traces and time-bounds outbound requests.
type Client struct {
	httpClient *http.Client
	tracer     trace.Tracer
	name       string
	logger     zerolog.Logger
}

// NewClient creates a new traced HTTP client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer(tracerName),
		name:       cfg.Name,
		logger:     cfg.Logger,
	}
}

// Do executes the request inside a client span. The request context is
// honored, so cancellation propagates to the transport.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx, span := c.tracer.Start(req.Context(),
		fmt.Sprintf("%s %s", req.Method, req.URL.Host),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("server.address", req.URL.Host),
			attribute.String("provider.name", c.name),
		),
	)
	defer span.End()

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		if isTimeout(err) {
			span.SetStatus(codes.Error, "timeout")
			c.logger.Warn().
				Str("provider", c.name).
				Str("url", req.URL.String()).
				Msg("upstream request timed out")
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}

	return resp, nil
}

// Name returns the provider name this client is bound to.
func (c *Client) Name() string {
	return c.name
}

// isTimeout reports whether err represents a deadline or transport timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
