package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/observability"
)

const userAgent = "weather-lookup/1.0"

// Options configures an Open-Meteo client.
type Options struct {
	BaseURL string

	// Timeout bounds a single request. Zero leaves the transport default (none).
	Timeout time.Duration

	// BreakerFailures opens a circuit after that many consecutive failures.
	// Zero disables the breaker so every call reaches the network.
	BreakerFailures uint32

	Metrics *observability.Metrics
}

var (
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// upstream is the HTTP plumbing shared by the geocoding and forecast clients.
// It never retries.
type upstream struct {
	api     string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
	metrics *observability.Metrics
}

func newUpstream(api string, opts Options) *upstream {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	u := &upstream{
		api:     api,
		client:  client,
		metrics: opts.Metrics,
	}

	if opts.BreakerFailures > 0 {
		threshold := opts.BreakerFailures
		u.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        api,
			MaxRequests: 1,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
		})
	}
	return u
}

// get issues one GET and returns the body of a 2xx response.
func (u *upstream) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	start := time.Now()
	target := path + "?" + encodeQuery(params)

	call := func() (interface{}, error) {
		resp, err := u.client.R().
			SetContext(ctx).
			Get(target)
		if err != nil {
			return nil, err
		}
		if code := resp.StatusCode(); code < 200 || code >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, code)
		}
		return resp.Body(), nil
	}

	var (
		result interface{}
		err    error
	)
	if u.circuit != nil {
		result, err = u.circuit.Execute(call)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
	} else {
		result, err = call()
	}

	u.observe(start, err)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", u.api, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%s request: unexpected result type %T", u.api, result)
	}
	return body, nil
}

// encodeQuery percent-encodes spaces as %20 rather than +. Literal plus
// signs are already %2B after Encode, so every remaining + is a space.
func encodeQuery(params url.Values) string {
	return strings.ReplaceAll(params.Encode(), "+", "%20")
}

func (u *upstream) observe(start time.Time, err error) {
	if u.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	u.metrics.UpstreamRequests.WithLabelValues(u.api, outcome).Inc()
	u.metrics.UpstreamDuration.WithLabelValues(u.api).Observe(time.Since(start).Seconds())
}
