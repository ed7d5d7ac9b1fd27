package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
	// Limiter throttles outbound calls; nil disables throttling.
	Limiter *rate.Limiter
}

// DefaultBackoff is used by the gateways unless overridden.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// statusError carries a non-2xx response through the circuit breaker.
type statusError struct {
	code int
	err  error
	body string
}

func (e *statusError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("%v: %s", e.err, e.body)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error { return e.err }

func (e *statusError) retryable() bool {
	return errors.Is(e.err, errRateLimited) || errors.Is(e.err, errServerError)
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// A 4xx other than 429 is the caller's fault (unknown city, bad key)
		// and says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return !se.retryable()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// doRequestWithResilience executes the HTTP request with rate limiting,
// retries, exponential backoff and a circuit breaker. Transport errors, 429
// and 5xx are retried; other non-2xx statuses fail immediately. Failures are
// returned as *weather.UpstreamError, context cancellation included (it
// unwraps to ctx.Err()).
func doRequestWithResilience(
	ctx context.Context,
	provider string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	fail := func(err error) error {
		return &weather.UpstreamError{Provider: provider, Err: err}
	}

	if cfg.Client == nil {
		return nil, fail(errNoHTTPClient)
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, fail(errInvalidConfig)
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, fail(ctx.Err())
		}

		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil, fail(ctx.Err())
				}
				return nil, fail(fmt.Errorf("rate limit wait: %w", err))
			}
		}

		req, err := buildRequest()
		if err != nil {
			return nil, fail(fmt.Errorf("build request: %w", err))
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			se := &statusError{code: resp.StatusCode, body: upstreamMessage(body)}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				se.err = errRateLimited
			case resp.StatusCode >= 500:
				se.err = errServerError
			default:
				se.err = fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return nil, se
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, &weather.UpstreamError{Provider: provider, Err: fmt.Errorf("unexpected result type from circuit breaker")}
			}
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, fail(ctx.Err())
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.UpstreamError{Provider: provider, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, &weather.UpstreamError{Provider: provider, StatusCode: se.code, Err: se}
		}

		if attempt >= cfg.Backoff.MaxRetries {
			ue := &weather.UpstreamError{Provider: provider, Err: err}
			if se != nil {
				ue.StatusCode = se.code
			}
			return nil, ue
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fail(ctx.Err())
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

// upstreamMessage pulls the human-readable message out of an error body.
// Both supported providers use {"message": ...} or {"error": {"message": ...}}.
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error.Message
}

// decodeJSON decodes body into v, reporting failures as malformed responses.
func decodeJSON(provider string, body io.Reader, v any) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &weather.MalformedResponseError{Provider: provider, Err: err}
	}
	return nil
}

func missing(provider, field string) error {
	return &weather.MalformedResponseError{Provider: provider, Field: field}
}

// cancelled reports whether err stems from the caller's context ending.
func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// NewLimiter builds an upstream limiter; rps <= 0 disables throttling.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
