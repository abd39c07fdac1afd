// Package places fetches the shop's rating and latest reviews from the Google Places Details API.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	"github.com/swamyhotfoods/shopfront/internal/platform/retry"
)

const (
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
	detailsFields  = "rating,user_ratings_total,reviews"
)

var defaultRetryPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   500 * time.Millisecond,
	RateLimitBackoff: 5 * time.Second,
	MaxBackoff:       5 * time.Second,
}

// StatusError is a non-2xx HTTP response or a non-OK Places status.
type StatusError struct {
	HTTPStatus   int
	PlacesStatus string
	Message      string
}

func (e *StatusError) Error() string {
	if e.PlacesStatus != "" {
		return fmt.Sprintf("places api status %s: %s", e.PlacesStatus, e.Message)
	}
	return fmt.Sprintf("places api http %d", e.HTTPStatus)
}

// Client implements domain.ReviewsSource.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	placeID     string
	clock       clockwork.Clock
	retryPolicy retry.Policy
	cb          circuitbreaker.CircuitBreaker[any]
}

var _ domain.ReviewsSource = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.retryPolicy = p }
}

// WithCircuitBreaker replaces the default breaker (opens when 3 of the last 5
// calls failed, probes again after 30s).
func WithCircuitBreaker(cb circuitbreaker.CircuitBreaker[any]) Option {
	return func(c *Client) { c.cb = cb }
}

func NewClient(baseURL, apiKey, placeID string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		placeID:     placeID,
		clock:       clockwork.NewRealClock(),
		retryPolicy: defaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cb == nil {
		c.cb = newCircuitBreaker()
	}
	if c.retryPolicy.Clock == nil {
		c.retryPolicy.Clock = c.clock
	}
	return c
}

func newCircuitBreaker() circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureThresholdRatio(3, 5).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "places",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
		}).
		Build()
}

// FetchReviews returns the place's average rating, total rating count and the reviews the API exposes.
func (c *Client) FetchReviews(ctx context.Context) (*domain.ReviewSummary, error) {
	details, err := retry.Do(ctx, c.retryPolicy, classify, c.fetchOnce)
	if err != nil {
		return nil, fmt.Errorf("fetch place details: %w", err)
	}

	summary := &domain.ReviewSummary{
		Reviews:      details.Reviews,
		Rating:       details.Rating,
		TotalReviews: details.UserRatingsTotal,
		FetchedAt:    c.clock.Now().UTC(),
	}
	if summary.Reviews == nil {
		summary.Reviews = []domain.Review{}
	}
	return summary, nil
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
	Result       placeDetails `json:"result"`
}

type placeDetails struct {
	Rating           float64         `json:"rating"`
	UserRatingsTotal int             `json:"user_ratings_total"`
	Reviews          []domain.Review `json:"reviews"`
}

func (c *Client) fetchOnce(ctx context.Context) (placeDetails, error) {
	if !c.cb.TryAcquirePermit() {
		return placeDetails{}, fmt.Errorf("places circuit breaker: %w", circuitbreaker.ErrOpen)
	}

	details, err := c.doRequest(ctx)
	if err != nil {
		if classify(err) == retry.Stop {
			// Rejected or cancelled requests say nothing about upstream health.
			c.cb.RecordSuccess()
		} else {
			c.cb.RecordError(err)
		}
		return placeDetails{}, err
	}
	c.cb.RecordSuccess()
	return details, nil
}

func (c *Client) doRequest(ctx context.Context) (placeDetails, error) {
	query := url.Values{}
	query.Set("place_id", c.placeID)
	query.Set("fields", detailsFields)
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/details/json?"+query.Encode(), nil)
	if err != nil {
		return placeDetails{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return placeDetails{}, fmt.Errorf("places request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return placeDetails{}, &StatusError{HTTPStatus: resp.StatusCode}
	}

	var body detailsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return placeDetails{}, fmt.Errorf("decode places response: %w", err)
	}

	if body.Status != "OK" {
		return placeDetails{}, &StatusError{HTTPStatus: resp.StatusCode, PlacesStatus: body.Status, Message: body.ErrorMessage}
	}
	return body.Result, nil
}

func classify(err error) retry.Action {
	if errors.Is(err, circuitbreaker.ErrOpen) || errors.Is(err, context.Canceled) {
		return retry.Stop
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		// Network errors and undecodable bodies are worth another try.
		return retry.Retry
	}

	switch {
	case statusErr.PlacesStatus == "OVER_QUERY_LIMIT" || statusErr.HTTPStatus == http.StatusTooManyRequests:
		return retry.After
	case statusErr.PlacesStatus == "UNKNOWN_ERROR" || statusErr.HTTPStatus >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}
