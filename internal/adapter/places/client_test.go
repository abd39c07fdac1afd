package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swamyhotfoods/shopfront/internal/platform/retry"
)

const okBody = `{
  "status": "OK",
  "result": {
    "rating": 4.6,
    "user_ratings_total": 812,
    "reviews": [
      {"author_name": "Lakshmi", "rating": 5, "relative_time_description": "a week ago", "text": "Best ghee roast in town", "time": 1760000000, "profile_photo_url": "https://example.com/l.png"},
      {"author_name": "Arun", "rating": 4, "relative_time_description": "2 months ago", "text": "Crisp vadas", "time": 1755000000}
    ]
  }
}`

var fastRetry = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   time.Millisecond,
	RateLimitBackoff: 2 * time.Millisecond,
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithRetryPolicy(fastRetry)}, opts...)
	return NewClient(srv.URL+"/", "test-key", "place-123", opts...)
}

func TestFetchReviews_MapsResponse(t *testing.T) {
	fetchedAt := time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "place-123", r.URL.Query().Get("place_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "rating,user_ratings_total,reviews", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(okBody))
	}, WithClock(clockwork.NewFakeClockAt(fetchedAt)))

	summary, err := client.FetchReviews(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 4.6, summary.Rating, 0)
	assert.Equal(t, 812, summary.TotalReviews, "total comes from the upstream counter, not len(reviews)")
	require.Len(t, summary.Reviews, 2)
	assert.Equal(t, "Lakshmi", summary.Reviews[0].AuthorName)
	assert.Equal(t, "https://example.com/l.png", summary.Reviews[0].ProfilePhotoURL)
	assert.Equal(t, "a week ago", summary.Reviews[0].RelativeTimeDesc)
	assert.Equal(t, int64(1755000000), summary.Reviews[1].Time)
	assert.Equal(t, fetchedAt, summary.FetchedAt)
}

func TestFetchReviews_NoReviewsIsEmptySlice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","result":{"rating":0,"user_ratings_total":0}}`))
	})

	summary, err := client.FetchReviews(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summary.Reviews)
	assert.Empty(t, summary.Reviews)
}

func TestFetchReviews_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(okBody))
	})

	summary, err := client.FetchReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 812, summary.TotalReviews)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchReviews_PermanentErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
	})

	_, err := client.FetchReviews(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "REQUEST_DENIED", statusErr.PlacesStatus)
	assert.Contains(t, err.Error(), "API key is invalid")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchReviews_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchReviews(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(fastRetry.MaxAttempts), calls.Load())
}

func TestFetchReviews_CircuitOpensAndFailsFast(t *testing.T) {
	var calls atomic.Int32
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(2).
		WithDelay(time.Hour).
		Build()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithCircuitBreaker(cb), WithRetryPolicy(retry.Policy{MaxAttempts: 1}))

	for range 2 {
		_, err := client.FetchReviews(context.Background())
		require.Error(t, err)
	}
	require.True(t, cb.IsOpen())

	_, err := client.FetchReviews(context.Background())
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, int32(2), calls.Load(), "open circuit must not reach the upstream")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Action
	}{
		{"network", errors.New("connection reset"), retry.Retry},
		{"server error", &StatusError{HTTPStatus: 502}, retry.Retry},
		{"unknown places error", &StatusError{HTTPStatus: 200, PlacesStatus: "UNKNOWN_ERROR"}, retry.Retry},
		{"http rate limit", &StatusError{HTTPStatus: 429}, retry.After},
		{"places quota", &StatusError{HTTPStatus: 200, PlacesStatus: "OVER_QUERY_LIMIT"}, retry.After},
		{"bad request", &StatusError{HTTPStatus: 400}, retry.Stop},
		{"invalid request", &StatusError{HTTPStatus: 200, PlacesStatus: "INVALID_REQUEST"}, retry.Stop},
		{"circuit open", circuitbreaker.ErrOpen, retry.Stop},
		{"cancelled", context.Canceled, retry.Stop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
