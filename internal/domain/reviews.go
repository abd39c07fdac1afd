package domain

import (
	"context"
	"time"
)

type Review struct {
	AuthorName       string `json:"author_name"`
	ProfilePhotoURL  string `json:"profile_photo_url,omitempty"`
	Rating           int    `json:"rating"`
	RelativeTimeDesc string `json:"relative_time_description"`
	Text             string `json:"text"`
	Time             int64  `json:"time"`
}

// ReviewSummary is what the storefront renders. TotalReviews is the upstream's
// own counter; Reviews holds only the handful the upstream returns.
type ReviewSummary struct {
	Reviews      []Review  `json:"reviews"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"totalReviews"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// ReviewsSource fetches a fresh summary from the upstream reviews API.
type ReviewsSource interface {
	FetchReviews(ctx context.Context) (*ReviewSummary, error)
}

// ReviewsCache is an optional shared cache layer between the in-memory cache and the upstream.
type ReviewsCache interface {
	Get(ctx context.Context) (*ReviewSummary, bool, error)
	Set(ctx context.Context, summary *ReviewSummary, ttl time.Duration) error
}
