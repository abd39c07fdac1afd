package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/swamyhotfoods/shopfront/internal/domain"
)

// ReviewsCache stores the last upstream reviews summary so restarts and sibling
// instances don't each hit the upstream API.
type ReviewsCache struct {
	rdb goredis.Cmdable
	key string
}

var _ domain.ReviewsCache = (*ReviewsCache)(nil)

func NewReviewsCache(rdb goredis.Cmdable, placeID string) *ReviewsCache {
	return &ReviewsCache{rdb: rdb, key: reviewsCacheKey(placeID)}
}

func (c *ReviewsCache) Get(ctx context.Context) (*domain.ReviewSummary, bool, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reviews cache GET failed: %w", err)
	}

	var summary domain.ReviewSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached reviews: %w", err)
	}
	return &summary, true, nil
}

func (c *ReviewsCache) Set(ctx context.Context, summary *domain.ReviewSummary, ttl time.Duration) error {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, encoded, ttl).Err(); err != nil {
		return fmt.Errorf("reviews cache SET failed: %w", err)
	}
	return nil
}

func reviewsCacheKey(placeID string) string {
	return "reviews_cache:" + placeID
}
