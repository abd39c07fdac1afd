// Package reviews serves the shop's reviews summary from a short-lived cache so the
// storefront never drives traffic to the upstream API directly.
package reviews

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/swamyhotfoods/shopfront/internal/adapter/metrics"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	layerMemory = "memory"
	layerShared = "redis"
	flightKey   = "reviews"
)

// Service is a read-through cache in front of a ReviewsSource.
// Freshness is measured from the summary's FetchedAt, so an entry loaded from
// the shared layer expires at the same moment on every instance.
type Service struct {
	source  domain.ReviewsSource
	shared  domain.ReviewsCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *metrics.CacheMetrics
	group   singleflight.Group

	mu     sync.RWMutex
	cached *domain.ReviewSummary
}

// NewService builds the cache. source nil means reviews are not configured;
// shared and m may be nil.
func NewService(source domain.ReviewsSource, shared domain.ReviewsCache, ttl time.Duration, clock clockwork.Clock, m *metrics.CacheMetrics) *Service {
	return &Service{
		source:  source,
		shared:  shared,
		ttl:     ttl,
		clock:   clock,
		metrics: m,
	}
}

// Get returns a summary no older than the TTL. Concurrent misses share one upstream call.
func (s *Service) Get(ctx context.Context) (*domain.ReviewSummary, error) {
	if summary, ok := s.fromMemory(); ok {
		s.recordHit(layerMemory)
		return summary, nil
	}
	s.recordMiss(layerMemory)

	// The load outlives any single caller so a cancelled request doesn't fail the others.
	ch := s.group.DoChan(flightKey, func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ReviewSummary), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for reviews: %w", ctx.Err())
	}
}

func (s *Service) load(ctx context.Context) (*domain.ReviewSummary, error) {
	// Another flight may have filled the cache while we queued.
	if summary, ok := s.fromMemory(); ok {
		return summary, nil
	}

	if summary, ok := s.fromShared(ctx); ok {
		s.recordHit(layerShared)
		s.store(summary)
		return summary, nil
	}

	if s.source == nil {
		return nil, domain.ErrReviewsUnavailable
	}

	summary, err := s.source.FetchReviews(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.UpstreamErrors.Inc()
		}
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}

	s.store(summary)
	if s.shared != nil {
		if err := s.shared.Set(ctx, summary, s.ttl); err != nil {
			slog.Warn("Failed to populate shared reviews cache", "error", err)
		}
	}

	slog.Debug("Reviews refreshed from upstream", "total_reviews", summary.TotalReviews, "returned", len(summary.Reviews))
	return summary, nil
}

func (s *Service) fromMemory() (*domain.ReviewSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached == nil || !s.fresh(s.cached) {
		return nil, false
	}
	return s.cached, true
}

func (s *Service) fromShared(ctx context.Context) (*domain.ReviewSummary, bool) {
	if s.shared == nil {
		return nil, false
	}

	summary, ok, err := s.shared.Get(ctx)
	if err != nil {
		slog.Warn("Shared reviews cache read failed", "error", err)
	}
	if err != nil || !ok || !s.fresh(summary) {
		s.recordMiss(layerShared)
		return nil, false
	}
	return summary, true
}

func (s *Service) fresh(summary *domain.ReviewSummary) bool {
	return s.clock.Since(summary.FetchedAt) < s.ttl
}

func (s *Service) store(summary *domain.ReviewSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = summary
}

func (s *Service) recordHit(layer string) {
	if s.metrics != nil {
		s.metrics.Hits.WithLabelValues(layer).Inc()
	}
}

func (s *Service) recordMiss(layer string) {
	if s.metrics != nil {
		s.metrics.Misses.WithLabelValues(layer).Inc()
	}
}
