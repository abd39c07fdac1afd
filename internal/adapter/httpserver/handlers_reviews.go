package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	apperrors "github.com/swamyhotfoods/shopfront/internal/platform/errors"
)

func (s *Server) registerReviewsRoutes(g *echo.Group) {
	g.GET("/reviews", s.handleGetReviews)
}

func (s *Server) handleGetReviews(c echo.Context) error {
	if s.reviews == nil {
		return apperrors.UnavailableError("reviews are not configured", domain.ErrReviewsUnavailable)
	}

	summary, err := s.reviews.Get(c.Request().Context())
	if errors.Is(err, domain.ErrReviewsUnavailable) {
		return apperrors.UnavailableError("reviews are not configured", err)
	}
	if err != nil {
		return apperrors.ExternalError("failed to fetch reviews", err)
	}

	if err := c.JSON(http.StatusOK, summary); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
