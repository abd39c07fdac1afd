package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/swamyhotfoods/shopfront/internal/broadcast"
	apperrors "github.com/swamyhotfoods/shopfront/internal/platform/errors"
)

const maxStatusBodyBytes = 4096

func (s *Server) registerStatusRoutes(g *echo.Group) {
	g.GET("/status", s.handleGetStatus)
	g.PUT("/status", s.handleUpdateStatus)
}

func (s *Server) handleGetStatus(c echo.Context) error {
	if err := c.JSON(http.StatusOK, s.status.Snapshot()); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// handleUpdateStatus applies a sparse update through the hub, so every connected
// storefront sees it exactly as if a websocket client had sent it.
func (s *Server) handleUpdateStatus(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxStatusBodyBytes+1))
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}
	if len(body) > maxStatusBodyBytes {
		return apperrors.ValidationError("status update too large")
	}

	update, err := broadcast.DecodeUpdate(body)
	if errors.Is(err, broadcast.ErrNoRecognizedFields) {
		return apperrors.ValidationError("status update has no recognized fields")
	}
	if err != nil {
		return apperrors.ValidationError("invalid status update").WithField("reason", err.Error())
	}

	snapshot, err := s.status.Publish(update)
	if errors.Is(err, broadcast.ErrStopped) {
		return apperrors.UnavailableError("status updates are not accepted while shutting down", err)
	}
	if err != nil {
		return apperrors.InternalError("failed to publish status update", err)
	}

	if err := c.JSON(http.StatusOK, snapshot); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
