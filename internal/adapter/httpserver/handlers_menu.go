package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	apperrors "github.com/swamyhotfoods/shopfront/internal/platform/errors"
)

const msgMenuItemDeleted = "Menu item deleted successfully"

func (s *Server) registerMenuRoutes(g *echo.Group) {
	g.GET("/menu", s.handleListMenu)
	g.GET("/menu/:id", s.handleGetMenuItem)
	g.POST("/menu", s.handleCreateMenuItem)
	g.PUT("/menu/:id", s.handleUpdateMenuItem)
	g.DELETE("/menu/:id", s.handleDeleteMenuItem)
}

func (s *Server) handleListMenu(c echo.Context) error {
	items, err := s.menu.List(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, items); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetMenuItem(c echo.Context) error {
	id, err := parseMenuItemID(c)
	if err != nil {
		return err
	}

	item, err := s.menu.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, item); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateMenuItem(c echo.Context) error {
	var input domain.MenuItemPatch
	if err := (&echo.DefaultBinder{}).BindBody(c, &input); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	item, err := s.menu.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, item); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateMenuItem(c echo.Context) error {
	id, err := parseMenuItemID(c)
	if err != nil {
		return err
	}

	var patch domain.MenuItemPatch
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	item, err := s.menu.Update(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, item); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteMenuItem(c echo.Context) error {
	id, err := parseMenuItemID(c)
	if err != nil {
		return err
	}

	if err := s.menu.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"message": msgMenuItemDeleted}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func parseMenuItemID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid menu item id").WithField("id", raw)
	}
	return id, nil
}
