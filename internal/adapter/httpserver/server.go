package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/swamyhotfoods/shopfront/internal/adapter/metrics"
	"github.com/swamyhotfoods/shopfront/internal/adapter/websocket"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	"github.com/swamyhotfoods/shopfront/internal/platform/config"
)

type menuService interface {
	List(ctx context.Context) ([]domain.MenuItem, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	Create(ctx context.Context, input domain.MenuItemPatch) (*domain.MenuItem, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.MenuItemPatch) (*domain.MenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type statusHub interface {
	Snapshot() domain.StatusState
	Publish(update domain.StatusUpdate) (domain.StatusState, error)
}

type reviewsService interface {
	Get(ctx context.Context) (*domain.ReviewSummary, error)
}

// Dependencies groups the collaborators the HTTP surface delegates to.
// MetricsHandler and HTTPMetrics may be nil.
type Dependencies struct {
	Menu             menuService
	Status           statusHub
	Reviews          reviewsService
	Origins          *websocket.OriginPolicy
	WebsocketHandler http.Handler
	MetricsHandler   http.Handler
	HTTPMetrics      *metrics.HTTPMetrics
	HealthChecks     []HealthCheck
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	menu    menuService
	status  statusHub
	reviews reviewsService
	origins *websocket.OriginPolicy

	websocketHandler http.Handler
	metricsHandler   http.Handler
	httpMetrics      *metrics.HTTPMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:             e,
		config:           cfg,
		menu:             deps.Menu,
		status:           deps.Status,
		reviews:          deps.Reviews,
		origins:          deps.Origins,
		websocketHandler: deps.WebsocketHandler,
		metricsHandler:   deps.MetricsHandler,
		httpMetrics:      deps.HTTPMetrics,
		healthChecks:     deps.HealthChecks,
		startTime:        time.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
