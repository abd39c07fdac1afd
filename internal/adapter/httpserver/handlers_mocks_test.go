package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/swamyhotfoods/shopfront/internal/adapter/websocket"
	"github.com/swamyhotfoods/shopfront/internal/domain"
	"github.com/swamyhotfoods/shopfront/internal/platform/config"
)

// --- Mock implementations ---

type mockMenuService struct {
	listFn   func(ctx context.Context) ([]domain.MenuItem, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	createFn func(ctx context.Context, input domain.MenuItemPatch) (*domain.MenuItem, error)
	updateFn func(ctx context.Context, id uuid.UUID, patch domain.MenuItemPatch) (*domain.MenuItem, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockMenuService) List(ctx context.Context) ([]domain.MenuItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []domain.MenuItem{}, nil
}

func (m *mockMenuService) Get(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMenuService) Create(ctx context.Context, input domain.MenuItemPatch) (*domain.MenuItem, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMenuService) Update(ctx context.Context, id uuid.UUID, patch domain.MenuItemPatch) (*domain.MenuItem, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (m *mockMenuService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockStatusHub struct {
	state     domain.StatusState
	publishFn func(update domain.StatusUpdate) (domain.StatusState, error)
	published []domain.StatusUpdate
}

func (m *mockStatusHub) Snapshot() domain.StatusState {
	return m.state
}

func (m *mockStatusHub) Publish(update domain.StatusUpdate) (domain.StatusState, error) {
	m.published = append(m.published, update)
	if m.publishFn != nil {
		return m.publishFn(update)
	}
	update.ApplyTo(&m.state)
	return m.state, nil
}

type mockReviews struct {
	getFn func(ctx context.Context) (*domain.ReviewSummary, error)
}

func (m *mockReviews) Get(ctx context.Context) (*domain.ReviewSummary, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return nil, domain.ErrReviewsUnavailable
}

// --- Test helpers ---

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:               "0",
		CORSAllowedOrigins: "http://localhost:3000",
		CORSAllowedSuffix:  ".vercel.app",
		UploadDir:          t.TempDir(),
		UploadMaxBytes:     1024,
		APIRateLimit:       1000,
		APIRateBurst:       1000,
	}
}

func newTestServer(t *testing.T, opts ...func(*config.Config, *Dependencies)) *Server {
	t.Helper()

	cfg := testConfig(t)
	deps := Dependencies{
		Menu:    &mockMenuService{},
		Status:  &mockStatusHub{},
		Reviews: &mockReviews{},
	}
	for _, opt := range opts {
		opt(cfg, &deps)
	}
	if deps.Origins == nil {
		deps.Origins = websocket.NewOriginPolicy(cfg.AllowedOrigins(), cfg.CORSAllowedSuffix)
	}

	srv, err := NewServer(cfg, deps)
	require.NoError(t, err)
	return srv
}

func withMenu(m menuService) func(*config.Config, *Dependencies) {
	return func(_ *config.Config, d *Dependencies) { d.Menu = m }
}

func withStatus(h statusHub) func(*config.Config, *Dependencies) {
	return func(_ *config.Config, d *Dependencies) { d.Status = h }
}

func withReviews(r reviewsService) func(*config.Config, *Dependencies) {
	return func(_ *config.Config, d *Dependencies) { d.Reviews = r }
}

func withHealthChecks(checks ...HealthCheck) func(*config.Config, *Dependencies) {
	return func(_ *config.Config, d *Dependencies) { d.HealthChecks = checks }
}

// serve runs the request through the full middleware stack.
func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
