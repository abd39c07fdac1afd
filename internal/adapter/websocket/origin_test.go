package websocket

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginPolicy_Allowed(t *testing.T) {
	policy := NewOriginPolicy([]string{"http://localhost:3000", "https://swamyhotfoods.com/"}, ".vercel.app")

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"listed localhost", "http://localhost:3000", true},
		{"listed with trailing slash in config", "https://swamyhotfoods.com", true},
		{"case insensitive", "HTTPS://SwamyHotFoods.com", true},
		{"suffix match", "https://shopfront-git-main.vercel.app", true},
		{"suffix requires https", "http://shopfront.vercel.app", false},
		{"suffix must be at the end", "https://vercel.app.evil.com", false},
		{"different port", "http://localhost:3001", false},
		{"unlisted", "https://evil.com", false},
		{"garbage", "not an origin", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Allowed(tt.origin))
		})
	}
}

func TestOriginPolicy_NoSuffixConfigured(t *testing.T) {
	policy := NewOriginPolicy([]string{"http://localhost:3000"}, "")
	assert.False(t, policy.Allowed("https://anything.vercel.app"))
}

func TestOriginPolicy_CheckOrigin(t *testing.T) {
	policy := NewOriginPolicy([]string{"http://localhost:3000"}, "")

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin header", "", true},
		{"allowed origin", "http://localhost:3000", true},
		{"rejected origin", "https://evil.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/ws/status", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, policy.CheckOrigin(r))
		})
	}
}

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"full URL with path", "https://example.com/menu", "https://example.com"},
		{"URL with port", "https://example.com:8443/path", "https://example.com:8443"},
		{"surrounding spaces", "  http://localhost:3000 ", "http://localhost:3000"},
		{"empty string", "", ""},
		{"no host", "mailto:user@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeOrigin(tt.raw))
		})
	}
}
