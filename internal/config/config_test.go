package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "helpdesk-gateway", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	assert.Equal(t, int64(10*1024*1024), cfg.Attachments.MaxSizeBytes)
	assert.Equal(t, 5, cfg.Attachments.MaxCount)

	assert.False(t, cfg.Features.RequireRequesterIdentity)
	assert.True(t, cfg.Features.ShapeProjectHierarchy)
	assert.False(t, cfg.Features.RestrictAttachmentsToImages)

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Cache.TTL())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REDMINE_BASE_URL", "https://redmine.internal/")
	t.Setenv("REDMINE_API_KEY", "abc123")
	t.Setenv("REDMINE_DEFAULT_PROJECT_ID", "9")
	t.Setenv("FEATURE_REQUIRE_REQUESTER_IDENTITY", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://redmine.internal", cfg.Upstream.BaseURL, "trailing slash trimmed")
	assert.True(t, cfg.Upstream.Secure())
	assert.Equal(t, "abc123", cfg.Upstream.APIKey)
	assert.Equal(t, 9, cfg.Upstream.DefaultProjectID)
	assert.True(t, cfg.Features.RequireRequesterIdentity)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL())
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestUpstreamSecure(t *testing.T) {
	assert.True(t, UpstreamConfig{BaseURL: "https://r.internal"}.Secure())
	assert.False(t, UpstreamConfig{BaseURL: "http://r.internal"}.Secure())
	assert.False(t, UpstreamConfig{}.Secure())
}

func TestRequestTimeoutDisabled(t *testing.T) {
	assert.Zero(t, AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
}
