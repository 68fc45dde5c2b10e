package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/domain"
	"github.com/spec-kit/helpdesk-gateway/internal/redmine"
)

// CatalogService proxies the upstream reference listings: projects, trackers
// and issue priorities. Trackers and priorities change rarely, so they are
// served from a short-TTL Redis cache when one is configured.
type CatalogService struct {
	upstream UpstreamCaller
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService constructs the service. cache may be nil.
func NewCatalogService(upstream UpstreamCaller, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		upstream: upstream,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ListProjects returns the raw upstream project listing. When
// includeDescendants is set the upstream is asked to inline subprojects.
func (s *CatalogService) ListProjects(ctx context.Context, includeDescendants bool) (json.RawMessage, error) {
	endpoint := redmine.EndpointProjects
	if includeDescendants {
		endpoint += "?include=descendants"
	}
	return s.upstream.Call(ctx, http.MethodGet, endpoint, nil, nil)
}

// ShapedProjects fetches the project list and partitions it into the
// main-project / subproject hierarchy. The hierarchy is derived per request,
// never cached.
func (s *CatalogService) ShapedProjects(ctx context.Context, includeDescendants bool) (*domain.ProjectHierarchy, error) {
	raw, err := s.ListProjects(ctx, includeDescendants)
	if err != nil {
		return nil, err
	}
	var list redmine.ProjectList
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Error("failed to decode upstream project list", zap.Error(err))
		return nil, err
	}
	hierarchy := ShapeProjects(list.Projects)
	return &hierarchy, nil
}

// ListTrackers returns the raw upstream tracker listing.
func (s *CatalogService) ListTrackers(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, "catalog:trackers", redmine.EndpointTrackers)
}

// ListPriorities returns the raw upstream issue priority listing.
func (s *CatalogService) ListPriorities(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, "catalog:priorities", redmine.EndpointPriorities)
}

// GetTicket fetches one issue by id, passing the upstream body through
// verbatim (including its 404 shape).
func (s *CatalogService) GetTicket(ctx context.Context, id int) (json.RawMessage, error) {
	return s.upstream.Call(ctx, http.MethodGet, fmt.Sprintf("/issues/%d.json", id), nil, nil)
}

// cached serves an endpoint from the Redis cache when possible, falling back
// to the upstream on any cache miss or cache error.
func (s *CatalogService) cached(ctx context.Context, key, endpoint string) (json.RawMessage, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		if err == nil && json.Valid(cached) {
			return json.RawMessage(cached), nil
		}
		if err != nil && err != redis.Nil {
			s.logger.Debug("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	raw, err := s.upstream.Call(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(raw), s.cacheTTL).Err(); err != nil {
			s.logger.Debug("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return raw, nil
}
