package health

import (
	"context"
	"time"

	"dysonfactory/internal/core/domain"
	"dysonfactory/internal/core/port"
)

type HealthService struct {
	feed    port.LiveFeed
	cache   port.SnapshotCache
	recipes port.RecipeDatabase
}

func NewHealthService(feed port.LiveFeed, cache port.SnapshotCache, recipes port.RecipeDatabase) port.HealthService {
	return &HealthService{
		feed:    feed,
		cache:   cache,
		recipes: recipes,
	}
}

func (s *HealthService) GetSystemHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status := &domain.HealthStatus{
		Components: make(map[string]string),
		Timestamp:  time.Now().Unix(),
	}

	degraded := false

	// Check live feed. Disconnected is degraded, not unhealthy: analyses
	// fall back to the save archive.
	if s.feed != nil && s.feed.IsConnected() {
		status.Components["feed"] = "healthy"
	} else {
		status.Components["feed"] = "disconnected"
		degraded = true
	}

	// Check snapshot cache
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			status.Components["cache"] = "unhealthy"
			degraded = true
		} else {
			status.Components["cache"] = "healthy"
		}
	} else {
		status.Components["cache"] = "unavailable"
		degraded = true
	}

	// Check recipe database
	if s.recipes != nil {
		if err := s.recipes.Ping(ctx); err != nil {
			status.Components["recipe_db"] = "unhealthy"
			degraded = true
		} else {
			status.Components["recipe_db"] = "healthy"
		}
	} else {
		status.Components["recipe_db"] = "unavailable"
		degraded = true
	}

	if degraded {
		status.Status = "degraded"
		status.Message = "Some components are not fully operational"
	} else {
		status.Status = "healthy"
		status.Message = "All systems operational"
	}

	return status, nil
}

func (s *HealthService) GetDetailedHealth(ctx context.Context) (*domain.HealthStatus, error) {
	status, err := s.GetSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		if state := s.feed.Latest(); state != nil {
			status.Components["last_frame"] = state.Timestamp.UTC().Format(time.RFC3339)
		} else {
			status.Components["last_frame"] = "none"
		}
	}

	if s.cache != nil {
		if cached, err := s.cache.LatestSnapshot(ctx); err == nil && cached != nil {
			status.Components["cached_snapshot"] = cached.Timestamp.UTC().Format(time.RFC3339)
		} else {
			status.Components["cached_snapshot"] = "none"
		}
	}

	return status, nil
}
