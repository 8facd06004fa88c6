package port

import (
	"context"

	"dysonfactory/internal/core/domain"
)

type HealthService interface {
	GetSystemHealth(ctx context.Context) (*domain.HealthStatus, error)
	GetDetailedHealth(ctx context.Context) (*domain.HealthStatus, error)
}
