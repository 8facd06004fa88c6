package port

import (
	"context"
	"time"

	"dysonfactory/internal/core/domain"
)

// SnapshotCache keeps the latest factory snapshot and a short net-rate
// history per item. The service degrades cleanly when no cache is configured.
type SnapshotCache interface {
	// StoreSnapshot stores the state as the latest snapshot and appends
	// net-rate samples to the per-item time series.
	StoreSnapshot(ctx context.Context, state *domain.FactoryState) error

	// LatestSnapshot returns the most recently stored snapshot.
	LatestSnapshot(ctx context.Context) (*domain.FactoryState, error)

	// NetRateHistory returns the cached net-rate samples for an item on a
	// planet within the trailing window.
	NetRateHistory(ctx context.Context, planetID int, item string, window time.Duration) ([]domain.RateSample, error)

	// CleanupOldData removes samples older than the given duration.
	CleanupOldData(ctx context.Context, olderThan time.Duration) error

	// Ping checks cache health.
	Ping(ctx context.Context) error
}
