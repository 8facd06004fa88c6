package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dysonfactory/internal/core/domain"
)

func TestSnapshotService(t *testing.T) {
	ctx := context.Background()
	service := NewSnapshotService()

	power := domain.NewPowerMetrics(180, 140, 85)
	state := testState(map[int]*domain.PlanetState{
		0: {
			PlanetID:   0,
			PlanetName: "Sparta I",
			Power:      &power,
			Production: map[string]domain.ItemMetrics{
				"iron-ingot":    domain.NewItemMetrics("iron-ingot", 90, 60, 1200),
				"circuit-board": domain.NewItemMetrics("circuit-board", 30, 28, 300),
			},
		},
		1: {
			PlanetID:   1,
			PlanetName: "Sparta II",
			Production: map[string]domain.ItemMetrics{
				"silicon-ingot": domain.NewItemMetrics("silicon-ingot", 18, 20, 150),
			},
		},
	})

	t.Run("should pass through per item figures sorted by name", func(t *testing.T) {
		report, err := service.Build(ctx, state, SnapshotOptions{})
		require.NoError(t, err)
		require.Contains(t, report.Planets, 0)

		planet := report.Planets[0]
		require.Len(t, planet.Items, 2)
		assert.Equal(t, "circuit-board", planet.Items[0].Name)
		assert.Equal(t, "iron-ingot", planet.Items[1].Name)
		assert.InDelta(t, 30.0, planet.Items[1].Net, 1e-9)
		assert.Equal(t, 1200, planet.Items[1].Storage)

		require.NotNil(t, planet.Power)
		assert.InDelta(t, 40.0, planet.Power.SurplusMW, 1e-9)
	})

	t.Run("should omit power when the planet has none", func(t *testing.T) {
		report, err := service.Build(ctx, state, SnapshotOptions{})
		require.NoError(t, err)
		assert.Nil(t, report.Planets[1].Power)
	})

	t.Run("should filter by planet", func(t *testing.T) {
		planetID := 1
		report, err := service.Build(ctx, state, SnapshotOptions{PlanetID: &planetID})
		require.NoError(t, err)
		assert.Len(t, report.Planets, 1)
		assert.Contains(t, report.Planets, 1)
	})

	t.Run("should filter by item", func(t *testing.T) {
		report, err := service.Build(ctx, state, SnapshotOptions{ItemFilter: []string{"iron-ingot"}})
		require.NoError(t, err)
		require.Len(t, report.Planets[0].Items, 1)
		assert.Equal(t, "iron-ingot", report.Planets[0].Items[0].Name)
		assert.Empty(t, report.Planets[1].Items)
	})
}
