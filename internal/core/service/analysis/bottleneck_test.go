package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dysonfactory/internal/adapters/recipes"
	"dysonfactory/internal/core/domain"
)

func testState(planets map[int]*domain.PlanetState) *domain.FactoryState {
	return &domain.FactoryState{
		Timestamp: time.Unix(1700000000, 0),
		Planets:   planets,
	}
}

func starvedAssembler(id, recipeID int, production, max float64) domain.AssemblerMetrics {
	return domain.NewAssemblerMetrics(id, recipeID, production, max, true, false)
}

func blockedAssembler(id, recipeID int, production, max float64) domain.AssemblerMetrics {
	return domain.NewAssemblerMetrics(id, recipeID, production, max, false, true)
}

func TestBottleneckAnalyzer(t *testing.T) {
	ctx := context.Background()

	t.Run("should compute severity and throughput loss from efficiency", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{
				starvedAssembler(1, 1, 40, 100), // 40% efficiency
			}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		require.Len(t, report.Bottlenecks, 1)

		finding := report.Bottlenecks[0]
		assert.Equal(t, "iron-ingot", finding.Item)
		assert.Equal(t, domain.BottleneckInputStarvation, finding.Type)
		assert.InDelta(t, 60.0, finding.Severity, 1e-9)
		assert.InDelta(t, 60.0, finding.ThroughputLoss, 1e-9)
		assert.Equal(t, "Insufficient input materials", finding.RootCause)
		assert.Equal(t, 1, report.PlanetsAnalyzed)
		assert.Equal(t, 1, report.BottlenecksFound)
	})

	t.Run("should skip assemblers at or above the efficiency threshold", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{
				starvedAssembler(1, 1, 90, 100), // exactly 90%
				starvedAssembler(2, 1, 95, 100),
			}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		assert.Empty(t, report.Bottlenecks)
	})

	t.Run("should classify input starvation before blocked output", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{
				domain.NewAssemblerMetrics(1, 5, 40, 100, true, true),
			}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		require.Len(t, report.Bottlenecks, 1)
		assert.Equal(t, domain.BottleneckInputStarvation, report.Bottlenecks[0].Type)
	})

	t.Run("should produce no finding for inefficiency without flags", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{
				domain.NewAssemblerMetrics(1, 1, 40, 100, false, false),
			}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		assert.Empty(t, report.Bottlenecks)
	})

	t.Run("should rank findings by severity descending", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{
				starvedAssembler(1, 1, 80, 100), // severity 20
				blockedAssembler(2, 5, 30, 100), // severity 70
				starvedAssembler(3, 8, 55, 100), // severity 45
			}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		require.Len(t, report.Bottlenecks, 3)
		assert.InDelta(t, 70.0, report.Bottlenecks[0].Severity, 1e-9)
		assert.InDelta(t, 45.0, report.Bottlenecks[1].Severity, 1e-9)
		assert.InDelta(t, 20.0, report.Bottlenecks[2].Severity, 1e-9)
	})

	t.Run("should cap reported findings at ten but count all", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		assemblers := make([]domain.AssemblerMetrics, 0, 15)
		for i := 0; i < 15; i++ {
			assemblers = append(assemblers, starvedAssembler(i, 1, 40, 100))
		}
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: assemblers},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		assert.Equal(t, 15, report.BottlenecksFound)
		assert.Len(t, report.Bottlenecks, 10)
	})

	t.Run("should filter by planet and target item", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{starvedAssembler(1, 1, 40, 100)}},
			1: {PlanetID: 1, Assemblers: []domain.AssemblerMetrics{starvedAssembler(2, 5, 40, 100)}},
		})

		planetID := 1
		opts := DefaultBottleneckOptions()
		opts.PlanetID = &planetID

		report, err := analyzer.Analyze(ctx, state, opts)
		require.NoError(t, err)
		assert.Equal(t, 1, report.PlanetsAnalyzed)
		require.Len(t, report.Bottlenecks, 1)
		assert.Equal(t, "gear", report.Bottlenecks[0].Item)

		opts = DefaultBottleneckOptions()
		opts.TargetItem = "gear"
		report, err = analyzer.Analyze(ctx, state, opts)
		require.NoError(t, err)
		require.Len(t, report.Bottlenecks, 1)
		assert.Equal(t, "gear", report.Bottlenecks[0].Item)
	})

	t.Run("should return empty report for factory with no planets", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		report, err := analyzer.Analyze(ctx, testState(map[int]*domain.PlanetState{}), DefaultBottleneckOptions())
		require.NoError(t, err)
		assert.Zero(t, report.PlanetsAnalyzed)
		assert.Empty(t, report.Bottlenecks)
		assert.Empty(t, report.CriticalPath)
	})

	t.Run("should mark unknown recipes as unresolved", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{starvedAssembler(1, 9999, 40, 100)}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		require.Len(t, report.Bottlenecks, 1)
		assert.Equal(t, domain.ItemUnresolved, report.Bottlenecks[0].Item)
	})
}

func TestBottleneckCriticalPath(t *testing.T) {
	ctx := context.Background()

	t.Run("should walk downstream consumers breadth first", func(t *testing.T) {
		db := recipes.NewStaticDatabase(
			map[int]string{1: "iron-ingot"},
			map[string][]string{
				"iron-ingot": {"gear"},
				"gear":       {"electric-motor"},
			},
		)
		analyzer := NewBottleneckAnalyzer(db)
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{starvedAssembler(1, 1, 40, 100)}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		assert.Equal(t, []string{"iron-ingot", "gear", "electric-motor"}, report.CriticalPath)
		assert.False(t, report.CriticalPathDegraded)
	})

	t.Run("should degrade to flat item list without a recipe database", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(nil)
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{starvedAssembler(1, 1, 40, 100)}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		assert.True(t, report.CriticalPathDegraded)
		assert.Equal(t, []string{domain.ItemUnresolved}, report.CriticalPath)
	})

	t.Run("should degrade when the dependency lookup fails", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(&failingRecipeDB{})
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{starvedAssembler(1, 1, 40, 100)}},
		})

		report, err := analyzer.Analyze(ctx, state, DefaultBottleneckOptions())
		require.NoError(t, err)
		assert.True(t, report.CriticalPathDegraded)
		assert.Equal(t, []string{"iron-ingot"}, report.CriticalPath)
	})

	t.Run("should omit critical path when downstream disabled", func(t *testing.T) {
		analyzer := NewBottleneckAnalyzer(recipes.NewDefaultDatabase())
		state := testState(map[int]*domain.PlanetState{
			0: {PlanetID: 0, Assemblers: []domain.AssemblerMetrics{starvedAssembler(1, 1, 40, 100)}},
		})

		opts := DefaultBottleneckOptions()
		opts.IncludeDownstream = false
		report, err := analyzer.Analyze(ctx, state, opts)
		require.NoError(t, err)
		assert.Empty(t, report.CriticalPath)
		assert.False(t, report.CriticalPathDegraded)
	})
}

// failingRecipeDB resolves items but cannot serve the dependency graph.
type failingRecipeDB struct{}

func (f *failingRecipeDB) ItemForRecipe(ctx context.Context, recipeID int) (string, error) {
	return "iron-ingot", nil
}

func (f *failingRecipeDB) Consumers(ctx context.Context, item string) ([]string, error) {
	return nil, fmt.Errorf("recipe graph offline")
}

func (f *failingRecipeDB) Ping(ctx context.Context) error { return nil }
