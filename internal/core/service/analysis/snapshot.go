package analysis

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"dysonfactory/internal/core/domain"
)

// SnapshotOptions are the named parameters of the pass-through snapshot view.
type SnapshotOptions struct {
	PlanetID   *int
	ItemFilter []string
}

// SnapshotService builds the direct, unanalyzed view of the current state.
type SnapshotService struct{}

func NewSnapshotService() *SnapshotService {
	return &SnapshotService{}
}

// Build returns production, consumption, and storage per item, filtered by
// planet and item when requested.
func (s *SnapshotService) Build(ctx context.Context, state *domain.FactoryState, opts SnapshotOptions) (*domain.SnapshotReport, error) {
	slog.Info("Building factory snapshot", "planet", planetFilterValue(opts.PlanetID))

	itemFilter := make(map[string]bool, len(opts.ItemFilter))
	for _, item := range opts.ItemFilter {
		itemFilter[item] = true
	}

	report := &domain.SnapshotReport{
		ReportID:  uuid.NewString(),
		Timestamp: state.Timestamp.Format(time.RFC3339),
		Planets:   make(map[int]domain.SnapshotPlanet),
	}

	for _, pid := range state.PlanetIDs() {
		if opts.PlanetID != nil && pid != *opts.PlanetID {
			continue
		}
		planet := state.Planets[pid]

		entry := domain.SnapshotPlanet{
			PlanetName: planet.PlanetName,
			Items:      []domain.SnapshotItem{},
		}

		itemNames := make([]string, 0, len(planet.Production))
		for name := range planet.Production {
			itemNames = append(itemNames, name)
		}
		sort.Strings(itemNames)

		for _, name := range itemNames {
			if len(itemFilter) > 0 && !itemFilter[name] {
				continue
			}
			metrics := planet.Production[name]
			entry.Items = append(entry.Items, domain.SnapshotItem{
				Name:        metrics.ItemName,
				Production:  metrics.ProductionRate,
				Consumption: metrics.ConsumptionRate,
				Net:         metrics.NetRate,
				Storage:     metrics.CurrentStorage,
			})
		}

		if planet.Power != nil {
			entry.Power = &domain.SnapshotPower{
				GenerationMW:  planet.Power.GenerationMW,
				ConsumptionMW: planet.Power.ConsumptionMW,
				SurplusMW:     planet.Power.SurplusMW,
			}
		}

		report.Planets[pid] = entry
	}

	return report, nil
}
