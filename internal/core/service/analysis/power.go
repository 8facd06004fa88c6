package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"dysonfactory/internal/core/domain"
)

// Deficit magnitudes selecting the recommendation tier.
const (
	minorDeficitMW = 10.0
	majorDeficitMW = 50.0
	// Rated output assumed per fusion plant when sizing the middle tier.
	fusionPlantMW = 15.0
)

// PowerOptions are the named parameters of the power grid analysis.
type PowerOptions struct {
	PlanetID                 *int
	IncludeAccumulatorCycles bool
}

// DefaultPowerOptions returns the tool surface defaults.
func DefaultPowerOptions() PowerOptions {
	return PowerOptions{IncludeAccumulatorCycles: true}
}

// PowerAnalyzer evaluates generation, consumption, and distribution per
// planet and globally.
type PowerAnalyzer struct{}

func NewPowerAnalyzer() *PowerAnalyzer {
	return &PowerAnalyzer{}
}

// Analyze classifies each powered planet as surplus or deficit and sizes
// generation recommendations by deficit magnitude.
func (a *PowerAnalyzer) Analyze(ctx context.Context, state *domain.FactoryState, opts PowerOptions) (*domain.PowerReport, error) {
	slog.Info("Analyzing power grid", "planet", planetFilterValue(opts.PlanetID))

	var planets []domain.PowerPlanetReport
	totalGeneration := 0.0
	totalConsumption := 0.0
	deficitsFound := 0

	for _, pid := range state.PlanetIDs() {
		if opts.PlanetID != nil && pid != *opts.PlanetID {
			continue
		}
		planet := state.Planets[pid]
		if planet.Power == nil {
			continue
		}

		power := planet.Power
		totalGeneration += power.GenerationMW
		totalConsumption += power.ConsumptionMW

		entry := domain.PowerPlanetReport{
			PlanetID:      pid,
			PlanetName:    planet.PlanetName,
			GenerationMW:  round2(power.GenerationMW),
			ConsumptionMW: round2(power.ConsumptionMW),
			SurplusMW:     round2(power.SurplusMW),
			Status:        domain.PowerStatusSurplus,
		}
		if power.SurplusMW < 0 {
			entry.Status = domain.PowerStatusDeficit
			entry.Recommendation = deficitRecommendation(power.SurplusMW)
			deficitsFound++
		}
		if opts.IncludeAccumulatorCycles {
			entry.AccumulatorCharge = fmt.Sprintf("%.1f%%", power.AccumulatorChargePercent)
		}

		planets = append(planets, entry)
	}

	if planets == nil {
		planets = []domain.PowerPlanetReport{}
	}

	return &domain.PowerReport{
		ReportID:  uuid.NewString(),
		Timestamp: state.Timestamp.Format(time.RFC3339),
		Summary: domain.PowerSummary{
			TotalGenerationMW:  round2(totalGeneration),
			TotalConsumptionMW: round2(totalConsumption),
			NetSurplusMW:       round2(totalGeneration - totalConsumption),
			PlanetsWithDeficit: deficitsFound,
		},
		Planets:         planets,
		Recommendations: globalPowerRecommendations(totalGeneration, totalConsumption),
	}, nil
}

func deficitRecommendation(surplusMW float64) string {
	deficit := math.Abs(surplusMW)

	switch {
	case deficit < minorDeficitMW:
		return fmt.Sprintf("Minor deficit of %.1fMW - add 1 thermal plant", deficit)
	case deficit < majorDeficitMW:
		plantsNeeded := int(deficit/fusionPlantMW) + 1
		return fmt.Sprintf("Deficit of %.1fMW - add %d fusion plants", deficit, plantsNeeded)
	default:
		return fmt.Sprintf("Major deficit of %.1fMW - consider artificial sun or ray receivers", deficit)
	}
}

func globalPowerRecommendations(generation, consumption float64) []string {
	recommendations := []string{}
	surplus := generation - consumption

	// Zero consumption counts as fully met.
	surplusPercent := 100.0
	if consumption > 0 {
		surplusPercent = surplus / consumption * 100
	}

	switch {
	case surplus < 0:
		recommendations = append(recommendations,
			fmt.Sprintf("CRITICAL: Global power deficit of %.1fMW", math.Abs(surplus)))
	case surplusPercent < 10:
		recommendations = append(recommendations,
			fmt.Sprintf("WARNING: Power surplus below 10%% (%.1f%%)", surplusPercent),
			"Consider adding generation capacity before expanding")
	case surplusPercent > 50:
		recommendations = append(recommendations,
			fmt.Sprintf("Healthy power surplus of %.1f%%", surplusPercent))
	}

	return recommendations
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
