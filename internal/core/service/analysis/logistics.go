package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"dysonfactory/internal/core/domain"
)

// Belt tier maximum throughput in items/sec.
const (
	beltMk1MaxThroughput = 6
	beltMk2MaxThroughput = 12
)

// Saturation band below the threshold that still gets flagged.
const nearSaturationBandWidth = 10.0

const (
	maxReportedSaturated      = 20
	maxReportedNearSaturation = 10
	systematicUpgradeCount    = 5
)

// LogisticsOptions are the named parameters of the logistics analysis.
type LogisticsOptions struct {
	PlanetID            *int
	ItemFilter          []string
	SaturationThreshold float64
}

// DefaultLogisticsOptions returns the tool surface defaults.
func DefaultLogisticsOptions() LogisticsOptions {
	return LogisticsOptions{SaturationThreshold: 95.0}
}

// LogisticsAnalyzer detects belt saturation across the selected planets.
type LogisticsAnalyzer struct{}

func NewLogisticsAnalyzer() *LogisticsAnalyzer {
	return &LogisticsAnalyzer{}
}

// Analyze classifies each belt as saturated, near saturation, or healthy. A
// belt lands in exactly one of the two reported lists or in neither.
func (a *LogisticsAnalyzer) Analyze(ctx context.Context, state *domain.FactoryState, opts LogisticsOptions) (*domain.LogisticsReport, error) {
	slog.Info("Analyzing logistics", "threshold", opts.SaturationThreshold)

	itemFilter := make(map[string]bool, len(opts.ItemFilter))
	for _, item := range opts.ItemFilter {
		itemFilter[item] = true
	}

	var saturated []domain.BeltReport
	var nearSaturation []domain.BeltReport

	for _, pid := range state.PlanetIDs() {
		if opts.PlanetID != nil && pid != *opts.PlanetID {
			continue
		}
		planet := state.Planets[pid]

		for _, belt := range planet.Belts {
			if len(itemFilter) > 0 && !itemFilter[belt.ItemType] {
				continue
			}

			entry := domain.BeltReport{
				PlanetID:      pid,
				BeltID:        belt.BeltID,
				Item:          belt.ItemType,
				Throughput:    round2(belt.Throughput),
				MaxThroughput: belt.MaxThroughput,
				Saturation:    round1(belt.SaturationPercent),
			}

			switch {
			case belt.SaturationPercent >= opts.SaturationThreshold:
				entry.Status = domain.BeltStatusSaturated
				entry.Recommendation = upgradeRecommendation(belt.MaxThroughput)
				saturated = append(saturated, entry)
			case belt.SaturationPercent >= opts.SaturationThreshold-nearSaturationBandWidth:
				entry.Status = domain.BeltStatusNearSaturation
				nearSaturation = append(nearSaturation, entry)
			}
		}
	}

	sort.SliceStable(saturated, func(i, j int) bool {
		return saturated[i].Saturation > saturated[j].Saturation
	})
	sort.SliceStable(nearSaturation, func(i, j int) bool {
		return nearSaturation[i].Saturation > nearSaturation[j].Saturation
	})

	return &domain.LogisticsReport{
		ReportID:  uuid.NewString(),
		Timestamp: state.Timestamp.Format(time.RFC3339),
		Threshold: opts.SaturationThreshold,
		Summary: domain.LogisticsSummary{
			SaturatedCount:      len(saturated),
			NearSaturationCount: len(nearSaturation),
		},
		SaturatedBelts:  topBelts(saturated, maxReportedSaturated),
		NearSaturation:  topBelts(nearSaturation, maxReportedNearSaturation),
		Recommendations: globalLogisticsRecommendations(saturated),
	}, nil
}

// upgradeRecommendation keys off the tier inferred from the rated maximum.
func upgradeRecommendation(maxThroughput float64) string {
	switch {
	case maxThroughput <= beltMk1MaxThroughput:
		return "Upgrade to Mk2 (green) belt for 2x throughput"
	case maxThroughput <= beltMk2MaxThroughput:
		return "Upgrade to Mk3 (yellow) belt for 2.5x throughput"
	default:
		return "At max tier - consider parallel belt lines"
	}
}

func globalLogisticsRecommendations(saturated []domain.BeltReport) []string {
	recommendations := []string{}

	switch {
	case len(saturated) == 0:
		recommendations = append(recommendations, "No saturated belts detected - logistics healthy")
	case len(saturated) < systematicUpgradeCount:
		recommendations = append(recommendations,
			fmt.Sprintf("%d saturated belts - targeted upgrades recommended", len(saturated)))
	default:
		recommendations = append(recommendations,
			fmt.Sprintf("%d saturated belts - consider systematic belt upgrade", len(saturated)))

		// Most frequently saturated item; ties keep the first seen.
		itemCounts := make(map[string]int)
		worstItem := ""
		worstCount := 0
		for _, belt := range saturated {
			itemCounts[belt.Item]++
			if itemCounts[belt.Item] > worstCount {
				worstItem = belt.Item
				worstCount = itemCounts[belt.Item]
			}
		}
		recommendations = append(recommendations,
			fmt.Sprintf("Most congested item: %s (%d belts)", worstItem, worstCount))
	}

	return recommendations
}

func topBelts(belts []domain.BeltReport, n int) []domain.BeltReport {
	if len(belts) > n {
		belts = belts[:n]
	}
	out := make([]domain.BeltReport, len(belts))
	copy(out, belts)
	return out
}
