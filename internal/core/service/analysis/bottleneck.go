// Package analysis contains the factory analyzers. Each analyzer is a pure
// computation over an already-materialized FactoryState: no network, no
// filesystem, no mutation of the snapshot.
package analysis

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"dysonfactory/internal/core/domain"
	"dysonfactory/internal/core/port"
)

// Assemblers at or above this efficiency are not considered bottlenecked.
const efficiencyThreshold = 90.0

const (
	maxReportedBottlenecks = 10
	maxDegradedPathItems   = 5
)

// BottleneckOptions are the named parameters of the bottleneck analysis.
type BottleneckOptions struct {
	PlanetID          *int
	TargetItem        string
	TimeWindowSec     int // history window informing the rate fields upstream
	IncludeDownstream bool
}

// DefaultBottleneckOptions returns the tool surface defaults.
func DefaultBottleneckOptions() BottleneckOptions {
	return BottleneckOptions{TimeWindowSec: 60, IncludeDownstream: true}
}

// BottleneckAnalyzer identifies production chain bottlenecks. The recipe
// database resolves affected items and dependency edges; it may be nil, in
// which case findings are reported as unresolved and the critical path
// degrades to a flat item list.
type BottleneckAnalyzer struct {
	recipes port.RecipeDatabase
}

func NewBottleneckAnalyzer(recipes port.RecipeDatabase) *BottleneckAnalyzer {
	return &BottleneckAnalyzer{recipes: recipes}
}

// Analyze classifies every underperforming assembler on the selected planets
// into at most one finding and ranks findings by severity.
func (a *BottleneckAnalyzer) Analyze(ctx context.Context, state *domain.FactoryState, opts BottleneckOptions) (*domain.BottleneckReport, error) {
	slog.Info("Analyzing bottlenecks", "planet", planetFilterValue(opts.PlanetID), "item", opts.TargetItem)

	var findings []domain.BottleneckFinding
	planetsAnalyzed := 0

	for _, pid := range state.PlanetIDs() {
		if opts.PlanetID != nil && pid != *opts.PlanetID {
			continue
		}
		planet := state.Planets[pid]
		planetsAnalyzed++

		for _, assembler := range planet.Assemblers {
			if assembler.Efficiency >= efficiencyThreshold {
				continue
			}
			finding, ok := a.classifyAssembler(ctx, assembler)
			if !ok {
				continue
			}
			if opts.TargetItem != "" && finding.Item != opts.TargetItem {
				continue
			}
			findings = append(findings, finding)
		}
	}

	// Stable sort keeps insertion order for equal severities so the output
	// is deterministic.
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity > findings[j].Severity
	})

	report := &domain.BottleneckReport{
		ReportID:         uuid.NewString(),
		Timestamp:        state.Timestamp.Format(time.RFC3339),
		TimeWindowSec:    opts.TimeWindowSec,
		PlanetsAnalyzed:  planetsAnalyzed,
		BottlenecksFound: len(findings),
		Bottlenecks:      topFindings(findings, maxReportedBottlenecks),
		CriticalPath:     []string{},
	}

	if opts.IncludeDownstream {
		// All findings participate, not just the reported top 10.
		report.CriticalPath, report.CriticalPathDegraded = a.buildCriticalPath(ctx, findings)
	}

	return report, nil
}

// classifyAssembler maps an underperforming assembler to exactly one finding.
// An inefficiency with neither flag set has an unmodeled cause and produces
// no finding.
func (a *BottleneckAnalyzer) classifyAssembler(ctx context.Context, assembler domain.AssemblerMetrics) (domain.BottleneckFinding, bool) {
	var findingType, rootCause, recommendation string

	switch {
	case assembler.InputStarved:
		findingType = domain.BottleneckInputStarvation
		rootCause = "Insufficient input materials"
		recommendation = "Increase upstream production or add more input belts"
	case assembler.OutputBlocked:
		findingType = domain.BottleneckOutputBlocked
		rootCause = "Output buffer full, downstream consumption insufficient"
		recommendation = "Add more output belts or increase downstream consumption"
	default:
		return domain.BottleneckFinding{}, false
	}

	return domain.BottleneckFinding{
		Item:           a.resolveItem(ctx, assembler.RecipeID),
		Type:           findingType,
		Severity:       100 - assembler.Efficiency,
		ThroughputLoss: assembler.TheoreticalMax - assembler.ProductionRate,
		RootCause:      rootCause,
		Recommendation: recommendation,
	}, true
}

func (a *BottleneckAnalyzer) resolveItem(ctx context.Context, recipeID int) string {
	if a.recipes == nil {
		return domain.ItemUnresolved
	}
	item, err := a.recipes.ItemForRecipe(ctx, recipeID)
	if err != nil {
		slog.Warn("Recipe lookup failed", "recipe_id", recipeID, "error", err)
		return domain.ItemUnresolved
	}
	if item == "" {
		return domain.ItemUnresolved
	}
	return item
}

// buildCriticalPath walks forward from each bottlenecked item to the items
// whose recipes consume it, collecting the chain of affected products.
// Without a usable dependency graph it degrades to the top bottlenecked item
// names and reports the degradation instead of failing silently.
func (a *BottleneckAnalyzer) buildCriticalPath(ctx context.Context, findings []domain.BottleneckFinding) ([]string, bool) {
	if a.recipes == nil {
		return flatPath(findings), true
	}

	path := make([]string, 0, len(findings))
	seen := make(map[string]bool)

	// Breadth-first from the bottlenecked items, in severity order.
	var queue []string
	for _, f := range findings {
		if f.Item == domain.ItemUnresolved || seen[f.Item] {
			continue
		}
		seen[f.Item] = true
		queue = append(queue, f.Item)
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		path = append(path, item)

		consumers, err := a.recipes.Consumers(ctx, item)
		if err != nil {
			slog.Warn("Dependency graph lookup failed, degrading critical path", "item", item, "error", err)
			return flatPath(findings), true
		}
		for _, consumer := range consumers {
			if seen[consumer] {
				continue
			}
			seen[consumer] = true
			queue = append(queue, consumer)
		}
	}

	if len(path) == 0 {
		return flatPath(findings), true
	}
	return path, false
}

func flatPath(findings []domain.BottleneckFinding) []string {
	path := make([]string, 0, maxDegradedPathItems)
	for _, f := range findings {
		if len(path) == maxDegradedPathItems {
			break
		}
		path = append(path, f.Item)
	}
	return path
}

func topFindings(findings []domain.BottleneckFinding, n int) []domain.BottleneckFinding {
	if len(findings) > n {
		findings = findings[:n]
	}
	out := make([]domain.BottleneckFinding, len(findings))
	copy(out, findings)
	return out
}

func planetFilterValue(planetID *int) any {
	if planetID == nil {
		return "all"
	}
	return *planetID
}
