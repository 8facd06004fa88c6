package domain

import (
	"sort"
	"time"
)

// ItemMetrics holds per-item production figures for one planet.
type ItemMetrics struct {
	ItemName        string  `json:"item_name"`
	ProductionRate  float64 `json:"production_rate"`  // items/min
	ConsumptionRate float64 `json:"consumption_rate"` // items/min
	CurrentStorage  int     `json:"current_storage"`
	NetRate         float64 `json:"net_rate"`
}

// NewItemMetrics computes the derived net rate (production minus consumption).
func NewItemMetrics(name string, production, consumption float64, storage int) ItemMetrics {
	return ItemMetrics{
		ItemName:        name,
		ProductionRate:  production,
		ConsumptionRate: consumption,
		CurrentStorage:  storage,
		NetRate:         production - consumption,
	}
}

// AssemblerMetrics holds figures for a single assembler or smelter.
type AssemblerMetrics struct {
	AssemblerID    int     `json:"assembler_id"`
	RecipeID       int     `json:"recipe_id"`
	ProductionRate float64 `json:"production_rate"`
	TheoreticalMax float64 `json:"theoretical_max"`
	InputStarved   bool    `json:"input_starved"`
	OutputBlocked  bool    `json:"output_blocked"`
	Efficiency     float64 `json:"efficiency"` // percent of theoretical max
}

// NewAssemblerMetrics computes efficiency as production/theoretical_max*100.
// Efficiency is 0 when the theoretical max is 0. Values above 100 indicate a
// data anomaly upstream and are passed through unclamped.
func NewAssemblerMetrics(assemblerID, recipeID int, production, theoreticalMax float64, inputStarved, outputBlocked bool) AssemblerMetrics {
	efficiency := 0.0
	if theoreticalMax > 0 {
		efficiency = production / theoreticalMax * 100
	}
	return AssemblerMetrics{
		AssemblerID:    assemblerID,
		RecipeID:       recipeID,
		ProductionRate: production,
		TheoreticalMax: theoreticalMax,
		InputStarved:   inputStarved,
		OutputBlocked:  outputBlocked,
		Efficiency:     efficiency,
	}
}

// PowerMetrics holds the power grid figures for one planet.
type PowerMetrics struct {
	GenerationMW             float64 `json:"generation_mw"`
	ConsumptionMW            float64 `json:"consumption_mw"`
	AccumulatorChargePercent float64 `json:"accumulator_charge_percent"`
	SurplusMW                float64 `json:"surplus_mw"` // signed
}

// NewPowerMetrics computes the signed surplus (generation minus consumption).
func NewPowerMetrics(generation, consumption, accumulatorPercent float64) PowerMetrics {
	return PowerMetrics{
		GenerationMW:             generation,
		ConsumptionMW:            consumption,
		AccumulatorChargePercent: accumulatorPercent,
		SurplusMW:                generation - consumption,
	}
}

// BeltMetrics holds throughput figures for a single belt.
type BeltMetrics struct {
	BeltID            int     `json:"belt_id"`
	ItemType          string  `json:"item_type"`
	Throughput        float64 `json:"throughput"`     // items/sec
	MaxThroughput     float64 `json:"max_throughput"` // items/sec, tier rated
	SaturationPercent float64 `json:"saturation_percent"`
}

// NewBeltMetrics computes saturation as throughput/max_throughput*100,
// 0 when the rated max is 0.
func NewBeltMetrics(beltID int, itemType string, throughput, maxThroughput float64) BeltMetrics {
	saturation := 0.0
	if maxThroughput > 0 {
		saturation = throughput / maxThroughput * 100
	}
	return BeltMetrics{
		BeltID:            beltID,
		ItemType:          itemType,
		Throughput:        throughput,
		MaxThroughput:     maxThroughput,
		SaturationPercent: saturation,
	}
}

// PlanetState is the complete state of one planet.
type PlanetState struct {
	PlanetID   int                    `json:"planet_id"`
	PlanetName string                 `json:"planet_name"`
	Production map[string]ItemMetrics `json:"production"`
	Assemblers []AssemblerMetrics     `json:"assemblers"`
	Power      *PowerMetrics          `json:"power,omitempty"`
	Belts      []BeltMetrics          `json:"belts"`
}

// FactoryState is the complete factory snapshot across all planets. A state
// is constructed fresh on every ingestion event and never mutated afterwards;
// analyzers only read it.
type FactoryState struct {
	Timestamp time.Time            `json:"timestamp"`
	Planets   map[int]*PlanetState `json:"planets"`
}

// PlanetIDs returns the planet ids in ascending order. Analyzers iterate in
// this order so that reports are deterministic.
func (s *FactoryState) PlanetIDs() []int {
	ids := make([]int, 0, len(s.Planets))
	for id := range s.Planets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
