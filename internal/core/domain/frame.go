package domain

import (
	"strconv"
	"time"
)

// RawFrame is the wire schema shared by the live feed and the save decoder.
// Every field is optional; missing values default to zero so construction is
// total over malformed input.
type RawFrame struct {
	Timestamp float64              `json:"Timestamp"`
	Planets   map[string]RawPlanet `json:"Planets"`
}

type RawPlanet struct {
	Name       string          `json:"Name"`
	Power      *RawPower       `json:"Power"`
	Production []RawProduction `json:"Production"`
	Assemblers []RawAssembler  `json:"Assemblers"`
	Belts      []RawBelt       `json:"Belts"`
}

type RawPower struct {
	GenerationMW       float64 `json:"GenerationMW"`
	ConsumptionMW      float64 `json:"ConsumptionMW"`
	AccumulatorPercent float64 `json:"AccumulatorPercent"`
}

type RawProduction struct {
	ItemName        string  `json:"ItemName"`
	ProductionRate  float64 `json:"ProductionRate"`
	ConsumptionRate float64 `json:"ConsumptionRate"`
	Storage         int     `json:"Storage"`
}

type RawAssembler struct {
	AssemblerID    int     `json:"AssemblerID"`
	RecipeID       int     `json:"RecipeID"`
	ProductionRate float64 `json:"ProductionRate"`
	TheoreticalMax float64 `json:"TheoreticalMax"`
	InputStarved   bool    `json:"InputStarved"`
	OutputBlocked  bool    `json:"OutputBlocked"`
}

type RawBelt struct {
	BeltID        int     `json:"BeltID"`
	ItemType      string  `json:"ItemType"`
	Throughput    float64 `json:"Throughput"`
	MaxThroughput float64 `json:"MaxThroughput"`
}

// FromRealtimeData builds a FactoryState from a live feed frame.
func FromRealtimeData(frame RawFrame) *FactoryState {
	return fromRawFrame(frame)
}

// FromSaveData builds a FactoryState from a decoded save snapshot. The decode
// of the save format itself happens upstream; both sources share the raw
// frame schema so identical logical content produces an identical state.
func FromSaveData(frame RawFrame) *FactoryState {
	return fromRawFrame(frame)
}

func fromRawFrame(frame RawFrame) *FactoryState {
	planets := make(map[int]*PlanetState, len(frame.Planets))

	for idStr, raw := range frame.Planets {
		planetID, err := strconv.Atoi(idStr)
		if err != nil {
			// Non-numeric planet keys cannot be addressed by any tool
			// parameter; skip rather than fail the whole frame.
			continue
		}

		planet := &PlanetState{
			PlanetID:   planetID,
			PlanetName: raw.Name,
			Production: make(map[string]ItemMetrics, len(raw.Production)),
		}

		if raw.Power != nil {
			power := NewPowerMetrics(raw.Power.GenerationMW, raw.Power.ConsumptionMW, raw.Power.AccumulatorPercent)
			planet.Power = &power
		}

		for _, prod := range raw.Production {
			name := prod.ItemName
			if name == "" {
				name = "unknown"
			}
			planet.Production[name] = NewItemMetrics(name, prod.ProductionRate, prod.ConsumptionRate, prod.Storage)
		}

		for _, asm := range raw.Assemblers {
			planet.Assemblers = append(planet.Assemblers, NewAssemblerMetrics(
				asm.AssemblerID, asm.RecipeID, asm.ProductionRate, asm.TheoreticalMax,
				asm.InputStarved, asm.OutputBlocked))
		}

		for _, belt := range raw.Belts {
			planet.Belts = append(planet.Belts, NewBeltMetrics(belt.BeltID, belt.ItemType, belt.Throughput, belt.MaxThroughput))
		}

		planets[planetID] = planet
	}

	return &FactoryState{
		Timestamp: time.Unix(int64(frame.Timestamp), 0),
		Planets:   planets,
	}
}
