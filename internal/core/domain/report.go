package domain

// Bottleneck finding types.
const (
	BottleneckInputStarvation = "input_starvation"
	BottleneckOutputBlocked   = "output_blocked"
)

// ItemUnresolved marks a finding whose affected item could not be resolved
// through the recipe database. Reported explicitly instead of guessing.
const ItemUnresolved = "unresolved"

// BottleneckFinding is one diagnosed production bottleneck.
type BottleneckFinding struct {
	Item           string  `json:"item"`
	Type           string  `json:"type"`
	Severity       float64 `json:"severity"` // (0,100], higher is worse
	ThroughputLoss float64 `json:"throughput_loss"`
	RootCause      string  `json:"root_cause"`
	Recommendation string  `json:"recommendation"`
}

// BottleneckReport ranks production bottlenecks across the selected planets.
type BottleneckReport struct {
	ReportID             string              `json:"report_id"`
	Timestamp            string              `json:"timestamp"`
	TimeWindowSec        int                 `json:"time_window_sec"`
	PlanetsAnalyzed      int                 `json:"planets_analyzed"`
	BottlenecksFound     int                 `json:"bottlenecks_found"`
	Bottlenecks          []BottleneckFinding `json:"bottlenecks"`
	CriticalPath         []string            `json:"critical_path"`
	CriticalPathDegraded bool                `json:"critical_path_degraded,omitempty"`
}

// Power grid status per planet.
const (
	PowerStatusSurplus = "surplus"
	PowerStatusDeficit = "deficit"
)

// PowerPlanetReport is the power breakdown for one planet.
type PowerPlanetReport struct {
	PlanetID          int     `json:"planet_id"`
	PlanetName        string  `json:"planet_name"`
	GenerationMW      float64 `json:"generation_mw"`
	ConsumptionMW     float64 `json:"consumption_mw"`
	SurplusMW         float64 `json:"surplus_mw"`
	Status            string  `json:"status"`
	Recommendation    string  `json:"recommendation,omitempty"`
	AccumulatorCharge string  `json:"accumulator_charge,omitempty"`
}

// PowerSummary aggregates generation and consumption across planets.
type PowerSummary struct {
	TotalGenerationMW  float64 `json:"total_generation_mw"`
	TotalConsumptionMW float64 `json:"total_consumption_mw"`
	NetSurplusMW       float64 `json:"net_surplus_mw"`
	PlanetsWithDeficit int     `json:"planets_with_deficit"`
}

// PowerReport is the full power grid analysis.
type PowerReport struct {
	ReportID        string              `json:"report_id"`
	Timestamp       string              `json:"timestamp"`
	Summary         PowerSummary        `json:"summary"`
	Planets         []PowerPlanetReport `json:"planets"`
	Recommendations []string            `json:"recommendations"`
}

// Belt status classifications.
const (
	BeltStatusSaturated      = "saturated"
	BeltStatusNearSaturation = "near_saturation"
)

// BeltReport is one belt's saturation entry.
type BeltReport struct {
	PlanetID       int     `json:"planet_id"`
	BeltID         int     `json:"belt_id"`
	Item           string  `json:"item"`
	Throughput     float64 `json:"throughput"`
	MaxThroughput  float64 `json:"max_throughput"`
	Saturation     float64 `json:"saturation"`
	Status         string  `json:"status"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// LogisticsSummary counts classified belts.
type LogisticsSummary struct {
	SaturatedCount      int `json:"saturated_count"`
	NearSaturationCount int `json:"near_saturation_count"`
}

// LogisticsReport is the full belt saturation analysis.
type LogisticsReport struct {
	ReportID        string           `json:"report_id"`
	Timestamp       string           `json:"timestamp"`
	Threshold       float64          `json:"threshold"`
	Summary         LogisticsSummary `json:"summary"`
	SaturatedBelts  []BeltReport     `json:"saturated_belts"`
	NearSaturation  []BeltReport     `json:"near_saturation"`
	Recommendations []string         `json:"recommendations"`
}

// SnapshotItem is one item's figures in the pass-through snapshot view.
type SnapshotItem struct {
	Name        string  `json:"name"`
	Production  float64 `json:"production"`
	Consumption float64 `json:"consumption"`
	Net         float64 `json:"net"`
	Storage     int     `json:"storage"`
}

// SnapshotPower is the power block in the snapshot view.
type SnapshotPower struct {
	GenerationMW  float64 `json:"generation_mw"`
	ConsumptionMW float64 `json:"consumption_mw"`
	SurplusMW     float64 `json:"surplus_mw"`
}

// SnapshotPlanet is one planet in the snapshot view.
type SnapshotPlanet struct {
	PlanetName string         `json:"planet_name"`
	Items      []SnapshotItem `json:"items"`
	Power      *SnapshotPower `json:"power,omitempty"`
}

// SnapshotReport is the direct view of the current factory state.
type SnapshotReport struct {
	ReportID  string                 `json:"report_id"`
	Timestamp string                 `json:"timestamp"`
	Planets   map[int]SnapshotPlanet `json:"planets"`
}

// ToolError is the structured error object returned by tool operations.
type ToolError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SaveAnalysis is the result of load_save_analysis. For analysis_type "full"
// each section is filled independently; a failed section leaves its pointer
// nil and records a ToolError instead, so sibling analyses still return.
type SaveAnalysis struct {
	Production *BottleneckReport    `json:"production,omitempty"`
	Power      *PowerReport         `json:"power,omitempty"`
	Logistics  *LogisticsReport     `json:"logistics,omitempty"`
	Errors     map[string]ToolError `json:"errors,omitempty"`
}

// RateSample is one cached net-rate observation for an item.
type RateSample struct {
	Timestamp int64   `json:"timestamp"`
	NetRate   float64 `json:"net_rate"`
}
