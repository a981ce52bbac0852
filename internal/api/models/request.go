package models

import "lbo-analyzer/internal/config"

// DealSource names a preset, a literal deal, or both. When both are set the
// deal's non-zero fields override the preset.
type DealSource struct {
	PresetID string            `json:"preset_id,omitempty"`
	Deal     config.DealConfig `json:"deal,omitempty"`
}

// LBORequest represents the request body for a single engine run
type LBORequest struct {
	DealSource
	Options RunOptions `json:"options,omitempty"`
}

// RunOptions contains optional run parameters
type RunOptions struct {
	IncludeTables bool `json:"include_tables,omitempty"` // default: false
}

// CompareRequest runs named variations on top of a base deal
type CompareRequest struct {
	Base       DealSource  `json:"base"`
	Variations []Variation `json:"variations" binding:"required,min=1,dive"`
}

// Variation overrides fields of the base deal
type Variation struct {
	Name string            `json:"name" binding:"required"`
	Deal config.DealConfig `json:"deal"`
}

// SensitivityRequest builds a growth by exit-multiple grid.
// Empty axes fall back to the server defaults.
type SensitivityRequest struct {
	DealSource
	GrowthRates   []float64 `json:"growth_rates,omitempty"`
	ExitMultiples []float64 `json:"exit_multiples,omitempty"`
}

// ScoreRequest runs the deal, its sensitivity grid and the IC score
type ScoreRequest struct {
	SensitivityRequest
	EBITDAGrowthVolatility *float64 `json:"ebitda_growth_volatility,omitempty"`
}
