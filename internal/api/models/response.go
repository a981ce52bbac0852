package models

import (
	"lbo-analyzer/internal/analysis"
	"lbo-analyzer/internal/data"
	"lbo-analyzer/internal/lbo"
)

// LBOResponse represents the response from an engine run
type LBOResponse struct {
	ID              string        `json:"id"`
	Status          string        `json:"status"`
	Cached          bool          `json:"cached"`
	Summary         lbo.Summary   `json:"summary"`
	KPIs            lbo.KPIs      `json:"kpis"`
	Display         DisplayKPIs   `json:"display"`
	RiskFlags       lbo.RiskFlags `json:"risk_flags"`
	ExitMethodology string        `json:"exit_methodology"`
	Result          *lbo.Result   `json:"result,omitempty"`
}

// DisplayKPIs are preformatted headline metrics ("22.9%", "2.81x", "€405.0M")
type DisplayKPIs struct {
	IRR                 string `json:"irr"`
	MOIC                string `json:"moic"`
	ExitEquityValue     string `json:"exit_equity_value"`
	EntryEV             string `json:"entry_ev"`
	MaxDebtToEBITDA     string `json:"max_debt_to_ebitda"`
	MinInterestCoverage string `json:"min_interest_coverage"`
	DebtPaydown         string `json:"debt_paydown"`
	EBITDACAGR          string `json:"ebitda_cagr"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation. Failed variations
// carry Error and no summary.
type ComparisonResult struct {
	Name    string       `json:"name"`
	Rank    int          `json:"rank,omitempty"`
	ID      string       `json:"id,omitempty"`
	Summary *lbo.Summary `json:"summary,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// SensitivityResponse carries the grid plus IRR and MOIC pivots
type SensitivityResponse struct {
	Grid    *lbo.Grid       `json:"grid"`
	IRR     [][]*float64    `json:"irr"`
	MOIC    [][]*float64    `json:"moic"`
	Summary lbo.GridSummary `json:"summary"`
}

// ScoreResponse represents an IC scoring run
type ScoreResponse struct {
	ID           string                 `json:"id"`
	Summary      lbo.Summary            `json:"summary"`
	Inputs       analysis.ScoringInputs `json:"scoring_inputs"`
	Score        analysis.ScoreCard     `json:"score"`
	Contribution analysis.Contribution  `json:"contribution"`
	Grid         lbo.GridSummary        `json:"grid_summary"`
}

// HistoryResponse is the analysis of an uploaded financials CSV
type HistoryResponse struct {
	Rows       []data.HistoricalRow           `json:"rows"`
	Columns    map[string]string              `json:"columns"`
	Warnings   []string                       `json:"warnings"`
	Latest     data.LatestMetrics             `json:"latest"`
	Summary    analysis.HistorySummary        `json:"summary"`
	Calibrated analysis.CalibratedAssumptions `json:"calibrated"`
}

// PresetInfo represents information about a deal preset
type PresetInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	EntryEBITDA float64 `json:"entry_ebitda"`
	Multiple    float64 `json:"entry_multiple"`
	Leverage    float64 `json:"debt_to_ebitda"`
	ExitMode    string  `json:"exit_mode"`
}

// ExitModeInfo represents information about an exit methodology
type ExitModeInfo struct {
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a deal parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "string"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidDeal    = "INVALID_DEAL"
	CodeInvalidCSV     = "INVALID_CSV"
	CodeEngineError    = "ENGINE_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)
