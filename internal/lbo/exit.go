package lbo

import (
	"fmt"
	"math"

	"lbo-analyzer/internal/model"
)

const (
	// GrowthAdjustedFloor is the minimum growth-adjusted exit multiple.
	GrowthAdjustedFloor = 5.0
	// BaselineGrowthPct is the revenue CAGR (in percentage points) at which
	// the growth-adjusted multiple equals the entry multiple.
	BaselineGrowthPct = 5.0
)

// ExitResult values the business at the end of the hold period.
// ExitEquityValue may be negative when debt exceeds exit EV.
type ExitResult struct {
	ExitEBITDA      float64 `json:"exit_ebitda"`
	ExitMultiple    float64 `json:"exit_multiple"`
	ExitEV          float64 `json:"exit_ev"`
	ExitDebt        float64 `json:"exit_debt"`
	ExitEquityValue float64 `json:"exit_equity_value"`
}

// ResolveExitMultiple maps the exit assumptions to a single multiple.
func ResolveExitMultiple(a model.ExitAssumptions) float64 {
	switch a.Mode {
	case model.ExitMeanReversion:
		// Interpolation weight is pinned at 1.0: the multiple has fully
		// reverted to the industry level by exit, whatever the hold period.
		const reversion = 1.0
		return a.EntryMultiple + (a.IndustryMultiple-a.EntryMultiple)*reversion
	case model.ExitGrowthAdjusted:
		growthPct := a.RevenueCAGR * 100
		adjustment := (growthPct - BaselineGrowthPct) * a.GrowthMultipleFactor
		return math.Max(GrowthAdjustedFloor, a.EntryMultiple+adjustment)
	default:
		return a.FixedExitMultiple
	}
}

// ValueExit applies the resolved multiple to exit-year EBITDA and nets off debt.
func ValueExit(a model.ExitAssumptions, finalEBITDA, finalDebt float64) ExitResult {
	multiple := ResolveExitMultiple(a)
	ev := finalEBITDA * multiple
	return ExitResult{
		ExitEBITDA:      finalEBITDA,
		ExitMultiple:    multiple,
		ExitEV:          ev,
		ExitDebt:        finalDebt,
		ExitEquityValue: ev - finalDebt,
	}
}

// MethodologyDescription is a one-line explanation of the exit multiple.
func MethodologyDescription(a model.ExitAssumptions) string {
	switch a.Mode {
	case model.ExitFixed:
		return fmt.Sprintf("Fixed exit multiple of %.1fx", ResolveExitMultiple(a))
	case model.ExitMeanReversion:
		return fmt.Sprintf("Mean reversion from %.1fx to %.1fx", a.EntryMultiple, a.IndustryMultiple)
	case model.ExitGrowthAdjusted:
		return fmt.Sprintf("Growth-adjusted multiple (base %.1fx, CAGR %.1f%%)", a.EntryMultiple, a.RevenueCAGR*100)
	}
	return "Unknown methodology"
}
