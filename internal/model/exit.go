package model

import (
	"fmt"
	"strings"
)

// ExitMode selects the exit valuation methodology.
// Keep these values stable; they appear in configs, API payloads and CSV output.
type ExitMode string

const (
	ExitFixed          ExitMode = "fixed"
	ExitMeanReversion  ExitMode = "mean_reversion"
	ExitGrowthAdjusted ExitMode = "growth_adjusted"
)

// ExitModes lists every supported mode in display order.
var ExitModes = []ExitMode{ExitFixed, ExitMeanReversion, ExitGrowthAdjusted}

func ParseExitMode(s string) (ExitMode, error) {
	m := ExitMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ExitFixed, ExitMeanReversion, ExitGrowthAdjusted:
		return m, nil
	case "":
		return ExitFixed, nil
	}
	return "", invalidf("unknown exit mode %q", s)
}

// Exit defaults.
const (
	DefaultExitMultiple         = 10.0
	DefaultGrowthMultipleFactor = 0.5
)

// ExitAssumptions parameterize the exit multiple.
// RevenueCAGR is filled in by the engine from the operating projection.
type ExitAssumptions struct {
	Mode                 ExitMode `json:"exit_mode" validate:"oneof=fixed mean_reversion growth_adjusted"`
	FixedExitMultiple    float64  `json:"fixed_exit_multiple"`
	EntryMultiple        float64  `json:"entry_multiple" validate:"gte=1"`
	IndustryMultiple     float64  `json:"industry_multiple"`
	HoldPeriod           int      `json:"hold_period" validate:"gte=0"`
	RevenueCAGR          float64  `json:"revenue_cagr"`
	GrowthMultipleFactor float64  `json:"growth_multiple_factor" validate:"gte=0,lte=10"` // x of multiple per 1pt of growth
}

func NewExitAssumptions(mode ExitMode, fixedExitMultiple, entryMultiple, industryMultiple float64, holdPeriod int, growthFactor float64) (ExitAssumptions, error) {
	e := ExitAssumptions{
		Mode:                 mode,
		FixedExitMultiple:    fixedExitMultiple,
		EntryMultiple:        entryMultiple,
		IndustryMultiple:     industryMultiple,
		HoldPeriod:           holdPeriod,
		GrowthMultipleFactor: growthFactor,
	}
	if err := e.Validate(); err != nil {
		return ExitAssumptions{}, err
	}
	return e, nil
}

func (e ExitAssumptions) Validate() error {
	if err := checkFinite(map[string]float64{
		"fixed_exit_multiple":    e.FixedExitMultiple,
		"entry_multiple":         e.EntryMultiple,
		"industry_multiple":      e.IndustryMultiple,
		"revenue_cagr":           e.RevenueCAGR,
		"growth_multiple_factor": e.GrowthMultipleFactor,
	}); err != nil {
		return err
	}
	if err := validateStruct(e); err != nil {
		return err
	}
	// Mode-specific multiples only matter when that mode is selected.
	switch e.Mode {
	case ExitFixed:
		if e.FixedExitMultiple < 1 {
			return invalidf("fixed_exit_multiple must be >= 1 for %s exit", e.Mode)
		}
	case ExitMeanReversion:
		if e.IndustryMultiple < 1 {
			return invalidf("industry_multiple must be >= 1 for %s exit", e.Mode)
		}
	}
	return nil
}

func (m ExitMode) String() string { return string(m) }

// Label is a short human-readable name.
func (m ExitMode) Label() string {
	switch m {
	case ExitFixed:
		return "Fixed multiple"
	case ExitMeanReversion:
		return "Mean reversion"
	case ExitGrowthAdjusted:
		return "Growth-adjusted"
	}
	return fmt.Sprintf("unknown(%s)", string(m))
}
