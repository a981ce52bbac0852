package model

// LegacyParams is the older "EV + debt %" parameterization of a deal.
// Zero values pick the historical defaults (8% interest, 5% growth, 5 years, 8.0x exit).
type LegacyParams struct {
	EnterpriseValue  float64
	EBITDA           float64
	DebtPercentage   float64 // debt / EV
	InterestRate     float64
	EBITDAGrowthRate float64
	Years            int
	ExitMultiple     float64
}

const (
	legacyInterestRate   = 0.08
	legacyGrowthRate     = 0.05
	legacyYears          = 5
	legacyExitMultiple   = 8.0
	legacyRepaymentShare = 0.5
)

// FromLegacy maps the legacy parameterization onto Inputs.
//
// EBITDA is projected directly: base revenue equals EBITDA at a 100% margin with
// no taxes, D&A, capex or working capital, so FCF equals EBITDA. Half of
// (FCF - interest) sweeps the debt each year and the exit uses a fixed multiple.
// Unlike the legacy model, a negative sweep never adds debt back.
func FromLegacy(p LegacyParams) (Inputs, error) {
	if p.EBITDA <= 0 {
		return Inputs{}, invalidf("legacy ebitda must be > 0")
	}
	if p.DebtPercentage < 0 || p.DebtPercentage > 1 {
		return Inputs{}, invalidf("legacy debt_percentage must be within [0, 1]")
	}
	if p.InterestRate == 0 {
		p.InterestRate = legacyInterestRate
	}
	if p.Years == 0 {
		p.Years = legacyYears
	}
	if p.ExitMultiple == 0 {
		p.ExitMultiple = legacyExitMultiple
	}
	// A zero growth rate is indistinguishable from "unset"; callers wanting 0% pass a tiny epsilon.
	if p.EBITDAGrowthRate == 0 {
		p.EBITDAGrowthRate = legacyGrowthRate
	}

	entryMultiple := p.EnterpriseValue / p.EBITDA
	debt := p.EnterpriseValue * p.DebtPercentage

	return NewInputs(
		CapitalInputs{
			EntryEBITDA:   p.EBITDA,
			EntryMultiple: entryMultiple,
			DebtToEBITDA:  debt / p.EBITDA,
		},
		OperatingAssumptions{
			BaseRevenue:        p.EBITDA,
			RevenueGrowthRates: FlatGrowth(p.EBITDAGrowthRate, p.Years),
			EBITDAMargin:       1.0,
		},
		DebtAssumptions{
			InterestRate:     p.InterestRate,
			CashSweepEnabled: true,
			CashSweepPct:     legacyRepaymentShare,
		},
		ExitAssumptions{
			Mode:                 ExitFixed,
			FixedExitMultiple:    p.ExitMultiple,
			EntryMultiple:        entryMultiple,
			IndustryMultiple:     entryMultiple,
			HoldPeriod:           p.Years,
			GrowthMultipleFactor: DefaultGrowthMultipleFactor,
		},
	)
}
