package lbo

import "lbo-analyzer/internal/model"

// Result is the output bundle of one engine run.
// It is never mutated after Run returns; callers that need to edit a copy use Clone.
// The JSON field names are the contract consumed by scoring, reporting and charts.
type Result struct {
	Inputs model.Inputs `json:"inputs"`

	SourcesUses      SourcesUses      `json:"sources_uses"`
	SourcesUsesTable SourcesUsesTable `json:"sources_uses_table"`

	OperatingProjection []ProjectionRow  `json:"operating_projection"`
	OperatingSummary    OperatingSummary `json:"operating_summary"`

	DebtSchedule   []DebtScheduleRow `json:"debt_schedule"`
	LeverageRatios []LeverageRow     `json:"leverage_ratios"`
	RiskFlags      RiskFlags         `json:"risk_flags"`

	ExitResults     ExitResult `json:"exit_results"`
	ExitMethodology string     `json:"exit_methodology"`

	EquityCashflows []float64 `json:"equity_cashflows"`
	IRR             *float64  `json:"irr"`  // nil when no real root exists
	MOIC            *float64  `json:"moic"` // nil when equity invested <= 0
	EquityInvested  float64   `json:"equity_invested"`
	ExitEquityValue float64   `json:"exit_equity_value"`
	HoldPeriod      int       `json:"hold_period"`
}

// Summary holds the headline metrics of a run.
type Summary struct {
	EntryEV         float64  `json:"entry_ev"`
	EntryEBITDA     float64  `json:"entry_ebitda"`
	EntryMultiple   float64  `json:"entry_multiple"`
	Debt            float64  `json:"debt"`
	Equity          float64  `json:"equity"`
	ExitEV          float64  `json:"exit_ev"`
	ExitEBITDA      float64  `json:"exit_ebitda"`
	ExitMultiple    float64  `json:"exit_multiple"`
	ExitDebt        float64  `json:"exit_debt"`
	ExitEquityValue float64  `json:"exit_equity_value"`
	IRR             *float64 `json:"irr"`
	MOIC            *float64 `json:"moic"`
	HoldPeriod      int      `json:"hold_period"`
}

// KPIs is the compact set of metrics shown next to a deal.
type KPIs struct {
	IRR                 *float64 `json:"irr"`
	MOIC                *float64 `json:"moic"`
	ExitEquityValue     float64  `json:"exit_equity_value"`
	EntryEV             float64  `json:"entry_ev"`
	MaxDebtToEBITDA     float64  `json:"max_debt_to_ebitda"`
	MinInterestCoverage float64  `json:"min_interest_coverage"`
	DebtPaydownPct      float64  `json:"debt_paydown_pct"`
	EBITDACAGR          *float64 `json:"ebitda_cagr"`
}

func (r *Result) Summary() Summary {
	return Summary{
		EntryEV:         r.SourcesUses.EnterpriseValue,
		EntryEBITDA:     r.Inputs.Capital.EntryEBITDA,
		EntryMultiple:   r.Inputs.Capital.EntryMultiple,
		Debt:            r.SourcesUses.Debt,
		Equity:          r.SourcesUses.Equity,
		ExitEV:          r.ExitResults.ExitEV,
		ExitEBITDA:      r.ExitResults.ExitEBITDA,
		ExitMultiple:    r.ExitResults.ExitMultiple,
		ExitDebt:        r.ExitResults.ExitDebt,
		ExitEquityValue: r.ExitEquityValue,
		IRR:             copyPtr(r.IRR),
		MOIC:            copyPtr(r.MOIC),
		HoldPeriod:      r.HoldPeriod,
	}
}

// KPIs derives debt paydown and EBITDA CAGR on top of the headline numbers.
// EBITDA CAGR runs first to last projected year over n = hold period.
func (r *Result) KPIs() KPIs {
	k := KPIs{
		IRR:                 copyPtr(r.IRR),
		MOIC:                copyPtr(r.MOIC),
		ExitEquityValue:     r.ExitEquityValue,
		EntryEV:             r.SourcesUses.EnterpriseValue,
		MaxDebtToEBITDA:     r.RiskFlags.MaxDebtToEBITDA,
		MinInterestCoverage: r.RiskFlags.MinInterestCoverage,
	}
	if initial := r.SourcesUses.Debt; initial > 0 {
		k.DebtPaydownPct = (initial - r.ExitResults.ExitDebt) / initial
	}
	if n := len(r.OperatingProjection); n >= 2 {
		first, last := r.OperatingProjection[0].EBITDA, r.OperatingProjection[n-1].EBITDA
		if cagr, err := CAGR(first, last, n); err == nil {
			k.EBITDACAGR = &cagr
		}
	}
	return k
}

// Clone returns a deep copy that shares no slices or pointers with r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Inputs = r.Inputs.Clone()
	c.SourcesUsesTable = SourcesUsesTable{
		Uses:    append([]LineItem(nil), r.SourcesUsesTable.Uses...),
		Sources: append([]LineItem(nil), r.SourcesUsesTable.Sources...),
	}
	c.OperatingProjection = append([]ProjectionRow(nil), r.OperatingProjection...)
	c.OperatingSummary.RevenueCAGR = copyPtr(r.OperatingSummary.RevenueCAGR)
	c.OperatingSummary.AvgFCFConversion = copyPtr(r.OperatingSummary.AvgFCFConversion)
	c.DebtSchedule = append([]DebtScheduleRow(nil), r.DebtSchedule...)
	c.LeverageRatios = append([]LeverageRow(nil), r.LeverageRatios...)
	c.EquityCashflows = append([]float64(nil), r.EquityCashflows...)
	c.IRR = copyPtr(r.IRR)
	c.MOIC = copyPtr(r.MOIC)
	return &c
}

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
