package lbo

import (
	"errors"
	"math"

	"lbo-analyzer/internal/model"
)

// ErrUndefinedCAGR is returned when a growth rate cannot be computed
// (non-positive start or end value, or fewer than two periods).
var ErrUndefinedCAGR = errors.New("cagr undefined")

// ProjectionRow is one projected year. Year is 1-indexed.
// FCF = NOPAT + DA - Capex - ChangeInNWC.
type ProjectionRow struct {
	Year        int     `json:"year"`
	Revenue     float64 `json:"revenue"`
	EBITDA      float64 `json:"ebitda"`
	DA          float64 `json:"da"`
	EBIT        float64 `json:"ebit"`
	Taxes       float64 `json:"taxes"`
	NOPAT       float64 `json:"nopat"`
	Capex       float64 `json:"capex"`
	NWC         float64 `json:"nwc"`
	ChangeInNWC float64 `json:"change_in_nwc"`
	FCF         float64 `json:"fcf"`
}

// Projection is the operating model output.
type Projection struct {
	Rows []ProjectionRow
}

// OperatingSummary aggregates the projection window.
// Nil pointers mark metrics that are undefined for this projection.
type OperatingSummary struct {
	RevenueCAGR      *float64 `json:"revenue_cagr"`
	AvgEBITDAMargin  float64  `json:"avg_ebitda_margin"`
	AvgFCFConversion *float64 `json:"avg_fcf_conversion"`
	TotalFCF         float64  `json:"total_fcf"`
	FinalRevenue     float64  `json:"final_revenue"`
	FinalEBITDA      float64  `json:"final_ebitda"`
}

// Project builds the year-by-year operating projection.
// Revenue compounds from the base year; every other line is derived from
// that year's revenue alone. Taxes are floored at zero (no loss carryforward).
func Project(a model.OperatingAssumptions) Projection {
	rows := make([]ProjectionRow, 0, len(a.RevenueGrowthRates))

	// Base-year NWC for the first change.
	prevNWC := a.BaseRevenue * a.NWCPctRevenue
	revenue := a.BaseRevenue

	for i, g := range a.RevenueGrowthRates {
		revenue = revenue * (1 + g)

		ebitda := revenue * a.EBITDAMargin
		da := revenue * a.DAPctRevenue
		ebit := ebitda - da
		taxes := math.Max(0, ebit*a.TaxRate)
		nopat := ebit - taxes
		capex := revenue * a.CapexPctRevenue

		nwc := revenue * a.NWCPctRevenue
		changeInNWC := nwc - prevNWC
		prevNWC = nwc

		rows = append(rows, ProjectionRow{
			Year:        i + 1,
			Revenue:     revenue,
			EBITDA:      ebitda,
			DA:          da,
			EBIT:        ebit,
			Taxes:       taxes,
			NOPAT:       nopat,
			Capex:       capex,
			NWC:         nwc,
			ChangeInNWC: changeInNWC,
			FCF:         nopat + da - capex - changeInNWC,
		})
	}
	return Projection{Rows: rows}
}

func (p Projection) Years() int { return len(p.Rows) }

// FinalEBITDA is the exit-year EBITDA (0 for an empty projection).
func (p Projection) FinalEBITDA() float64 {
	if len(p.Rows) == 0 {
		return 0
	}
	return p.Rows[len(p.Rows)-1].EBITDA
}

func (p Projection) FCFSeries() []float64 {
	out := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.FCF
	}
	return out
}

func (p Projection) EBITDASeries() []float64 {
	out := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.EBITDA
	}
	return out
}

func (p Projection) RevenueSeries() []float64 {
	out := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.Revenue
	}
	return out
}

// Summary computes window-level metrics.
// Revenue CAGR runs from the first to the last projected year over n = Years() periods.
func (p Projection) Summary() OperatingSummary {
	s := OperatingSummary{}
	if len(p.Rows) == 0 {
		return s
	}
	var sumRev, sumEBITDA, sumFCF float64
	for _, r := range p.Rows {
		sumRev += r.Revenue
		sumEBITDA += r.EBITDA
		sumFCF += r.FCF
	}
	last := p.Rows[len(p.Rows)-1]
	s.TotalFCF = sumFCF
	s.FinalRevenue = last.Revenue
	s.FinalEBITDA = last.EBITDA
	if sumRev != 0 {
		s.AvgEBITDAMargin = sumEBITDA / sumRev
	}
	if sumEBITDA != 0 {
		conv := sumFCF / sumEBITDA
		s.AvgFCFConversion = &conv
	}
	if len(p.Rows) >= 2 {
		if cagr, err := CAGR(p.Rows[0].Revenue, last.Revenue, len(p.Rows)); err == nil {
			s.RevenueCAGR = &cagr
		}
	}
	return s
}

// CAGR returns (end/start)^(1/periods) - 1.
func CAGR(start, end float64, periods int) (float64, error) {
	if periods <= 0 || start <= 0 || end <= 0 {
		return 0, ErrUndefinedCAGR
	}
	return math.Pow(end/start, 1/float64(periods)) - 1, nil
}
