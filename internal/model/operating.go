package model

import "fmt"

// MaxHoldPeriod bounds the projection window.
const MaxHoldPeriod = 30

// OperatingAssumptions drive the revenue-to-FCF projection.
// All rates are fractions (0.05 = 5%). The hold period is len(RevenueGrowthRates).
type OperatingAssumptions struct {
	BaseRevenue        float64   `json:"base_revenue" validate:"gt=0"`
	RevenueGrowthRates []float64 `json:"revenue_growth_rates" validate:"min=1,max=30,dive,gt=-1,lte=5"`
	EBITDAMargin       float64   `json:"ebitda_margin" validate:"gt=0,lte=1"`
	TaxRate            float64   `json:"tax_rate" validate:"gte=0,lt=1"`
	DAPctRevenue       float64   `json:"da_pct_revenue" validate:"gte=0,lte=1"`
	CapexPctRevenue    float64   `json:"capex_pct_revenue" validate:"gte=0,lte=1"`
	NWCPctRevenue      float64   `json:"nwc_pct_revenue" validate:"gte=0,lte=1"`
}

func NewOperatingAssumptions(baseRevenue float64, growth []float64, ebitdaMargin, taxRate, daPct, capexPct, nwcPct float64) (OperatingAssumptions, error) {
	o := OperatingAssumptions{
		BaseRevenue:        baseRevenue,
		RevenueGrowthRates: append([]float64(nil), growth...),
		EBITDAMargin:       ebitdaMargin,
		TaxRate:            taxRate,
		DAPctRevenue:       daPct,
		CapexPctRevenue:    capexPct,
		NWCPctRevenue:      nwcPct,
	}
	if err := o.Validate(); err != nil {
		return OperatingAssumptions{}, err
	}
	return o, nil
}

// FlatGrowth repeats one growth rate for every projection year.
func FlatGrowth(rate float64, years int) []float64 {
	if years < 0 {
		years = 0
	}
	out := make([]float64, years)
	for i := range out {
		out[i] = rate
	}
	return out
}

func (o OperatingAssumptions) HoldPeriod() int { return len(o.RevenueGrowthRates) }

func (o OperatingAssumptions) Validate() error {
	fields := map[string]float64{
		"base_revenue":      o.BaseRevenue,
		"ebitda_margin":     o.EBITDAMargin,
		"tax_rate":          o.TaxRate,
		"da_pct_revenue":    o.DAPctRevenue,
		"capex_pct_revenue": o.CapexPctRevenue,
		"nwc_pct_revenue":   o.NWCPctRevenue,
	}
	for i, g := range o.RevenueGrowthRates {
		fields[fmt.Sprintf("revenue_growth_rates[%d]", i)] = g
	}
	if err := checkFinite(fields); err != nil {
		return err
	}
	return validateStruct(o)
}

// Clone returns a copy that does not share the growth-rate slice.
func (o OperatingAssumptions) Clone() OperatingAssumptions {
	o.RevenueGrowthRates = append([]float64(nil), o.RevenueGrowthRates...)
	return o
}
