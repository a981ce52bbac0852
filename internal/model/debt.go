package model

// DebtAssumptions describe the single senior tranche.
// InitialDebt is overwritten by the engine with the sources & uses debt amount.
type DebtAssumptions struct {
	InitialDebt      float64 `json:"initial_debt" validate:"gte=0"`
	InterestRate     float64 `json:"interest_rate" validate:"gte=0,lte=1"`
	AmortizationPct  float64 `json:"amortization_pct" validate:"gte=0,lte=1"` // of initial debt, per year
	CashSweepEnabled bool    `json:"cash_sweep_enabled"`
	CashSweepPct     float64 `json:"cash_sweep_pct" validate:"gte=0,lte=1"` // of (FCF - interest)
}

func NewDebtAssumptions(interestRate, amortizationPct float64, cashSweepEnabled bool, cashSweepPct float64) (DebtAssumptions, error) {
	d := DebtAssumptions{
		InterestRate:     interestRate,
		AmortizationPct:  amortizationPct,
		CashSweepEnabled: cashSweepEnabled,
		CashSweepPct:     cashSweepPct,
	}
	if err := d.Validate(); err != nil {
		return DebtAssumptions{}, err
	}
	return d, nil
}

func (d DebtAssumptions) Validate() error {
	if err := checkFinite(map[string]float64{
		"initial_debt":     d.InitialDebt,
		"interest_rate":    d.InterestRate,
		"amortization_pct": d.AmortizationPct,
		"cash_sweep_pct":   d.CashSweepPct,
	}); err != nil {
		return err
	}
	return validateStruct(d)
}
