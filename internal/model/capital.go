package model

// CapitalInputs defines the entry transaction.
// Units:
// - EntryEBITDA, CashOnBS: currency (millions in the sample data)
// - EntryMultiple, DebtToEBITDA: x EBITDA
// - TransactionFeePct: fraction of enterprise value
// - FinancingFeePct: fraction of debt raised
type CapitalInputs struct {
	EntryEBITDA       float64 `json:"entry_ebitda" validate:"gt=0"`
	EntryMultiple     float64 `json:"entry_multiple" validate:"gte=1"`
	DebtToEBITDA      float64 `json:"debt_to_ebitda" validate:"gte=0"`
	TransactionFeePct float64 `json:"transaction_fee_pct" validate:"gte=0,lte=1"`
	FinancingFeePct   float64 `json:"financing_fee_pct" validate:"gte=0,lte=1"`
	CashOnBS          float64 `json:"cash_on_bs" validate:"gte=0"`
}

// Fee defaults used when a deal does not specify them.
const (
	DefaultTransactionFeePct = 0.02
	DefaultFinancingFeePct   = 0.03
)

func NewCapitalInputs(entryEBITDA, entryMultiple, debtToEBITDA, transactionFeePct, financingFeePct, cashOnBS float64) (CapitalInputs, error) {
	c := CapitalInputs{
		EntryEBITDA:       entryEBITDA,
		EntryMultiple:     entryMultiple,
		DebtToEBITDA:      debtToEBITDA,
		TransactionFeePct: transactionFeePct,
		FinancingFeePct:   financingFeePct,
		CashOnBS:          cashOnBS,
	}
	if err := c.Validate(); err != nil {
		return CapitalInputs{}, err
	}
	return c, nil
}

func (c CapitalInputs) Validate() error {
	if err := checkFinite(map[string]float64{
		"entry_ebitda":        c.EntryEBITDA,
		"entry_multiple":      c.EntryMultiple,
		"debt_to_ebitda":      c.DebtToEBITDA,
		"transaction_fee_pct": c.TransactionFeePct,
		"financing_fee_pct":   c.FinancingFeePct,
		"cash_on_bs":          c.CashOnBS,
	}); err != nil {
		return err
	}
	return validateStruct(c)
}
