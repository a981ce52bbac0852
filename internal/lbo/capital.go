package lbo

import "lbo-analyzer/internal/model"

// SourcesUses is the entry funding table.
// By construction TotalSources == TotalUses.
type SourcesUses struct {
	EnterpriseValue float64 `json:"enterprise_value"`
	Debt            float64 `json:"debt"`
	Equity          float64 `json:"equity"`
	TransactionFees float64 `json:"transaction_fees"`
	FinancingFees   float64 `json:"financing_fees"`
	CashOnBS        float64 `json:"cash_on_bs"`
	TotalUses       float64 `json:"total_uses"`
	TotalSources    float64 `json:"total_sources"`
	DebtToEV        float64 `json:"debt_to_ev"`
	EquityToEV      float64 `json:"equity_to_ev"`
}

// ComputeSourcesUses derives entry EV, debt, fees and the equity check.
// Cash already on the balance sheet reduces the equity check.
func ComputeSourcesUses(in model.CapitalInputs) SourcesUses {
	ev := in.EntryEBITDA * in.EntryMultiple
	debt := in.EntryEBITDA * in.DebtToEBITDA

	transactionFees := ev * in.TransactionFeePct
	financingFees := debt * in.FinancingFeePct

	totalUses := ev + transactionFees + financingFees
	equity := totalUses - debt - in.CashOnBS

	su := SourcesUses{
		EnterpriseValue: ev,
		Debt:            debt,
		Equity:          equity,
		TransactionFees: transactionFees,
		FinancingFees:   financingFees,
		CashOnBS:        in.CashOnBS,
		TotalUses:       totalUses,
		TotalSources:    debt + equity + in.CashOnBS,
	}
	if ev > 0 {
		su.DebtToEV = debt / ev
		su.EquityToEV = equity / ev
	}
	return su
}

// LineItem is one labelled row of a sources & uses table.
type LineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// SourcesUsesTable is the presentation form: ordered items, totals last.
type SourcesUsesTable struct {
	Uses    []LineItem `json:"uses"`
	Sources []LineItem `json:"sources"`
}

func (su SourcesUses) Table() SourcesUsesTable {
	return SourcesUsesTable{
		Uses: []LineItem{
			{Label: "Enterprise Value", Amount: su.EnterpriseValue},
			{Label: "Transaction Fees", Amount: su.TransactionFees},
			{Label: "Financing Fees", Amount: su.FinancingFees},
			{Label: "Total Uses", Amount: su.TotalUses},
		},
		Sources: []LineItem{
			{Label: "Debt", Amount: su.Debt},
			{Label: "Equity", Amount: su.Equity},
			{Label: "Cash on Balance Sheet", Amount: su.CashOnBS},
			{Label: "Total Sources", Amount: su.TotalSources},
		},
	}
}
