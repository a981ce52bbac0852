package analysis

import (
	"lbo-analyzer/internal/format"
	"lbo-analyzer/internal/lbo"
)

// Contribution splits equity value creation into return drivers, in percent
// of the total gain. The three shares sum to 100 up to rounding; all are zero
// when equity value did not grow.
type Contribution struct {
	EBITDAGrowth      float64 `json:"ebitda_growth"`
	MultipleExpansion float64 `json:"multiple_expansion"`
	Deleveraging      float64 `json:"deleveraging"`
}

// ContributionInputs are entry and exit values of a deal, in millions.
type ContributionInputs struct {
	EntryEV       float64
	ExitEV        float64
	EntryDebt     float64
	ExitDebt      float64
	EntryEBITDA   float64
	ExitEBITDA    float64
	EntryMultiple float64
}

// ContributionFromResult reads entry and exit values off an engine run.
func ContributionFromResult(res *lbo.Result) Contribution {
	return Contribute(ContributionInputs{
		EntryEV:       res.SourcesUses.EnterpriseValue,
		ExitEV:        res.ExitResults.ExitEV,
		EntryDebt:     res.SourcesUses.Debt,
		ExitDebt:      res.ExitResults.ExitDebt,
		EntryEBITDA:   res.Inputs.Capital.EntryEBITDA,
		ExitEBITDA:    res.ExitResults.ExitEBITDA,
		EntryMultiple: res.Inputs.Capital.EntryMultiple,
	})
}

// Contribute attributes the equity gain (exit EV - exit debt) - (entry EV - entry debt):
// EBITDA growth is valued at the entry multiple, multiple expansion is the rest
// of the exit EV, deleveraging is debt repaid.
func Contribute(in ContributionInputs) Contribution {
	gain := (in.ExitEV - in.ExitDebt) - (in.EntryEV - in.EntryDebt)
	if gain <= 0 {
		return Contribution{}
	}
	constantMultipleEV := in.ExitEBITDA * in.EntryMultiple
	growth := (constantMultipleEV - in.EntryEV) / gain * 100
	expansion := (in.ExitEV - constantMultipleEV) / gain * 100
	delev := (in.EntryDebt - in.ExitDebt) / gain * 100

	if total := growth + expansion + delev; total != 0 {
		growth = growth / total * 100
		expansion = expansion / total * 100
		delev = delev / total * 100
	}
	return Contribution{
		EBITDAGrowth:      format.Round(growth, 1),
		MultipleExpansion: format.Round(expansion, 1),
		Deleveraging:      format.Round(delev, 1),
	}
}
