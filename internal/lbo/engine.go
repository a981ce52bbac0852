package lbo

import (
	"errors"
	"fmt"

	"lbo-analyzer/internal/model"
)

// ErrInvalidInputs wraps every input rejection from Run.
var ErrInvalidInputs = errors.New("invalid inputs")

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run executes one full LBO: sources & uses, operating projection, debt
// schedule, exit valuation and returns. The inputs are not modified.
func (e *Engine) Run(in model.Inputs) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInputs, err)
	}
	in = in.Clone()

	su := ComputeSourcesUses(in.Capital)

	proj := Project(in.Operating)
	opSummary := proj.Summary()
	fcf := proj.FCFSeries()
	ebitda := proj.EBITDASeries()

	debtAssumptions := in.Debt
	debtAssumptions.InitialDebt = su.Debt
	schedule := BuildDebtSchedule(debtAssumptions, fcf)

	leverage, err := schedule.LeverageRatios(ebitda)
	if err != nil {
		return nil, fmt.Errorf("leverage ratios: %w", err)
	}
	flags := riskFlagsFrom(leverage)

	exitAssumptions := in.Exit
	exitAssumptions.HoldPeriod = proj.Years()
	if opSummary.RevenueCAGR != nil {
		exitAssumptions.RevenueCAGR = *opSummary.RevenueCAGR
	} else {
		exitAssumptions.RevenueCAGR = 0
		if exitAssumptions.Mode == model.ExitGrowthAdjusted {
			return nil, fmt.Errorf("growth-adjusted exit over %d year(s): %w", proj.Years(), ErrUndefinedCAGR)
		}
	}
	exit := ValueExit(exitAssumptions, proj.FinalEBITDA(), schedule.FinalDebt())

	equity := su.Equity
	cashflows := equityCashflows(equity, exit.ExitEquityValue, proj.Years())

	res := &Result{
		Inputs: model.Inputs{
			Capital:   in.Capital,
			Operating: in.Operating,
			Debt:      debtAssumptions,
			Exit:      exitAssumptions,
		},
		SourcesUses:         su,
		SourcesUsesTable:    su.Table(),
		OperatingProjection: proj.Rows,
		OperatingSummary:    opSummary,
		DebtSchedule:        schedule.Rows,
		LeverageRatios:      leverage,
		RiskFlags:           flags,
		ExitResults:         exit,
		ExitMethodology:     MethodologyDescription(exitAssumptions),
		EquityCashflows:     cashflows,
		EquityInvested:      equity,
		ExitEquityValue:     exit.ExitEquityValue,
		HoldPeriod:          proj.Years(),
	}
	if irr, ok := IRR(cashflows); ok {
		res.IRR = &irr
	}
	if equity > 0 {
		moic := exit.ExitEquityValue / equity
		res.MOIC = &moic
	}
	return res, nil
}

// equityCashflows is [-equity, 0, ..., 0, +exit] with years+1 entries.
// No interim distributions are modelled.
func equityCashflows(equity, exitEquity float64, years int) []float64 {
	out := make([]float64, years+1)
	out[0] = -equity
	out[years] += exitEquity
	return out
}
