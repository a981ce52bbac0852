package lbo

import (
	"errors"
	"fmt"
	"math"

	"lbo-analyzer/internal/model"
)

// Risk thresholds applied to the leverage table.
const (
	HighLeverageThreshold = 6.0 // debt / EBITDA above this in any year
	LowCoverageThreshold  = 1.5 // EBITDA / interest below this in any year
)

// ErrSeriesLength is returned when a per-year series does not match the schedule.
var ErrSeriesLength = errors.New("series length does not match debt schedule")

// DebtScheduleRow is one year of the debt waterfall.
type DebtScheduleRow struct {
	Year           int     `json:"year"`
	BeginningDebt  float64 `json:"beginning_debt"`
	Interest       float64 `json:"interest"`
	ScheduledAmort float64 `json:"scheduled_amort"`
	CashSweep      float64 `json:"cash_sweep"`
	TotalPaydown   float64 `json:"total_paydown"`
	EndingDebt     float64 `json:"ending_debt"`
}

// DebtSchedule is the full amortization table plus the assumptions that produced it.
type DebtSchedule struct {
	Assumptions model.DebtAssumptions
	Rows        []DebtScheduleRow
}

// LeverageRow holds the covenant-style ratios for one year.
type LeverageRow struct {
	Year             int     `json:"year"`
	BeginningDebt    float64 `json:"beginning_debt"`
	EBITDA           float64 `json:"ebitda"`
	DebtToEBITDA     float64 `json:"debt_to_ebitda"`
	InterestCoverage float64 `json:"interest_coverage"`
}

// RiskFlags summarizes the leverage table.
type RiskFlags struct {
	HighLeverage        bool    `json:"high_leverage"`
	LowCoverage         bool    `json:"low_coverage"`
	MaxDebtToEBITDA     float64 `json:"max_debt_to_ebitda"`
	MinInterestCoverage float64 `json:"min_interest_coverage"`
}

// BuildDebtSchedule runs the paydown waterfall over the FCF series.
//
// Per year, in this order:
//  1. beginning balance = prior ending balance
//  2. interest = beginning * rate
//  3. scheduled amortization = min(initial * amort pct, beginning)
//  4. cash sweep (if enabled and FCF > 0) = min(max(0, FCF - interest) * sweep pct, beginning - scheduled)
//  5. ending = max(0, beginning - scheduled - sweep)
func BuildDebtSchedule(a model.DebtAssumptions, fcf []float64) DebtSchedule {
	rows := make([]DebtScheduleRow, 0, len(fcf))

	balance := a.InitialDebt
	scheduledAmount := a.InitialDebt * a.AmortizationPct

	for i, cash := range fcf {
		beginning := balance
		interest := beginning * a.InterestRate
		scheduled := math.Min(scheduledAmount, beginning)

		sweep := 0.0
		if a.CashSweepEnabled && cash > 0 {
			sweep = math.Max(0, (cash-interest)*a.CashSweepPct)
			sweep = math.Min(sweep, beginning-scheduled)
		}

		paydown := scheduled + sweep
		balance = math.Max(0, beginning-paydown)

		rows = append(rows, DebtScheduleRow{
			Year:           i + 1,
			BeginningDebt:  beginning,
			Interest:       interest,
			ScheduledAmort: scheduled,
			CashSweep:      sweep,
			TotalPaydown:   paydown,
			EndingDebt:     balance,
		})
	}
	return DebtSchedule{Assumptions: a, Rows: rows}
}

// FinalDebt is the balance outstanding at exit.
func (s DebtSchedule) FinalDebt() float64 {
	if len(s.Rows) == 0 {
		return s.Assumptions.InitialDebt
	}
	return s.Rows[len(s.Rows)-1].EndingDebt
}

// TotalInterest is cumulative interest over the hold period.
func (s DebtSchedule) TotalInterest() float64 {
	total := 0.0
	for _, r := range s.Rows {
		total += r.Interest
	}
	return total
}

// LeverageRatios computes debt/EBITDA on the beginning-of-year balance and
// EBITDA / interest coverage. A year with zero interest divides by 1.0 instead,
// so coverage stays finite for the risk thresholds.
func (s DebtSchedule) LeverageRatios(ebitda []float64) ([]LeverageRow, error) {
	if len(ebitda) != len(s.Rows) {
		return nil, fmt.Errorf("%w: %d ebitda values for %d years", ErrSeriesLength, len(ebitda), len(s.Rows))
	}
	out := make([]LeverageRow, len(s.Rows))
	for i, r := range s.Rows {
		interest := r.Interest
		if interest == 0 {
			interest = 1.0
		}
		out[i] = LeverageRow{
			Year:             r.Year,
			BeginningDebt:    r.BeginningDebt,
			EBITDA:           ebitda[i],
			DebtToEBITDA:     r.BeginningDebt / ebitda[i],
			InterestCoverage: ebitda[i] / interest,
		}
	}
	return out, nil
}

// RiskFlags evaluates the leverage table against the covenant thresholds.
func (s DebtSchedule) RiskFlags(ebitda []float64) (RiskFlags, error) {
	rows, err := s.LeverageRatios(ebitda)
	if err != nil {
		return RiskFlags{}, err
	}
	return riskFlagsFrom(rows), nil
}

func riskFlagsFrom(rows []LeverageRow) RiskFlags {
	flags := RiskFlags{}
	if len(rows) == 0 {
		return flags
	}
	flags.MaxDebtToEBITDA = math.Inf(-1)
	flags.MinInterestCoverage = math.Inf(1)
	for _, r := range rows {
		if r.DebtToEBITDA > HighLeverageThreshold {
			flags.HighLeverage = true
		}
		if r.InterestCoverage < LowCoverageThreshold {
			flags.LowCoverage = true
		}
		flags.MaxDebtToEBITDA = math.Max(flags.MaxDebtToEBITDA, r.DebtToEBITDA)
		flags.MinInterestCoverage = math.Min(flags.MinInterestCoverage, r.InterestCoverage)
	}
	return flags
}
