package analysis

import (
	"math"

	"lbo-analyzer/internal/format"
	"lbo-analyzer/internal/lbo"
)

// ScoringInputs are the deal metrics the investment-committee score reads.
// Rates are fractions. Nil downside or volatility scores as neutral.
type ScoringInputs struct {
	BaseCaseIRR            float64  `json:"base_case_irr"`
	MinSensitivityIRR      *float64 `json:"min_sensitivity_irr"`
	MaxDebtToEBITDA        float64  `json:"max_debt_to_ebitda"`
	MinInterestCoverage    float64  `json:"min_interest_coverage"`
	EBITDAGrowthVolatility *float64 `json:"ebitda_growth_volatility"`
}

// Component weights; they sum to 1.
const (
	WeightIRR       = 0.30
	WeightDownside  = 0.25
	WeightLeverage  = 0.20
	WeightCoverage  = 0.15
	WeightStability = 0.10
)

// Component names as reported in ScoreCard.Components.
const (
	ComponentIRR       = "IRR Attractiveness"
	ComponentDownside  = "Downside Protection"
	ComponentLeverage  = "Leverage Risk"
	ComponentCoverage  = "Coverage Safety"
	ComponentStability = "Growth Stability"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

type ComponentScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"` // 0-100, one decimal
	Weight float64 `json:"weight"`
}

// ScoreCard is the 0-100 investment-committee score of a deal.
type ScoreCard struct {
	TotalScore     int              `json:"total_score"`
	RiskLevel      RiskLevel        `json:"risk_level"`
	Components     []ComponentScore `json:"component_scores"`
	Interpretation string           `json:"interpretation"`
}

// Score weighs return, downside, leverage, coverage and stability scores.
func Score(in ScoringInputs) ScoreCard {
	raw := []struct {
		name   string
		score  float64
		weight float64
	}{
		{ComponentIRR, scoreIRR(in.BaseCaseIRR), WeightIRR},
		{ComponentDownside, scoreDownside(in.MinSensitivityIRR), WeightDownside},
		{ComponentLeverage, scoreLeverage(in.MaxDebtToEBITDA), WeightLeverage},
		{ComponentCoverage, scoreCoverage(in.MinInterestCoverage), WeightCoverage},
		{ComponentStability, scoreStability(in.EBITDAGrowthVolatility), WeightStability},
	}

	total := 0.0
	card := ScoreCard{Components: make([]ComponentScore, 0, len(raw))}
	for _, c := range raw {
		total += c.score * c.weight
		card.Components = append(card.Components, ComponentScore{
			Name:   c.name,
			Score:  format.Round(c.score, 1),
			Weight: c.weight,
		})
	}
	card.TotalScore = int(format.Round(total, 0))
	card.RiskLevel = riskLevel(card.TotalScore)
	card.Interpretation = interpret(card.TotalScore)
	return card
}

// Component returns the named component score, or false.
func (c ScoreCard) Component(name string) (float64, bool) {
	for _, s := range c.Components {
		if s.Name == name {
			return s.Score, true
		}
	}
	return 0, false
}

// ScoringInputsFromResult reads scoring inputs off an engine run.
// The worst grid IRR is the downside; without a grid the base IRR is used.
// A missing base IRR scores as 0%.
func ScoringInputsFromResult(res *lbo.Result, grid *lbo.Grid, volatility *float64) ScoringInputs {
	in := ScoringInputs{
		MaxDebtToEBITDA:        res.RiskFlags.MaxDebtToEBITDA,
		MinInterestCoverage:    res.RiskFlags.MinInterestCoverage,
		EBITDAGrowthVolatility: volatility,
	}
	if res.IRR != nil {
		in.BaseCaseIRR = *res.IRR
		in.MinSensitivityIRR = ptr(*res.IRR)
	}
	if grid != nil {
		if lo := grid.Summary().IRR.Min; lo != nil {
			in.MinSensitivityIRR = ptr(*lo)
		}
	}
	return in
}

// scoreIRR: <15% poor, 15-20 fair, 20-25 good, 25-30 strong, >30 exceptional.
func scoreIRR(irr float64) float64 {
	pct := irr * 100
	switch {
	case pct < 15:
		return math.Max(0, pct/15*40)
	case pct < 20:
		return 40 + (pct-15)/5*20
	case pct < 25:
		return 60 + (pct-20)/5*20
	case pct < 30:
		return 80 + (pct-25)/5*15
	default:
		return math.Min(100, 95+(pct-30)/10*5)
	}
}

func scoreDownside(minIRR *float64) float64 {
	if minIRR == nil {
		return 50
	}
	pct := *minIRR * 100
	switch {
	case pct < 10:
		return math.Max(0, pct/10*40)
	case pct < 15:
		return 40 + (pct-10)/5*30
	default:
		return math.Min(100, 70+(pct-15)/10*30)
	}
}

func scoreLeverage(lev float64) float64 {
	switch {
	case lev < 4:
		return 80 + (4-lev)/4*20
	case lev < 5:
		return 60 + (5-lev)*20
	case lev < 6:
		return 40 + (6-lev)*20
	default:
		return math.Max(0, 40-(lev-6)*10)
	}
}

func scoreCoverage(cov float64) float64 {
	switch {
	case cov < 1.0:
		return math.Max(0, cov*20)
	case cov < 1.5:
		return 20 + (cov-1.0)/0.5*30
	case cov < 2.0:
		return 50 + (cov-1.5)/0.5*20
	case cov < 2.5:
		return 70 + (cov-2.0)/0.5*15
	default:
		return math.Min(100, 85+(cov-2.5)/1.0*15)
	}
}

func scoreStability(vol *float64) float64 {
	if vol == nil {
		return 60
	}
	v := *vol
	switch {
	case v < 0.10:
		return 90
	case v < 0.20:
		return 70 + (0.20-v)/0.10*20
	case v < 0.30:
		return 50 + (0.30-v)/0.10*20
	default:
		return math.Max(20, 50-(v-0.30)/0.20*30)
	}
}

func riskLevel(total int) RiskLevel {
	switch {
	case total >= 70:
		return RiskLow
	case total >= 50:
		return RiskModerate
	default:
		return RiskHigh
	}
}

func interpret(total int) string {
	switch {
	case total >= 80:
		return "Strong deal with attractive returns and manageable risk"
	case total >= 70:
		return "Good deal with solid returns and acceptable risk profile"
	case total >= 60:
		return "Fair deal with reasonable returns but notable risks"
	case total >= 50:
		return "Marginal deal requiring careful consideration"
	default:
		return "Weak deal with concerning risk/return profile"
	}
}
