package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lbo-analyzer/internal/config"
	"lbo-analyzer/internal/data"
	"lbo-analyzer/internal/lbo"
)

func sampleHistory(t *testing.T) *data.Historical {
	t.Helper()
	h, _, err := data.LoadHistoricalCSV(strings.NewReader(data.SampleHistoricalCSV))
	require.NoError(t, err)
	return h
}

func historyOf(t *testing.T, csv string) *data.Historical {
	t.Helper()
	h, _, err := data.LoadHistoricalCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return h
}

func TestAnalyzeHistory_Sample(t *testing.T) {
	s, err := AnalyzeHistory(sampleHistory(t))
	require.NoError(t, err)

	assert.Equal(t, 5, s.YearsOfData)
	assert.Equal(t, 2019, s.StartYear)
	assert.Equal(t, 2023, s.EndYear)

	require.NotNil(t, s.Revenue.CAGR)
	assert.InDelta(t, math.Pow(1.45, 0.25)-1, *s.Revenue.CAGR, 1e-12)
	require.NotNil(t, s.Revenue.TrendSlope)
	assert.InDelta(t, 11.7, *s.Revenue.TrendSlope, 1e-9)

	require.NotNil(t, s.EBITDA.CAGR)
	assert.InDelta(t, math.Pow(1.8, 0.25)-1, *s.EBITDA.CAGR, 1e-12)
	assert.InDelta(t, 0.158701, *s.EBITDA.GrowthAvg, 1e-5)
	assert.InDelta(t, 0.125, *s.EBITDA.GrowthMin, 1e-12)
	assert.InDelta(t, 0.2, *s.EBITDA.GrowthMax, 1e-12)
	require.NotNil(t, s.EBITDA.Volatility)
	assert.InDelta(t, 0.035594, *s.EBITDA.Volatility, 1e-5)

	assert.InDelta(t, 15.0, *s.Margins.Min, 1e-9)
	assert.InDelta(t, 27.0/145*100, *s.Margins.Max, 1e-9)
	assert.InDelta(t, 16.7612, *s.Margins.Avg, 1e-3)
	assert.Equal(t, "improving", s.Margins.Trend)
}

func TestAnalyzeHistory_ShortSeries(t *testing.T) {
	s, err := AnalyzeHistory(historyOf(t, "year,revenue,ebitda\n2023,100,20\n"))
	require.NoError(t, err)
	assert.Nil(t, s.Revenue.CAGR)
	assert.Nil(t, s.EBITDA.GrowthAvg)
	assert.Nil(t, s.EBITDA.Volatility)
	assert.Nil(t, s.EBITDA.TrendSlope)
	assert.Equal(t, "declining", s.Margins.Trend)
	assert.Nil(t, s.Margins.Volatility)

	s, err = AnalyzeHistory(historyOf(t, "year,revenue,ebitda\n2022,100,20\n2023,110,18\n"))
	require.NoError(t, err)
	require.NotNil(t, s.EBITDA.GrowthAvg)
	assert.InDelta(t, -0.1, *s.EBITDA.GrowthAvg, 1e-12)
	assert.Nil(t, s.EBITDA.Volatility, "one growth observation has no sample std")
	assert.Equal(t, "declining", s.Margins.Trend)
}

func TestAnalyzeHistory_NegativeEndpointHasNoCAGR(t *testing.T) {
	s, err := AnalyzeHistory(historyOf(t, "year,revenue,ebitda\n2021,100,10\n2022,100,5\n2023,100,-2\n"))
	require.NoError(t, err)
	assert.Nil(t, s.EBITDA.CAGR)
	assert.NotNil(t, s.Revenue.CAGR)
	assert.InDelta(t, 0, *s.Revenue.CAGR, 1e-12)
}

func TestAnalyzeHistory_Empty(t *testing.T) {
	_, err := AnalyzeHistory(nil)
	assert.ErrorIs(t, err, ErrNoHistory)
	_, err = AnalyzeHistory(&data.Historical{})
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestCalibrateGrowth_Modes(t *testing.T) {
	h := sampleHistory(t)
	s, err := AnalyzeHistory(h)
	require.NoError(t, err)
	latest, _ := h.Latest()
	cagr, vol := *s.EBITDA.CAGR, *s.EBITDA.Volatility

	base := CalibrateGrowth(s, latest, ModeBase)
	assert.InDelta(t, cagr, base.ForwardGrowthRate, 1e-12)
	assert.Equal(t, 27.0, base.EntryEBITDA)
	assert.Equal(t, 145.0, base.BaseRevenue)
	assert.InDelta(t, 27.0/145*100, base.AssumedMarginPct, 1e-9)
	assert.Equal(t, ConfidenceHigh, base.Confidence)

	assert.InDelta(t, cagr-vol, CalibrateGrowth(s, latest, "Conservative").ForwardGrowthRate, 1e-12)
	assert.InDelta(t, cagr+0.5*vol, CalibrateGrowth(s, latest, ModeOptimistic).ForwardGrowthRate, 1e-12)
	assert.Equal(t, DefaultBaseGrowth, CalibrateGrowth(s, latest, "aggressive").ForwardGrowthRate)
	assert.Equal(t, ModeBase, CalibrateGrowth(s, latest, "").Mode)
}

func TestCalibrateGrowth_Fallbacks(t *testing.T) {
	s := HistorySummary{YearsOfData: 1}
	latest := data.LatestMetrics{EBITDA: 10, Revenue: 50, MarginPct: 20}

	assert.Equal(t, DefaultBaseGrowth, CalibrateGrowth(s, latest, ModeBase).ForwardGrowthRate)
	assert.Equal(t, DefaultConservativeGrowth, CalibrateGrowth(s, latest, ModeConservative).ForwardGrowthRate)
	assert.Equal(t, DefaultOptimisticGrowth, CalibrateGrowth(s, latest, ModeOptimistic).ForwardGrowthRate)
	assert.Equal(t, ConfidenceLow, CalibrateGrowth(s, latest, ModeBase).Confidence)

	// Conservative growth is floored at zero.
	s.EBITDA.CAGR, s.EBITDA.Volatility = ptr(0.02), ptr(0.10)
	assert.Equal(t, 0.0, CalibrateGrowth(s, latest, ModeConservative).ForwardGrowthRate)
}

func TestAssessConfidence(t *testing.T) {
	cases := []struct {
		years int
		vol   *float64
		want  Confidence
	}{
		{5, nil, ConfidenceHigh},
		{6, ptr(0.14), ConfidenceHigh},
		{5, ptr(0.20), ConfidenceMedium},
		{3, ptr(0.29), ConfidenceMedium},
		{4, nil, ConfidenceMedium},
		{4, ptr(0.35), ConfidenceLow},
		{2, nil, ConfidenceLow},
	}
	for _, tc := range cases {
		s := HistorySummary{YearsOfData: tc.years}
		s.EBITDA.Volatility = tc.vol
		assert.Equal(t, tc.want, AssessConfidence(s), "years=%d", tc.years)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]string{"": ModeBase, "BASE": ModeBase, " optimistic ": ModeOptimistic, "conservative": ModeConservative} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("bullish")
	assert.Error(t, err)
}

func TestComponentScores(t *testing.T) {
	for _, tc := range []struct{ irr, want float64 }{
		{0.10, 26.6667}, {0.175, 50}, {0.25, 80}, {0.30, 95}, {0.50, 100}, {-0.2, 0},
	} {
		assert.InDelta(t, tc.want, scoreIRR(tc.irr), 1e-3, "irr=%v", tc.irr)
	}
	assert.Equal(t, 50.0, scoreDownside(nil))
	assert.InDelta(t, 52.0, scoreDownside(ptr(0.12)), 1e-9)
	assert.InDelta(t, 85.0, scoreDownside(ptr(0.20)), 1e-9)
	assert.Equal(t, 0.0, scoreDownside(ptr(-0.05)))

	for _, tc := range []struct{ lev, want float64 }{
		{3, 85}, {4.5, 70}, {5.5, 50}, {7, 30}, {11, 0},
	} {
		assert.InDelta(t, tc.want, scoreLeverage(tc.lev), 1e-9, "lev=%v", tc.lev)
	}
	for _, tc := range []struct{ cov, want float64 }{
		{0.5, 10}, {1.25, 35}, {1.75, 60}, {2.25, 77.5}, {3.5, 100},
	} {
		assert.InDelta(t, tc.want, scoreCoverage(tc.cov), 1e-9, "cov=%v", tc.cov)
	}
	assert.Equal(t, 60.0, scoreStability(nil))
	assert.Equal(t, 90.0, scoreStability(ptr(0.05)))
	assert.InDelta(t, 80.0, scoreStability(ptr(0.15)), 1e-9)
	assert.InDelta(t, 60.0, scoreStability(ptr(0.25)), 1e-9)
	assert.Equal(t, 20.0, scoreStability(ptr(0.5)))
}

func TestScore_StrongDeal(t *testing.T) {
	card := Score(ScoringInputs{
		BaseCaseIRR:            0.25,
		MinSensitivityIRR:      ptr(0.20),
		MaxDebtToEBITDA:        4.5,
		MinInterestCoverage:    2.25,
		EBITDAGrowthVolatility: ptr(0.15),
	})
	assert.Equal(t, 79, card.TotalScore)
	assert.Equal(t, RiskLow, card.RiskLevel)
	assert.Equal(t, "Good deal with solid returns and acceptable risk profile", card.Interpretation)

	require.Len(t, card.Components, 5)
	names := []string{ComponentIRR, ComponentDownside, ComponentLeverage, ComponentCoverage, ComponentStability}
	weights := 0.0
	for i, c := range card.Components {
		assert.Equal(t, names[i], c.Name)
		weights += c.Weight
	}
	assert.InDelta(t, 1.0, weights, 1e-12)
	cov, ok := card.Component(ComponentCoverage)
	require.True(t, ok)
	assert.Equal(t, 77.5, cov)
	_, ok = card.Component("Vibes")
	assert.False(t, ok)
}

func TestScore_WeakDeal(t *testing.T) {
	card := Score(ScoringInputs{BaseCaseIRR: 0.10, MaxDebtToEBITDA: 7, MinInterestCoverage: 1.25})
	assert.Equal(t, 38, card.TotalScore)
	assert.Equal(t, RiskHigh, card.RiskLevel)
	assert.Equal(t, "Weak deal with concerning risk/return profile", card.Interpretation)
	irr, _ := card.Component(ComponentIRR)
	assert.Equal(t, 26.7, irr)
	downside, _ := card.Component(ComponentDownside)
	assert.Equal(t, 50.0, downside)
}

func TestRiskBands(t *testing.T) {
	assert.Equal(t, RiskLow, riskLevel(70))
	assert.Equal(t, RiskModerate, riskLevel(69))
	assert.Equal(t, RiskModerate, riskLevel(50))
	assert.Equal(t, RiskHigh, riskLevel(49))
	assert.Equal(t, "Strong deal with attractive returns and manageable risk", interpret(80))
	assert.Equal(t, "Fair deal with reasonable returns but notable risks", interpret(65))
	assert.Equal(t, "Marginal deal requiring careful consideration", interpret(50))
}

func sampleResult(t *testing.T) (*lbo.Engine, *lbo.Result) {
	t.Helper()
	in, err := config.SampleDeal().ToInputs()
	require.NoError(t, err)
	e := lbo.New()
	res, err := e.Run(in)
	require.NoError(t, err)
	return e, res
}

func TestScoringInputsFromResult(t *testing.T) {
	e, res := sampleResult(t)
	require.NotNil(t, res.IRR)

	noGrid := ScoringInputsFromResult(res, nil, nil)
	assert.Equal(t, *res.IRR, noGrid.BaseCaseIRR)
	require.NotNil(t, noGrid.MinSensitivityIRR)
	assert.Equal(t, *res.IRR, *noGrid.MinSensitivityIRR)
	assert.Equal(t, res.RiskFlags.MaxDebtToEBITDA, noGrid.MaxDebtToEBITDA)
	assert.Equal(t, res.RiskFlags.MinInterestCoverage, noGrid.MinInterestCoverage)

	grid, err := e.BuildGrid(context.Background(), res.Inputs, []float64{0, 0.05, 0.10}, []float64{8, 10, 12}, lbo.GridOptions{})
	require.NoError(t, err)
	withGrid := ScoringInputsFromResult(res, grid, ptr(0.1))
	require.NotNil(t, withGrid.MinSensitivityIRR)
	assert.Equal(t, *grid.Summary().IRR.Min, *withGrid.MinSensitivityIRR)
	assert.Less(t, *withGrid.MinSensitivityIRR, *res.IRR)
	assert.Equal(t, 0.1, *withGrid.EBITDAGrowthVolatility)

	empty := ScoringInputsFromResult(&lbo.Result{}, nil, nil)
	assert.Equal(t, 0.0, empty.BaseCaseIRR)
	assert.Nil(t, empty.MinSensitivityIRR)
}

func TestContribute(t *testing.T) {
	c := Contribute(ContributionInputs{
		EntryEV: 270, ExitEV: 330, EntryDebt: 135, ExitDebt: 100,
		EntryEBITDA: 27, ExitEBITDA: 30, EntryMultiple: 10,
	})
	assert.Equal(t, Contribution{EBITDAGrowth: 31.6, MultipleExpansion: 31.6, Deleveraging: 36.8}, c)

	// Multiple contraction shows up as a negative share.
	c = Contribute(ContributionInputs{
		EntryEV: 270, ExitEV: 270, EntryDebt: 135, ExitDebt: 100,
		EntryEBITDA: 27, ExitEBITDA: 30, EntryMultiple: 10,
	})
	assert.Equal(t, Contribution{EBITDAGrowth: 85.7, MultipleExpansion: -85.7, Deleveraging: 100}, c)

	assert.Equal(t, Contribution{}, Contribute(ContributionInputs{
		EntryEV: 270, ExitEV: 200, EntryDebt: 135, ExitDebt: 100, ExitEBITDA: 20, EntryMultiple: 10,
	}))
}

func TestContributionFromResult(t *testing.T) {
	_, res := sampleResult(t)
	c := ContributionFromResult(res)
	assert.InDelta(t, 100, c.EBITDAGrowth+c.MultipleExpansion+c.Deleveraging, 0.2)
	assert.Greater(t, c.EBITDAGrowth, 0.0)
	assert.Greater(t, c.Deleveraging, 0.0)
}

func TestRankByIRR(t *testing.T) {
	mk := func(irr, moic *float64) *lbo.Result { return &lbo.Result{IRR: irr, MOIC: moic} }
	ranked := RankByIRR(map[string]*lbo.Result{
		"low":     mk(ptr(0.10), ptr(1.6)),
		"high":    mk(ptr(0.25), ptr(3.0)),
		"no-irr":  mk(nil, nil),
		"tie-b":   mk(ptr(0.15), ptr(2.0)),
		"tie-a":   mk(ptr(0.15), ptr(2.0)),
		"better":  mk(ptr(0.15), ptr(2.1)),
		"skipped": nil,
	})
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"high", "better", "tie-a", "tie-b", "low", "no-irr"}, names)
}
