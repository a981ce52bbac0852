package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"lbo-analyzer/internal/data"
	"lbo-analyzer/internal/lbo"
)

// ErrNoHistory is returned when there is nothing to analyze.
var ErrNoHistory = errors.New("no historical data")

// GrowthStats describes one series: CAGR plus year-over-year growth moments.
// Every field is nil when the series is too short to define it.
type GrowthStats struct {
	CAGR       *float64 `json:"cagr"`
	GrowthAvg  *float64 `json:"growth_avg"`
	Volatility *float64 `json:"growth_volatility"` // sample std of YoY growth
	GrowthMin  *float64 `json:"growth_min"`
	GrowthMax  *float64 `json:"growth_max"`
	TrendSlope *float64 `json:"trend_slope"` // OLS slope per year
}

// MarginStats are EBITDA margins in percent (20.0 = 20%).
type MarginStats struct {
	Avg        *float64 `json:"avg_margin"`
	Volatility *float64 `json:"margin_volatility"`
	Min        *float64 `json:"margin_min"`
	Max        *float64 `json:"margin_max"`
	Trend      string   `json:"margin_trend"` // "improving" or "declining"
}

type HistorySummary struct {
	Revenue     GrowthStats `json:"revenue"`
	EBITDA      GrowthStats `json:"ebitda"`
	Margins     MarginStats `json:"margins"`
	YearsOfData int         `json:"years_of_data"`
	StartYear   int         `json:"start_year"`
	EndYear     int         `json:"end_year"`
}

// AnalyzeHistory computes growth and margin statistics over year-sorted rows.
func AnalyzeHistory(h *data.Historical) (HistorySummary, error) {
	if h == nil || len(h.Rows) == 0 {
		return HistorySummary{}, ErrNoHistory
	}
	s := HistorySummary{
		Revenue:     growthStats(h.Revenue()),
		EBITDA:      growthStats(h.EBITDA()),
		Margins:     marginStats(h.Rows),
		YearsOfData: len(h.Rows),
		StartYear:   h.Rows[0].Year,
		EndYear:     h.Rows[len(h.Rows)-1].Year,
	}
	return s, nil
}

func growthStats(values []float64) GrowthStats {
	g := GrowthStats{}
	if len(values) >= 2 {
		if cagr, err := lbo.CAGR(values[0], values[len(values)-1], len(values)-1); err == nil {
			g.CAGR = &cagr
		}
	}
	yoy := yoyGrowth(values)
	if len(yoy) > 0 {
		g.GrowthAvg = ptr(mean(yoy))
		g.GrowthMin = ptr(minOf(yoy))
		g.GrowthMax = ptr(maxOf(yoy))
		g.Volatility = sampleStd(yoy)
	}
	g.TrendSlope = trendSlope(values)
	return g
}

func marginStats(rows []data.HistoricalRow) MarginStats {
	margins := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Revenue == 0 {
			continue
		}
		margins = append(margins, r.EBITDA/r.Revenue*100)
	}
	m := MarginStats{Trend: "declining"}
	if len(margins) == 0 {
		return m
	}
	m.Avg = ptr(mean(margins))
	m.Min = ptr(minOf(margins))
	m.Max = ptr(maxOf(margins))
	m.Volatility = sampleStd(margins)
	if slope := trendSlope(margins); slope != nil && *slope > 0 {
		m.Trend = "improving"
	}
	return m
}

// Calibration modes for forward growth.
const (
	ModeBase         = "base"
	ModeConservative = "conservative"
	ModeOptimistic   = "optimistic"
)

// Fallback growth rates when history cannot define one.
const (
	DefaultBaseGrowth         = 0.05
	DefaultConservativeGrowth = 0.03
	DefaultOptimisticGrowth   = 0.07
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CalibratedAssumptions are forward-looking suggestions derived from history.
// AssumedMarginPct is in percent.
type CalibratedAssumptions struct {
	Mode              string     `json:"mode"`
	ForwardGrowthRate float64    `json:"forward_growth_rate"`
	EntryEBITDA       float64    `json:"entry_ebitda"`
	BaseRevenue       float64    `json:"base_revenue"`
	AssumedMarginPct  float64    `json:"assumed_margin"`
	Confidence        Confidence `json:"confidence"`
}

// CalibrateGrowth suggests a forward growth rate from EBITDA history:
// base uses the CAGR, conservative subtracts one volatility (floored at 0),
// optimistic adds half a volatility. Unknown modes get DefaultBaseGrowth.
func CalibrateGrowth(s HistorySummary, latest data.LatestMetrics, mode string) CalibratedAssumptions {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ModeBase
	}
	cagr, vol := s.EBITDA.CAGR, s.EBITDA.Volatility

	growth := DefaultBaseGrowth
	switch mode {
	case ModeBase:
		if cagr != nil {
			growth = *cagr
		}
	case ModeConservative:
		growth = DefaultConservativeGrowth
		if cagr != nil && vol != nil {
			growth = math.Max(0, *cagr-*vol)
		}
	case ModeOptimistic:
		growth = DefaultOptimisticGrowth
		if cagr != nil && vol != nil {
			growth = *cagr + 0.5*(*vol)
		}
	}

	return CalibratedAssumptions{
		Mode:              mode,
		ForwardGrowthRate: growth,
		EntryEBITDA:       latest.EBITDA,
		BaseRevenue:       latest.Revenue,
		AssumedMarginPct:  latest.MarginPct,
		Confidence:        AssessConfidence(s),
	}
}

// AssessConfidence grades history by length and EBITDA growth volatility.
func AssessConfidence(s HistorySummary) Confidence {
	vol := s.EBITDA.Volatility
	switch {
	case s.YearsOfData >= 5 && (vol == nil || *vol < 0.15):
		return ConfidenceHigh
	case s.YearsOfData >= 3 && (vol == nil || *vol < 0.30):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ParseMode validates a calibration mode name.
func ParseMode(s string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(s)); m {
	case "", ModeBase:
		return ModeBase, nil
	case ModeConservative, ModeOptimistic:
		return m, nil
	default:
		return "", fmt.Errorf("unknown calibration mode %q (want base, conservative or optimistic)", s)
	}
}

// yoyGrowth skips periods whose prior value is zero.
func yoyGrowth(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, values[i]/values[i-1]-1)
	}
	return out
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd uses n-1 in the denominator; nil below two observations.
func sampleStd(vals []float64) *float64 {
	if len(vals) < 2 {
		return nil
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return ptr(math.Sqrt(ss / float64(len(vals)-1)))
}

// trendSlope is the least-squares slope of vals against 0..n-1.
func trendSlope(vals []float64) *float64 {
	n := len(vals)
	if n < 2 {
		return nil
	}
	xm := float64(n-1) / 2
	ym := mean(vals)
	num, den := 0.0, 0.0
	for i, y := range vals {
		dx := float64(i) - xm
		num += dx * (y - ym)
		den += dx * dx
	}
	return ptr(num / den)
}

func minOf(vals []float64) float64 {
	out := vals[0]
	for _, v := range vals[1:] {
		out = math.Min(out, v)
	}
	return out
}

func maxOf(vals []float64) float64 {
	out := vals[0]
	for _, v := range vals[1:] {
		out = math.Max(out, v)
	}
	return out
}

func ptr(v float64) *float64 { return &v }
