package analysis

import (
	"sort"

	"lbo-analyzer/internal/lbo"
)

// RankedDeal is one named scenario with its headline metrics.
type RankedDeal struct {
	Name    string      `json:"name"`
	Rank    int         `json:"rank"`
	Summary lbo.Summary `json:"summary"`
}

// RankByIRR orders named results by IRR descending; runs without an IRR sort
// last, ties broken by MOIC then name. Ranks start at 1.
func RankByIRR(results map[string]*lbo.Result) []RankedDeal {
	out := make([]RankedDeal, 0, len(results))
	for name, res := range results {
		if res == nil {
			continue
		}
		out = append(out, RankedDeal{Name: name, Summary: res.Summary()})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Summary, out[j].Summary
		if c := comparePtr(a.IRR, b.IRR); c != 0 {
			return c > 0
		}
		if c := comparePtr(a.MOIC, b.MOIC); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// comparePtr orders nil below every value.
func comparePtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a > *b:
		return 1
	case *a < *b:
		return -1
	}
	return 0
}
