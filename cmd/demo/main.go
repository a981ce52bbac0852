package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"lbo-analyzer/internal/analysis"
	"lbo-analyzer/internal/config"
	"lbo-analyzer/internal/data"
	"lbo-analyzer/internal/format"
	"lbo-analyzer/internal/lbo"
)

// Demo:
// - Load historical financials (built-in sample unless --data is given)
// - Calibrate growth from history and seed the sample deal with it
// - Run the engine and print the projection, debt schedule and a small grid
func main() {
	dataPath := flag.String("data", "", "Path to historical financials CSV (default: built-in sample)")
	cfgPath := flag.String("config", "", "Path to YAML deal config (optional)")
	mode := flag.String("mode", "base", "Growth calibration mode: base, conservative or optimistic")
	flag.Parse()

	var (
		hist     *data.Historical
		warnings []string
		err      error
	)
	if *dataPath != "" {
		hist, warnings, err = data.LoadHistoricalFile(*dataPath)
	} else {
		hist, warnings, err = data.LoadHistoricalCSV(strings.NewReader(data.SampleHistoricalCSV))
	}
	if err != nil {
		panic(err)
	}
	for _, w := range warnings {
		fmt.Println("warning:", w)
	}

	summary, err := analysis.AnalyzeHistory(hist)
	if err != nil {
		panic(err)
	}
	calMode, err := analysis.ParseMode(*mode)
	if err != nil {
		panic(err)
	}
	latest, _ := hist.Latest()
	cal := analysis.CalibrateGrowth(summary, latest, calMode)

	// Defaults (can be overridden via --config).
	deal := config.SampleDeal()
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		deal = cfg.Deal
	} else {
		deal.Capital.EntryEBITDA = cal.EntryEBITDA
		deal.Operating.BaseRevenue = latest.Revenue
		deal.Operating.RevenueGrowth = cal.ForwardGrowthRate
		deal.Operating.EBITDAMargin = cal.AssumedMarginPct / 100
	}

	in, err := deal.ToInputs()
	if err != nil {
		panic(err)
	}
	engine := lbo.New()
	res, err := engine.Run(in)
	if err != nil {
		panic(err)
	}

	fmt.Printf("History %d-%d: EBITDA CAGR %s, calibrated %s growth %s (confidence %s)\n\n",
		summary.StartYear, summary.EndYear, format.PercentPtr(summary.EBITDA.CAGR),
		cal.Mode, format.Percent(cal.ForwardGrowthRate), cal.Confidence)

	fmt.Println("Sources & uses")
	for i := range res.SourcesUsesTable.Uses {
		u, s := res.SourcesUsesTable.Uses[i], res.SourcesUsesTable.Sources[i]
		fmt.Printf("  %-18s %12s   %-22s %12s\n", u.Label, format.Currency(u.Amount), s.Label, format.Currency(s.Amount))
	}

	fmt.Println("\nOperating projection")
	fmt.Printf("  %-4s %12s %12s %12s %12s\n", "year", "revenue", "ebitda", "nopat", "fcf")
	for _, r := range res.OperatingProjection {
		fmt.Printf("  %-4d %12s %12s %12s %12s\n", r.Year,
			format.Currency(r.Revenue), format.Currency(r.EBITDA), format.Currency(r.NOPAT), format.Currency(r.FCF))
	}

	fmt.Println("\nDebt schedule")
	fmt.Printf("  %-4s %12s %12s %12s %12s %12s\n", "year", "beginning", "interest", "amort", "sweep", "ending")
	for _, r := range res.DebtSchedule {
		fmt.Printf("  %-4d %12s %12s %12s %12s %12s\n", r.Year,
			format.Currency(r.BeginningDebt), format.Currency(r.Interest),
			format.Currency(r.ScheduledAmort), format.Currency(r.CashSweep), format.Currency(r.EndingDebt))
	}

	fmt.Printf("\n%s: exit EV %s, exit equity %s\n", res.ExitMethodology,
		format.Currency(res.ExitResults.ExitEV), format.Currency(res.ExitEquityValue))
	fmt.Printf("IRR %s  MOIC %s\n", format.PercentPtr(res.IRR), format.MultiplePtr(res.MOIC))

	grid, err := engine.BuildGrid(context.Background(), in,
		lbo.Linspace(0, 0.10, 5), lbo.Linspace(8, 12, 5), lbo.GridOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "grid:", err)
		os.Exit(1)
	}
	fmt.Println("\nIRR sensitivity (growth x exit multiple)")
	for i, row := range grid.Pivot(lbo.MetricIRR) {
		fmt.Printf("  %-6s", format.Percent(grid.GrowthRates[i]))
		for _, v := range row {
			fmt.Printf(" %8s", format.PercentPtr(v))
		}
		fmt.Println()
	}
}
