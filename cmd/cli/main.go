package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lbo-analyzer/internal/analysis"
	"lbo-analyzer/internal/config"
	"lbo-analyzer/internal/data"
	"lbo-analyzer/internal/format"
	"lbo-analyzer/internal/lbo"
	"lbo-analyzer/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "grid":
		cmdGrid(os.Args[2:])
	case "score":
		cmdScore(os.Args[2:])
	case "history":
		cmdHistory(os.Args[2:])
	case "presets":
		cmdPresets(os.Args[2:])
	case "quick":
		cmdQuick(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --config configs/deal.yaml --out results/")
	fmt.Println("  cli grid --config configs/deal.yaml --metric irr --out results/grid_irr.csv")
	fmt.Println("  cli score --config configs/deal.yaml [--data data/sample_financials.csv]")
	fmt.Println("  cli history --data data/sample_financials.csv --mode base")
	fmt.Println("  cli presets --dir presets")
	fmt.Println("  cli quick --ev 500 --ebitda 50 --debt-pct 0.6 [--growth 0.05 --years 5 --exit 8]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - run writes projection.csv, debt_schedule.csv and leverage.csv")
	fmt.Println("  - grid re-runs the deal across growth rates x exit multiples")
	fmt.Println("  - quick values a deal from EV, EBITDA and debt % of EV (EBITDA-only model)")
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML deal config")
	outDir := fs.String("out", "results", "Output directory for CSV tables")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	in, err := cfg.Deal.ToInputs()
	if err != nil {
		fail(err)
	}
	res, err := lbo.New().Run(in)
	if err != nil {
		fail(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fail(err)
	}
	proj := filepath.Join(*outDir, "projection.csv")
	debt := filepath.Join(*outDir, "debt_schedule.csv")
	lev := filepath.Join(*outDir, "leverage.csv")
	if err := lbo.WriteProjectionCSV(proj, res.OperatingProjection); err != nil {
		fail(err)
	}
	if err := lbo.WriteDebtScheduleCSV(debt, res.DebtSchedule); err != nil {
		fail(err)
	}
	if err := lbo.WriteLeverageCSV(lev, res.LeverageRatios); err != nil {
		fail(err)
	}

	printHeadline(cfg.Deal.Name, res)
	fmt.Printf("Wrote %s, %s, %s\n", proj, debt, lev)
}

func cmdGrid(args []string) {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML deal config")
	metric := fs.String("metric", "irr", "Grid metric: irr or moic")
	outPath := fs.String("out", "", "Optional: write the pivot to this CSV path")
	_ = fs.Parse(args)

	m := lbo.Metric(strings.ToLower(*metric))
	if m != lbo.MetricIRR && m != lbo.MetricMOIC {
		fmt.Println("--metric must be irr or moic")
		os.Exit(2)
	}

	cfg := mustLoad(*cfgPath)
	in, err := cfg.Deal.ToInputs()
	if err != nil {
		fail(err)
	}
	growth, multiples := cfg.GridAxes()
	grid, err := lbo.New().BuildGrid(context.Background(), in, growth, multiples, lbo.GridOptions{Workers: cfg.Sensitivity.Workers})
	if err != nil {
		fail(err)
	}

	printGrid(grid, m)
	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			fail(err)
		}
		if err := lbo.WriteGridCSV(*outPath, grid, m); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", *outPath)
	}
}

func cmdScore(args []string) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML deal config")
	dataPath := fs.String("data", "", "Optional: historical financials CSV for growth volatility")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	in, err := cfg.Deal.ToInputs()
	if err != nil {
		fail(err)
	}
	engine := lbo.New()
	res, err := engine.Run(in)
	if err != nil {
		fail(err)
	}
	growth, multiples := cfg.GridAxes()
	grid, err := engine.BuildGrid(context.Background(), in, growth, multiples, lbo.GridOptions{Workers: cfg.Sensitivity.Workers})
	if err != nil {
		fail(err)
	}

	var vol *float64
	if *dataPath != "" {
		summary, _ := mustHistory(*dataPath)
		vol = summary.EBITDA.Volatility
	}
	card := analysis.Score(analysis.ScoringInputsFromResult(res, grid, vol))
	contrib := analysis.ContributionFromResult(res)

	printHeadline(cfg.Deal.Name, res)
	fmt.Printf("\nIC score: %d/100 (%s risk)\n%s\n\n", card.TotalScore, card.RiskLevel, card.Interpretation)
	for _, c := range card.Components {
		fmt.Printf("  %-22s %5.1f  (weight %.0f%%)\n", c.Name, c.Score, c.Weight*100)
	}
	fmt.Printf("\nValue creation: EBITDA growth %.1f%%, multiple expansion %.1f%%, deleveraging %.1f%%\n",
		contrib.EBITDAGrowth, contrib.MultipleExpansion, contrib.Deleveraging)
}

func cmdHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dataPath := fs.String("data", "data/sample_financials.csv", "Path to historical financials CSV")
	mode := fs.String("mode", "base", "Calibration mode: base, conservative or optimistic")
	_ = fs.Parse(args)

	m, err := analysis.ParseMode(*mode)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	summary, hist := mustHistory(*dataPath)
	latest, _ := hist.Latest()
	cal := analysis.CalibrateGrowth(summary, latest, m)

	fmt.Printf("%d years (%d-%d)\n", summary.YearsOfData, summary.StartYear, summary.EndYear)
	fmt.Printf("Revenue CAGR   %s\n", format.PercentPtr(summary.Revenue.CAGR))
	fmt.Printf("EBITDA CAGR    %s (volatility %s)\n", format.PercentPtr(summary.EBITDA.CAGR), format.PercentPtr(summary.EBITDA.Volatility))
	if summary.Margins.Avg != nil {
		fmt.Printf("Avg margin     %.1f%% (%s)\n", *summary.Margins.Avg, summary.Margins.Trend)
	}
	fmt.Printf("\nCalibrated (%s): growth %s, entry EBITDA %s, margin %.1f%%, confidence %s\n",
		cal.Mode, format.Percent(cal.ForwardGrowthRate), format.Currency(cal.EntryEBITDA), cal.AssumedMarginPct, cal.Confidence)
}

func cmdPresets(args []string) {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	dir := fs.String("dir", "presets", "Preset directory")
	_ = fs.Parse(args)

	presets, err := data.ListPresets(*dir, nil)
	if err != nil {
		fail(err)
	}
	fmt.Printf("%-16s %-20s %-8s %-8s %-16s\n", "id", "name", "entry", "lev", "exit")
	for _, p := range presets {
		fmt.Printf("%-16s %-20s %-8s %-8s %-16s\n",
			p.ID, p.Name,
			format.Multiple(p.Deal.Capital.EntryMultiple),
			format.Multiple(p.Deal.Capital.DebtToEBITDA),
			p.Deal.Exit.Mode,
		)
	}
}

func cmdQuick(args []string) {
	fs := flag.NewFlagSet("quick", flag.ExitOnError)
	ev := fs.Float64("ev", 0, "Enterprise value at entry")
	ebitda := fs.Float64("ebitda", 0, "Entry EBITDA")
	debtPct := fs.Float64("debt-pct", 0, "Debt as a fraction of EV")
	rate := fs.Float64("rate", 0, "Interest rate (default 0.08)")
	growth := fs.Float64("growth", 0, "Annual EBITDA growth (default 0.05)")
	years := fs.Int("years", 0, "Hold period in years (default 5)")
	exit := fs.Float64("exit", 0, "Exit multiple (default 8.0)")
	_ = fs.Parse(args)

	in, err := model.FromLegacy(model.LegacyParams{
		EnterpriseValue:  *ev,
		EBITDA:           *ebitda,
		DebtPercentage:   *debtPct,
		InterestRate:     *rate,
		EBITDAGrowthRate: *growth,
		Years:            *years,
		ExitMultiple:     *exit,
	})
	if err != nil {
		fail(err)
	}
	res, err := lbo.New().Run(in)
	if err != nil {
		fail(err)
	}
	printHeadline("", res)
}

func mustLoad(path string) *config.Config {
	if path == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(path)
	if err != nil {
		fail(err)
	}
	return cfg
}

func mustHistory(path string) (analysis.HistorySummary, *data.Historical) {
	hist, warnings, err := data.LoadHistoricalFile(path)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if err != nil {
		fail(err)
	}
	summary, err := analysis.AnalyzeHistory(hist)
	if err != nil {
		fail(err)
	}
	return summary, hist
}

func printHeadline(name string, res *lbo.Result) {
	k := res.KPIs()
	if name != "" {
		fmt.Println(name)
	}
	fmt.Printf("Entry EV %s  Equity %s  Debt %s\n",
		format.Currency(res.SourcesUses.EnterpriseValue),
		format.Currency(res.SourcesUses.Equity),
		format.Currency(res.SourcesUses.Debt))
	fmt.Printf("Exit EV %s at %s  Exit equity %s\n",
		format.Currency(res.ExitResults.ExitEV),
		format.Multiple(res.ExitResults.ExitMultiple),
		format.Currency(res.ExitEquityValue))
	fmt.Printf("IRR %s  MOIC %s  Debt paydown %s  Max leverage %s  Min coverage %s\n",
		format.PercentPtr(k.IRR), format.MultiplePtr(k.MOIC), format.Percent(k.DebtPaydownPct),
		format.Multiple(k.MaxDebtToEBITDA), format.Multiple(k.MinInterestCoverage))
	if res.RiskFlags.HighLeverage {
		fmt.Println("warning: leverage above 6.0x in at least one year")
	}
	if res.RiskFlags.LowCoverage {
		fmt.Println("warning: interest coverage below 1.5x in at least one year")
	}
}

func printGrid(g *lbo.Grid, m lbo.Metric) {
	fmt.Printf("%-8s", "growth")
	for _, mult := range g.ExitMultiples {
		fmt.Printf(" %9s", format.Multiple(mult))
	}
	fmt.Println()
	for i, row := range g.Pivot(m) {
		fmt.Printf("%-8s", format.Percent(g.GrowthRates[i]))
		for _, v := range row {
			cell := format.MultiplePtr(v)
			if m == lbo.MetricIRR {
				cell = format.PercentPtr(v)
			}
			fmt.Printf(" %9s", cell)
		}
		fmt.Println()
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
