package lbo

import (
	"encoding/csv"
	"os"
	"strconv"
)

func WriteProjectionCSV(path string, rows []ProjectionRow) error {
	header := []string{
		"year",
		"revenue",
		"ebitda",
		"da",
		"ebit",
		"taxes",
		"nopat",
		"capex",
		"nwc",
		"change_in_nwc",
		"fcf",
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Year),
			fmtFloat(r.Revenue),
			fmtFloat(r.EBITDA),
			fmtFloat(r.DA),
			fmtFloat(r.EBIT),
			fmtFloat(r.Taxes),
			fmtFloat(r.NOPAT),
			fmtFloat(r.Capex),
			fmtFloat(r.NWC),
			fmtFloat(r.ChangeInNWC),
			fmtFloat(r.FCF),
		})
	}
	return writeCSV(path, header, records)
}

func WriteDebtScheduleCSV(path string, rows []DebtScheduleRow) error {
	header := []string{
		"year",
		"beginning_debt",
		"interest",
		"scheduled_amort",
		"cash_sweep",
		"total_paydown",
		"ending_debt",
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Year),
			fmtFloat(r.BeginningDebt),
			fmtFloat(r.Interest),
			fmtFloat(r.ScheduledAmort),
			fmtFloat(r.CashSweep),
			fmtFloat(r.TotalPaydown),
			fmtFloat(r.EndingDebt),
		})
	}
	return writeCSV(path, header, records)
}

func WriteLeverageCSV(path string, rows []LeverageRow) error {
	header := []string{"year", "beginning_debt", "ebitda", "debt_to_ebitda", "interest_coverage"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Year),
			fmtFloat(r.BeginningDebt),
			fmtFloat(r.EBITDA),
			fmtFloat(r.DebtToEBITDA),
			fmtFloat(r.InterestCoverage),
		})
	}
	return writeCSV(path, header, records)
}

// WriteGridCSV writes the pivoted grid: one row per growth rate, one column per
// exit multiple. Undefined cells are left empty.
func WriteGridCSV(path string, g *Grid, m Metric) error {
	header := make([]string, 0, len(g.ExitMultiples)+1)
	header = append(header, "growth_rate")
	for _, x := range g.ExitMultiples {
		header = append(header, string(m)+"@"+strconv.FormatFloat(x, 'f', -1, 64)+"x")
	}
	pivot := g.Pivot(m)
	records := make([][]string, 0, len(pivot))
	for i, row := range pivot {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, fmtFloat(g.GrowthRates[i]))
		for _, v := range row {
			if v == nil {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, fmtFloat(*v))
		}
		records = append(records, rec)
	}
	return writeCSV(path, header, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
