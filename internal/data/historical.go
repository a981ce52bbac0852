package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidCSV is returned when historical financials cannot be used.
var ErrInvalidCSV = errors.New("invalid historical csv")

// Standard column names produced by column detection.
const (
	ColYear    = "year"
	ColRevenue = "revenue"
	ColEBITDA  = "ebitda"
	ColCapex   = "capex"
	ColNetDebt = "netdebt"
)

var requiredColumns = []string{ColYear, ColRevenue, ColEBITDA}

// SampleHistoricalCSV is five years of demo financials (currency in millions).
const SampleHistoricalCSV = `Year,Revenue,EBITDA,Capex,NetDebt
2019,100.0,15.0,5.0,30.0
2020,108.0,17.0,5.5,28.0
2021,120.0,20.0,6.0,25.0
2022,135.0,24.0,7.0,22.0
2023,145.0,27.0,7.5,20.0
`

// HistoricalRow is one fiscal year. Capex and NetDebt are nil when the
// column is absent or the cell is blank.
type HistoricalRow struct {
	Year    int      `json:"year"`
	Revenue float64  `json:"revenue"`
	EBITDA  float64  `json:"ebitda"`
	Capex   *float64 `json:"capex,omitempty"`
	NetDebt *float64 `json:"netdebt,omitempty"`
}

// Historical is a cleaned, year-sorted financial history.
type Historical struct {
	Rows []HistoricalRow `json:"rows"`
	// Columns maps standard names to the source header they were read from.
	Columns map[string]string `json:"columns"`
}

// LatestMetrics summarizes the most recent year. MarginPct is in percent.
type LatestMetrics struct {
	Year      int     `json:"latest_year"`
	Revenue   float64 `json:"latest_revenue"`
	EBITDA    float64 `json:"latest_ebitda"`
	MarginPct float64 `json:"latest_margin"`
}

func LoadHistoricalFile(path string) (*Historical, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return LoadHistoricalCSV(f)
}

// LoadHistoricalCSV parses, validates and cleans a historical financials CSV.
// Warnings describe data-quality issues that do not block use. A non-nil
// error wraps ErrInvalidCSV and the returned warnings explain why.
func LoadHistoricalCSV(r io.Reader) (*Historical, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		msg := fmt.Sprintf("failed to read CSV: %v", err)
		return nil, []string{msg}, fmt.Errorf("%w: %s", ErrInvalidCSV, msg)
	}
	if len(records) == 0 {
		msg := "CSV is empty"
		return nil, []string{msg}, fmt.Errorf("%w: %s", ErrInvalidCSV, msg)
	}

	header, keep := normalizeHeader(records[0])
	body := records[1:]
	columns := detectColumns(header)

	warnings, ok := validateRecords(body, header, keep, columns)
	if !ok {
		return nil, warnings, fmt.Errorf("%w: %s", ErrInvalidCSV, strings.Join(warnings, "; "))
	}

	h := &Historical{Rows: make([]HistoricalRow, 0, len(body)), Columns: map[string]string{}}
	for std, idx := range columns {
		h.Columns[std] = header[idx]
	}
	for _, rec := range body {
		row := HistoricalRow{}
		year, _ := parseNumber(cell(rec, keep, columns[ColYear]))
		row.Year = int(math.Round(year))
		row.Revenue, _ = parseNumber(cell(rec, keep, columns[ColRevenue]))
		row.EBITDA, _ = parseNumber(cell(rec, keep, columns[ColEBITDA]))
		if idx, ok := columns[ColCapex]; ok {
			row.Capex = optionalNumber(cell(rec, keep, idx))
		}
		if idx, ok := columns[ColNetDebt]; ok {
			row.NetDebt = optionalNumber(cell(rec, keep, idx))
		}
		h.Rows = append(h.Rows, row)
	}
	sort.SliceStable(h.Rows, func(i, j int) bool { return h.Rows[i].Year < h.Rows[j].Year })
	return h, warnings, nil
}

// normalizeHeader lower-cases and snake-cases header names, dropping blank
// and exported-index ("Unnamed") columns. keep maps normalized positions back
// to record positions.
func normalizeHeader(raw []string) (header []string, keep []int) {
	for i, name := range raw {
		trimmed := strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if trimmed == "" || strings.HasPrefix(strings.ToLower(trimmed), "unnamed") {
			continue
		}
		header = append(header, strings.ReplaceAll(strings.ToLower(trimmed), " ", "_"))
		keep = append(keep, i)
	}
	return header, keep
}

// detectColumns maps standard names to header positions. When several
// headers match the same name, the last one wins.
func detectColumns(header []string) map[string]int {
	out := map[string]int{}
	for i, col := range header {
		switch {
		case containsAny(col, "year", "yr", "date", "period"):
			out[ColYear] = i
		case containsAny(col, "revenue", "sales", "turnover"):
			out[ColRevenue] = i
		case strings.Contains(col, "ebitda"):
			out[ColEBITDA] = i
		case containsAny(col, "capex", "capital_expenditure"):
			out[ColCapex] = i
		case containsAny(col, "netdebt", "net_debt"):
			out[ColNetDebt] = i
		}
	}
	return out
}

func validateRecords(body [][]string, header []string, keep []int, columns map[string]int) ([]string, bool) {
	warnings := []string{}
	ok := true

	for _, req := range requiredColumns {
		if _, found := columns[req]; !found {
			warnings = append(warnings, fmt.Sprintf("missing required column '%s'", req))
			ok = false
		}
	}
	if !ok {
		return warnings, false
	}

	if len(body) < 3 {
		warnings = append(warnings, "less than 3 years of data; analysis may be unreliable")
	}
	if len(body) == 0 {
		warnings = append(warnings, "no data rows")
		return warnings, false
	}

	yearCol := header[columns[ColYear]]
	years := make([]float64, 0, len(body))
	badYear := false
	for _, rec := range body {
		y, valid := parseNumber(cell(rec, keep, columns[ColYear]))
		if !valid {
			badYear = true
			continue
		}
		years = append(years, y)
	}
	if badYear {
		warnings = append(warnings, fmt.Sprintf("non-numeric values in '%s' column", yearCol))
		ok = false
	} else {
		for i := 1; i < len(years); i++ {
			if years[i]-years[i-1] != 1 {
				warnings = append(warnings, "years are not sequential; gaps detected")
				break
			}
		}
	}

	for _, std := range []string{ColRevenue, ColEBITDA} {
		name := header[columns[std]]
		values := make([]float64, 0, len(body))
		invalid := 0
		for _, rec := range body {
			v, valid := parseNumber(cell(rec, keep, columns[std]))
			if !valid {
				invalid++
				continue
			}
			values = append(values, v)
		}
		if invalid > 0 {
			warnings = append(warnings, fmt.Sprintf("%d non-numeric values in '%s'", invalid, name))
			ok = false
		}
		if std == ColEBITDA && anyMatch(values, func(v float64) bool { return v < 0 }) {
			warnings = append(warnings, "negative EBITDA values detected")
		}
		if anyMatch(values, func(v float64) bool { return v == 0 }) {
			warnings = append(warnings, fmt.Sprintf("zero values detected in '%s'", name))
		}
		if med := median(values); med > 0 && anyMatch(values, func(v float64) bool { return v > 5*med }) {
			warnings = append(warnings, fmt.Sprintf("potential outliers detected in '%s'", name))
		}
	}
	return warnings, ok
}

// Latest returns the most recent year's figures; ok is false when empty.
func (h *Historical) Latest() (LatestMetrics, bool) {
	if h == nil || len(h.Rows) == 0 {
		return LatestMetrics{}, false
	}
	last := h.Rows[len(h.Rows)-1]
	m := LatestMetrics{Year: last.Year, Revenue: last.Revenue, EBITDA: last.EBITDA}
	if last.Revenue > 0 {
		m.MarginPct = last.EBITDA / last.Revenue * 100
	}
	return m, true
}

func (h *Historical) Years() []int {
	out := make([]int, len(h.Rows))
	for i, r := range h.Rows {
		out[i] = r.Year
	}
	return out
}

func (h *Historical) Revenue() []float64 {
	out := make([]float64, len(h.Rows))
	for i, r := range h.Rows {
		out[i] = r.Revenue
	}
	return out
}

func (h *Historical) EBITDA() []float64 {
	out := make([]float64, len(h.Rows))
	for i, r := range h.Rows {
		out[i] = r.EBITDA
	}
	return out
}

func cell(rec []string, keep []int, idx int) string {
	pos := keep[idx]
	if pos >= len(rec) {
		return ""
	}
	return rec[pos]
}

// parseNumber accepts plain and thousands-separated numbers.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func optionalNumber(s string) *float64 {
	v, ok := parseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func anyMatch(vals []float64, pred func(float64) bool) bool {
	for _, v := range vals {
		if pred(v) {
			return true
		}
	}
	return false
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
