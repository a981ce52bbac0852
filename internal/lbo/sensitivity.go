package lbo

import (
	"context"
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"lbo-analyzer/internal/model"
)

// Metric selects which return figure a grid view reports.
type Metric string

const (
	MetricIRR  Metric = "irr"
	MetricMOIC Metric = "moic"
)

// DefaultGrowthRates is the growth axis used when a caller supplies none.
var DefaultGrowthRates = []float64{-0.02, 0.0, 0.03, 0.06, 0.09}

// DefaultExitMultiples brackets the entry multiple by two turns either side.
func DefaultExitMultiples(entryMultiple float64) []float64 {
	return []float64{math.Max(1.0, entryMultiple-2), entryMultiple, entryMultiple + 2}
}

// Linspace returns steps evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, steps int) []float64 {
	switch {
	case steps <= 0:
		return nil
	case steps == 1:
		return []float64{lo}
	}
	out := make([]float64, steps)
	step := (hi - lo) / float64(steps-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[steps-1] = hi
	return out
}

type GridOptions struct {
	// Workers bounds concurrent engine runs. <= 0 means GOMAXPROCS.
	Workers int
}

// GridCell is one scenario. IRR and MOIC are nil when the run failed or the
// metric is undefined; Error carries the failure text.
type GridCell struct {
	GrowthRate   float64  `json:"growth_rate"`
	ExitMultiple float64  `json:"exit_multiple"`
	IRR          *float64 `json:"irr"`
	MOIC         *float64 `json:"moic"`
	Error        string   `json:"error,omitempty"`
}

// Grid is a growth-rate (rows) by exit-multiple (columns) scenario table.
type Grid struct {
	GrowthRates   []float64    `json:"growth_rates"`
	ExitMultiples []float64    `json:"exit_multiples"`
	Rows          [][]GridCell `json:"rows"`
}

// MetricRange is min/max/range over the defined cells of one metric.
type MetricRange struct {
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Range *float64 `json:"range"`
}

type GridSummary struct {
	IRR    MetricRange `json:"irr"`
	MOIC   MetricRange `json:"moic"`
	Cells  int         `json:"cells"`
	Failed int         `json:"failed"`
}

var ErrEmptyAxis = errors.New("sensitivity axis is empty")

// BuildGrid re-runs the engine for every (growth, exit multiple) pair.
// Each cell applies its growth rate to every projection year and uses a fixed
// exit at its multiple, whatever exit mode the base inputs carry. A failing
// cell is recorded and the rest of the grid still runs; only context
// cancellation aborts the build.
func (e *Engine) BuildGrid(ctx context.Context, base model.Inputs, growthRates, exitMultiples []float64, opts GridOptions) (*Grid, error) {
	if len(growthRates) == 0 || len(exitMultiples) == 0 {
		return nil, ErrEmptyAxis
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	grid := &Grid{
		GrowthRates:   append([]float64(nil), growthRates...),
		ExitMultiples: append([]float64(nil), exitMultiples...),
		Rows:          make([][]GridCell, len(growthRates)),
	}
	for i := range grid.Rows {
		grid.Rows[i] = make([]GridCell, len(exitMultiples))
	}

	hold := base.HoldPeriod()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, growth := range growthRates {
		for j, multiple := range exitMultiples {
			if gctx.Err() != nil {
				break
			}
			i, j, growth, multiple := i, j, growth, multiple // per-iteration copies (pre-Go 1.22 loop semantics)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				// Each goroutine writes only its own cell.
				grid.Rows[i][j] = e.runCell(base, hold, growth, multiple)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}

func (e *Engine) runCell(base model.Inputs, hold int, growth, multiple float64) GridCell {
	cell := GridCell{GrowthRate: growth, ExitMultiple: multiple}

	in := base.Clone()
	in.Operating.RevenueGrowthRates = model.FlatGrowth(growth, hold)
	in.Exit.Mode = model.ExitFixed
	in.Exit.FixedExitMultiple = multiple
	in.Exit.HoldPeriod = hold

	res, err := e.Run(in)
	if err != nil {
		cell.Error = err.Error()
		return cell
	}
	cell.IRR = copyPtr(res.IRR)
	cell.MOIC = copyPtr(res.MOIC)
	return cell
}

// Cells flattens the grid row by row.
func (g *Grid) Cells() []GridCell {
	out := make([]GridCell, 0, len(g.GrowthRates)*len(g.ExitMultiples))
	for _, row := range g.Rows {
		out = append(out, row...)
	}
	return out
}

// Pivot returns metric values indexed [growth][exit multiple].
func (g *Grid) Pivot(m Metric) [][]*float64 {
	out := make([][]*float64, len(g.Rows))
	for i, row := range g.Rows {
		out[i] = make([]*float64, len(row))
		for j, c := range row {
			out[i][j] = copyPtr(c.value(m))
		}
	}
	return out
}

func (g *Grid) Summary() GridSummary {
	s := GridSummary{}
	var irr, moic []float64
	for _, c := range g.Cells() {
		s.Cells++
		if c.Error != "" {
			s.Failed++
		}
		if c.IRR != nil {
			irr = append(irr, *c.IRR)
		}
		if c.MOIC != nil {
			moic = append(moic, *c.MOIC)
		}
	}
	s.IRR = rangeOf(irr)
	s.MOIC = rangeOf(moic)
	return s
}

func (c GridCell) value(m Metric) *float64 {
	if m == MetricMOIC {
		return c.MOIC
	}
	return c.IRR
}

func rangeOf(vals []float64) MetricRange {
	if len(vals) == 0 {
		return MetricRange{}
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	return MetricRange{Min: &lo, Max: &hi, Range: &span}
}
