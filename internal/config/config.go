package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lbo-analyzer/internal/lbo"
	"lbo-analyzer/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load the deal from a separate YAML (e.g. presets/*.yaml).
	// If both DealFile and Deal are provided, non-zero Deal fields override DealFile.
	DealFile    string            `yaml:"deal_file"`
	Deal        DealConfig        `yaml:"deal"`
	Sensitivity SensitivityConfig `yaml:"sensitivity"`
}

// DealConfig is the flat, user-facing deal description shared by YAML files
// and API request bodies.
type DealConfig struct {
	Name        string `yaml:"name" json:"name,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`

	Capital   CapitalConfig   `yaml:"capital" json:"capital"`
	Operating OperatingConfig `yaml:"operating" json:"operating"`
	Debt      DebtConfig      `yaml:"debt" json:"debt"`
	Exit      ExitConfig      `yaml:"exit" json:"exit"`
}

type CapitalConfig struct {
	EntryEBITDA   float64 `yaml:"entry_ebitda" json:"entry_ebitda"`
	EntryMultiple float64 `yaml:"entry_multiple" json:"entry_multiple"`
	DebtToEBITDA  float64 `yaml:"debt_to_ebitda" json:"debt_to_ebitda"`
	// nil picks the default fee; an explicit 0 means no fee.
	TransactionFeePct *float64 `yaml:"transaction_fee_pct" json:"transaction_fee_pct,omitempty"`
	FinancingFeePct   *float64 `yaml:"financing_fee_pct" json:"financing_fee_pct,omitempty"`
	CashOnBS          float64  `yaml:"cash_on_bs" json:"cash_on_bs"`
}

type OperatingConfig struct {
	BaseRevenue float64 `yaml:"base_revenue" json:"base_revenue"`
	// Either an explicit per-year path, or a flat rate repeated for HoldPeriod years.
	RevenueGrowthRates []float64 `yaml:"revenue_growth_rates" json:"revenue_growth_rates,omitempty"`
	RevenueGrowth      float64   `yaml:"revenue_growth" json:"revenue_growth"`
	HoldPeriod         int       `yaml:"hold_period" json:"hold_period"`
	EBITDAMargin       float64   `yaml:"ebitda_margin" json:"ebitda_margin"`
	TaxRate            float64   `yaml:"tax_rate" json:"tax_rate"`
	DAPctRevenue       float64   `yaml:"da_pct_revenue" json:"da_pct_revenue"`
	CapexPctRevenue    float64   `yaml:"capex_pct_revenue" json:"capex_pct_revenue"`
	NWCPctRevenue      float64   `yaml:"nwc_pct_revenue" json:"nwc_pct_revenue"`
}

type DebtConfig struct {
	InterestRate     float64 `yaml:"interest_rate" json:"interest_rate"`
	AmortizationPct  float64 `yaml:"amortization_pct" json:"amortization_pct"`
	CashSweepEnabled *bool   `yaml:"cash_sweep_enabled" json:"cash_sweep_enabled,omitempty"`
	CashSweepPct     float64 `yaml:"cash_sweep_pct" json:"cash_sweep_pct"`
}

type ExitConfig struct {
	Mode string `yaml:"mode" json:"mode"`
	// FixedExitMultiple and IndustryMultiple default to the entry multiple.
	FixedExitMultiple    float64 `yaml:"fixed_exit_multiple" json:"fixed_exit_multiple"`
	IndustryMultiple     float64 `yaml:"industry_multiple" json:"industry_multiple"`
	GrowthMultipleFactor float64 `yaml:"growth_multiple_factor" json:"growth_multiple_factor"`
}

type SensitivityConfig struct {
	GrowthRates   []float64 `yaml:"growth_rates"`
	ExitMultiples []float64 `yaml:"exit_multiples"`
	Workers       int       `yaml:"workers"`
}

// DefaultHoldPeriod is used when neither hold_period nor revenue_growth_rates is set.
const DefaultHoldPeriod = 5

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If deal_file is set, load it and merge in any explicit overrides from c.Deal.
	if c.DealFile != "" {
		dealPath := c.DealFile
		if !filepath.IsAbs(dealPath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), dealPath)
			if _, err := os.Stat(cand); err == nil {
				dealPath = cand
			}
		}
		loaded, err := LoadDealFile(dealPath)
		if err != nil {
			return nil, err
		}
		c.Deal = MergeDeal(loaded, c.Deal)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Deal.ToInputs(); err != nil {
		return fmt.Errorf("deal config invalid: %w", err)
	}
	for _, m := range c.Sensitivity.ExitMultiples {
		if m < 1 {
			return fmt.Errorf("sensitivity.exit_multiples: %v is below 1x", m)
		}
	}
	return nil
}

// GridAxes returns the configured sensitivity axes, falling back to the defaults
// around the deal's entry multiple.
func (c *Config) GridAxes() (growth, multiples []float64) {
	growth = c.Sensitivity.GrowthRates
	if len(growth) == 0 {
		growth = lbo.DefaultGrowthRates
	}
	multiples = c.Sensitivity.ExitMultiples
	if len(multiples) == 0 {
		multiples = lbo.DefaultExitMultiples(c.Deal.Capital.EntryMultiple)
	}
	return growth, multiples
}

// GrowthPath expands the operating config into one growth rate per year.
func (o OperatingConfig) GrowthPath() []float64 {
	if len(o.RevenueGrowthRates) > 0 {
		return append([]float64(nil), o.RevenueGrowthRates...)
	}
	hold := o.HoldPeriod
	if hold == 0 {
		hold = DefaultHoldPeriod
	}
	return model.FlatGrowth(o.RevenueGrowth, hold)
}

// ToInputs converts the flat deal description into validated engine inputs.
func (d DealConfig) ToInputs() (model.Inputs, error) {
	txnFee := model.DefaultTransactionFeePct
	if d.Capital.TransactionFeePct != nil {
		txnFee = *d.Capital.TransactionFeePct
	}
	finFee := model.DefaultFinancingFeePct
	if d.Capital.FinancingFeePct != nil {
		finFee = *d.Capital.FinancingFeePct
	}
	sweep := d.Debt.CashSweepEnabled != nil && *d.Debt.CashSweepEnabled

	mode, err := model.ParseExitMode(d.Exit.Mode)
	if err != nil {
		return model.Inputs{}, fmt.Errorf("exit: %w", err)
	}
	fixed := d.Exit.FixedExitMultiple
	if fixed == 0 {
		fixed = d.Capital.EntryMultiple
	}
	industry := d.Exit.IndustryMultiple
	if industry == 0 {
		industry = d.Capital.EntryMultiple
	}
	factor := d.Exit.GrowthMultipleFactor
	if factor == 0 {
		factor = model.DefaultGrowthMultipleFactor
	}
	growth := d.Operating.GrowthPath()

	return model.NewInputs(
		model.CapitalInputs{
			EntryEBITDA:       d.Capital.EntryEBITDA,
			EntryMultiple:     d.Capital.EntryMultiple,
			DebtToEBITDA:      d.Capital.DebtToEBITDA,
			TransactionFeePct: txnFee,
			FinancingFeePct:   finFee,
			CashOnBS:          d.Capital.CashOnBS,
		},
		model.OperatingAssumptions{
			BaseRevenue:        d.Operating.BaseRevenue,
			RevenueGrowthRates: growth,
			EBITDAMargin:       d.Operating.EBITDAMargin,
			TaxRate:            d.Operating.TaxRate,
			DAPctRevenue:       d.Operating.DAPctRevenue,
			CapexPctRevenue:    d.Operating.CapexPctRevenue,
			NWCPctRevenue:      d.Operating.NWCPctRevenue,
		},
		model.DebtAssumptions{
			InterestRate:     d.Debt.InterestRate,
			AmortizationPct:  d.Debt.AmortizationPct,
			CashSweepEnabled: sweep,
			CashSweepPct:     d.Debt.CashSweepPct,
		},
		model.ExitAssumptions{
			Mode:                 mode,
			FixedExitMultiple:    fixed,
			EntryMultiple:        d.Capital.EntryMultiple,
			IndustryMultiple:     industry,
			HoldPeriod:           len(growth),
			GrowthMultipleFactor: factor,
		},
	)
}

type dealFileWrapper struct {
	Deal DealConfig `yaml:"deal"`
}

// LoadDealFile reads a YAML file holding a top-level `deal:` block.
func LoadDealFile(path string) (DealConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return DealConfig{}, err
	}
	var w dealFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return DealConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Deal, nil
}

// MergeDeal overlays non-zero fields from override onto base.
// This is used when loading a deal file and then applying overrides from the request.
func MergeDeal(base, override DealConfig) DealConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Description != "" {
		out.Description = override.Description
	}

	c := override.Capital
	if c.EntryEBITDA != 0 {
		out.Capital.EntryEBITDA = c.EntryEBITDA
	}
	if c.EntryMultiple != 0 {
		out.Capital.EntryMultiple = c.EntryMultiple
	}
	if c.DebtToEBITDA != 0 {
		out.Capital.DebtToEBITDA = c.DebtToEBITDA
	}
	if c.TransactionFeePct != nil {
		out.Capital.TransactionFeePct = c.TransactionFeePct
	}
	if c.FinancingFeePct != nil {
		out.Capital.FinancingFeePct = c.FinancingFeePct
	}
	if c.CashOnBS != 0 {
		out.Capital.CashOnBS = c.CashOnBS
	}

	o := override.Operating
	if o.BaseRevenue != 0 {
		out.Operating.BaseRevenue = o.BaseRevenue
	}
	if len(o.RevenueGrowthRates) > 0 {
		out.Operating.RevenueGrowthRates = append([]float64(nil), o.RevenueGrowthRates...)
	}
	// A flat rate or hold period override replaces an explicit path from the base.
	if o.RevenueGrowth != 0 {
		out.Operating.RevenueGrowth = o.RevenueGrowth
		if len(o.RevenueGrowthRates) == 0 {
			out.Operating.RevenueGrowthRates = nil
		}
	}
	if o.HoldPeriod != 0 {
		out.Operating.HoldPeriod = o.HoldPeriod
		if len(o.RevenueGrowthRates) == 0 && len(out.Operating.RevenueGrowthRates) > 0 {
			out.Operating.RevenueGrowth = out.Operating.RevenueGrowthRates[0]
			out.Operating.RevenueGrowthRates = nil
		}
	}
	// Note: these are allowed to be 0 in theory, but an override cannot express that.
	if o.EBITDAMargin != 0 {
		out.Operating.EBITDAMargin = o.EBITDAMargin
	}
	if o.TaxRate != 0 {
		out.Operating.TaxRate = o.TaxRate
	}
	if o.DAPctRevenue != 0 {
		out.Operating.DAPctRevenue = o.DAPctRevenue
	}
	if o.CapexPctRevenue != 0 {
		out.Operating.CapexPctRevenue = o.CapexPctRevenue
	}
	if o.NWCPctRevenue != 0 {
		out.Operating.NWCPctRevenue = o.NWCPctRevenue
	}

	d := override.Debt
	if d.InterestRate != 0 {
		out.Debt.InterestRate = d.InterestRate
	}
	if d.AmortizationPct != 0 {
		out.Debt.AmortizationPct = d.AmortizationPct
	}
	if d.CashSweepEnabled != nil {
		out.Debt.CashSweepEnabled = d.CashSweepEnabled
	}
	if d.CashSweepPct != 0 {
		out.Debt.CashSweepPct = d.CashSweepPct
	}

	e := override.Exit
	if e.Mode != "" {
		out.Exit.Mode = e.Mode
	}
	if e.FixedExitMultiple != 0 {
		out.Exit.FixedExitMultiple = e.FixedExitMultiple
	}
	if e.IndustryMultiple != 0 {
		out.Exit.IndustryMultiple = e.IndustryMultiple
	}
	if e.GrowthMultipleFactor != 0 {
		out.Exit.GrowthMultipleFactor = e.GrowthMultipleFactor
	}
	return out
}

// SampleDeal is the reference deal used by the demo and as the API's fallback preset.
func SampleDeal() DealConfig {
	sweep := true
	txn, fin := model.DefaultTransactionFeePct, model.DefaultFinancingFeePct
	return DealConfig{
		Name:        "Sample Co.",
		Description: "Business services target at 10x with 5x leverage",
		Capital: CapitalConfig{
			EntryEBITDA:       27,
			EntryMultiple:     10,
			DebtToEBITDA:      5,
			TransactionFeePct: &txn,
			FinancingFeePct:   &fin,
		},
		Operating: OperatingConfig{
			BaseRevenue:     145,
			RevenueGrowth:   0.05,
			HoldPeriod:      DefaultHoldPeriod,
			EBITDAMargin:    0.20,
			TaxRate:         0.25,
			DAPctRevenue:    0.03,
			CapexPctRevenue: 0.03,
			NWCPctRevenue:   0.10,
		},
		Debt: DebtConfig{
			InterestRate:     0.06,
			AmortizationPct:  0.05,
			CashSweepEnabled: &sweep,
			CashSweepPct:     0.5,
		},
		Exit: ExitConfig{
			Mode:                 string(model.ExitFixed),
			FixedExitMultiple:    10,
			IndustryMultiple:     12,
			GrowthMultipleFactor: model.DefaultGrowthMultipleFactor,
		},
	}
}
