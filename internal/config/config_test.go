package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lbo-analyzer/internal/model"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const baseDeal = `deal:
  name: Base Co.
  capital:
    entry_ebitda: 27
    entry_multiple: 10
    debt_to_ebitda: 5
  operating:
    base_revenue: 145
    revenue_growth: 0.05
    hold_period: 5
    ebitda_margin: 0.2
    tax_rate: 0.25
    da_pct_revenue: 0.03
    capex_pct_revenue: 0.03
    nwc_pct_revenue: 0.1
  debt:
    interest_rate: 0.06
    amortization_pct: 0.05
    cash_sweep_enabled: true
    cash_sweep_pct: 0.5
  exit:
    mode: fixed
    fixed_exit_multiple: 10
`

func TestLoad_DealFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "presets/base.yaml", baseDeal)
	path := writeFile(t, dir, "deal.yaml", `deal_file: presets/base.yaml
deal:
  name: Levered Co.
  capital:
    debt_to_ebitda: 6
    transaction_fee_pct: 0
  debt:
    cash_sweep_enabled: false
  exit:
    mode: mean_reversion
    industry_multiple: 12
sensitivity:
  growth_rates: [0, 0.05]
  exit_multiples: [8, 12]
  workers: 2
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Levered Co.", c.Deal.Name)
	assert.Equal(t, 27.0, c.Deal.Capital.EntryEBITDA)
	assert.Equal(t, 6.0, c.Deal.Capital.DebtToEBITDA)
	require.NotNil(t, c.Deal.Capital.TransactionFeePct)
	assert.Equal(t, 0.0, *c.Deal.Capital.TransactionFeePct)
	require.NotNil(t, c.Deal.Debt.CashSweepEnabled)
	assert.False(t, *c.Deal.Debt.CashSweepEnabled)
	assert.Equal(t, 0.06, c.Deal.Debt.InterestRate)

	in, err := c.Deal.ToInputs()
	require.NoError(t, err)
	assert.Equal(t, 0.0, in.Capital.TransactionFeePct)
	assert.Equal(t, model.DefaultFinancingFeePct, in.Capital.FinancingFeePct)
	assert.Equal(t, model.ExitMeanReversion, in.Exit.Mode)
	assert.Equal(t, 12.0, in.Exit.IndustryMultiple)
	assert.Equal(t, 10.0, in.Exit.EntryMultiple)
	assert.False(t, in.Debt.CashSweepEnabled)
	assert.Equal(t, model.FlatGrowth(0.05, 5), in.Operating.RevenueGrowthRates)

	growth, multiples := c.GridAxes()
	assert.Equal(t, []float64{0, 0.05}, growth)
	assert.Equal(t, []float64{8, 12}, multiples)
	assert.Equal(t, 2, c.Sensitivity.Workers)
}

func TestLoad_RelativeToCwdFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "deal.yaml", "deal_file: does/not/exist.yaml\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidDeal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "deal.yaml", `deal:
  capital:
    entry_ebitda: 0
    entry_multiple: 10
  operating:
    base_revenue: 100
    ebitda_margin: 0.2
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalid)
	assert.Contains(t, err.Error(), "entry_ebitda")

	c, err := LoadUnchecked(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.Deal.Capital.EntryMultiple)
}

func TestLoad_BadSensitivity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", baseDeal)
	path := writeFile(t, dir, "deal.yaml", "deal_file: base.yaml\nsensitivity:\n  exit_multiples: [0.5]\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "exit_multiples")
}

func TestGridAxes_Defaults(t *testing.T) {
	c := &Config{Deal: SampleDeal()}
	growth, multiples := c.GridAxes()
	assert.Len(t, growth, 5)
	assert.Equal(t, []float64{8, 10, 12}, multiples)
}

func TestToInputs_Defaults(t *testing.T) {
	d := DealConfig{
		Capital:   CapitalConfig{EntryEBITDA: 20, EntryMultiple: 9, DebtToEBITDA: 4},
		Operating: OperatingConfig{BaseRevenue: 100, RevenueGrowth: 0.04, EBITDAMargin: 0.2},
	}
	in, err := d.ToInputs()
	require.NoError(t, err)

	assert.Equal(t, DefaultHoldPeriod, in.HoldPeriod())
	assert.Equal(t, model.DefaultTransactionFeePct, in.Capital.TransactionFeePct)
	assert.Equal(t, model.ExitFixed, in.Exit.Mode)
	assert.Equal(t, 9.0, in.Exit.FixedExitMultiple)
	assert.Equal(t, 9.0, in.Exit.IndustryMultiple)
	assert.Equal(t, model.DefaultGrowthMultipleFactor, in.Exit.GrowthMultipleFactor)
	assert.False(t, in.Debt.CashSweepEnabled)

	d.Exit.Mode = "bogus"
	_, err = d.ToInputs()
	assert.ErrorIs(t, err, model.ErrInvalid)
}

func TestMergeDeal_GrowthPath(t *testing.T) {
	base := SampleDeal()
	base.Operating.RevenueGrowthRates = []float64{0.1, 0.08, 0.06}

	kept := MergeDeal(base, DealConfig{})
	assert.Equal(t, []float64{0.1, 0.08, 0.06}, kept.Operating.GrowthPath())

	flat := MergeDeal(base, DealConfig{Operating: OperatingConfig{RevenueGrowth: 0.02}})
	assert.Equal(t, model.FlatGrowth(0.02, DefaultHoldPeriod), flat.Operating.GrowthPath())

	longer := MergeDeal(base, DealConfig{Operating: OperatingConfig{HoldPeriod: 7}})
	assert.Equal(t, model.FlatGrowth(0.1, 7), longer.Operating.GrowthPath())

	explicit := MergeDeal(base, DealConfig{Operating: OperatingConfig{RevenueGrowthRates: []float64{0.2}}})
	assert.Equal(t, []float64{0.2}, explicit.Operating.GrowthPath())
}

func TestSampleDeal_IsValid(t *testing.T) {
	in, err := SampleDeal().ToInputs()
	require.NoError(t, err)
	assert.Equal(t, 27.0, in.Capital.EntryEBITDA)
	assert.True(t, in.Debt.CashSweepEnabled)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "lbo:", cfg.RedisPrefix)
	assert.False(t, cfg.IsProduction())
}

func TestLoadServer_Rejects(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")
	_, err := LoadServer()
	assert.ErrorContains(t, err, "CACHE_BACKEND")

	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("GRID_WORKERS", "-1")
	_, err = LoadServer()
	assert.ErrorContains(t, err, "GRID_WORKERS")
}

func TestServerConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &ServerConfig{LogFormat: "json"}
	cfg.NewLogger(&buf).Info("hello", "k", 1)
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg = &ServerConfig{LogFormat: "text"}
	cfg.NewLogger(&buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")

	buf.Reset()
	cfg = &ServerConfig{LogFormat: "text", Env: "production"}
	cfg.NewLogger(&buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
