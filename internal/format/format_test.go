package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "€270.0M", Currency(270))
	assert.Equal(t, "€144.5M", Currency(144.45))
	assert.Equal(t, "€1,234,567.9M", Currency(1234567.89))
	assert.Equal(t, "€-12.3M", Currency(-12.34))
	assert.Equal(t, "€0.0M", Currency(-0.01))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "15.0%", Percent(0.15))
	assert.Equal(t, "22.9%", Percent(0.2287))
	assert.Equal(t, "-3.5%", Percent(-0.035))
	assert.Equal(t, "1,250.0%", Percent(12.5))
}

func TestMultiple(t *testing.T) {
	assert.Equal(t, "2.50x", Multiple(2.5))
	assert.Equal(t, "10.00x", Multiple(10))
	assert.Equal(t, "1.23x", Multiple(1.2345))
}

func TestPointerVariants(t *testing.T) {
	v := 0.2
	assert.Equal(t, "20.0%", PercentPtr(&v))
	assert.Equal(t, NA, PercentPtr(nil))
	assert.Equal(t, "0.20x", MultiplePtr(&v))
	assert.Equal(t, NA, MultiplePtr(nil))
	assert.Equal(t, "€0.2M", CurrencyPtr(&v))
	assert.Equal(t, NA, CurrencyPtr(nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 12.3, Round(12.34, 1))
	assert.Equal(t, 12.4, Round(12.35, 1))
	assert.Equal(t, -12.4, Round(-12.35, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
}
