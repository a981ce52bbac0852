package lbo

import "math"

const (
	irrTolerance = 1e-10
	irrMaxIter   = 200
	irrLowerRate = -0.9999
	irrUpperRate = 1e6
)

// NPV discounts cashflows[t] at (1+rate)^t.
func NPV(rate float64, cashflows []float64) float64 {
	v := 0.0
	for t, cf := range cashflows {
		v += cf / math.Pow(1+rate, float64(t))
	}
	return v
}

// IRR finds the rate r > -1 at which the NPV of the cashflows is zero.
// ok is false when the series has no sign change or no root could be bracketed.
func IRR(cashflows []float64) (rate float64, ok bool) {
	if !hasSignChange(cashflows) {
		return 0, false
	}

	if r, found := irrNewton(cashflows, 0.1); found {
		return r, true
	}
	return irrBisect(cashflows)
}

func hasSignChange(cashflows []float64) bool {
	pos, neg := false, false
	for _, cf := range cashflows {
		if math.IsNaN(cf) || math.IsInf(cf, 0) {
			return false
		}
		if cf > 0 {
			pos = true
		} else if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}

func irrNewton(cashflows []float64, guess float64) (float64, bool) {
	r := guess
	for i := 0; i < irrMaxIter; i++ {
		f, df := 0.0, 0.0
		for t, cf := range cashflows {
			d := math.Pow(1+r, float64(t))
			f += cf / d
			df -= float64(t) * cf / (d * (1 + r))
		}
		if math.Abs(f) < irrTolerance {
			return r, true
		}
		if df == 0 || math.IsNaN(df) {
			return 0, false
		}
		next := r - f/df
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if math.Abs(next-r) < irrTolerance {
			return next, true
		}
		r = next
	}
	return 0, false
}

// irrBisect expands the upper bound until the NPV changes sign, then bisects.
func irrBisect(cashflows []float64) (float64, bool) {
	lo := irrLowerRate
	fLo := NPV(lo, cashflows)
	hi := 1.0
	fHi := NPV(hi, cashflows)
	for fLo*fHi > 0 {
		if hi >= irrUpperRate {
			return 0, false
		}
		hi *= 10
		fHi = NPV(hi, cashflows)
	}

	for i := 0; i < 500; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(mid, cashflows)
		if math.Abs(fMid) < irrTolerance || (hi-lo)/2 < irrTolerance {
			return mid, true
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2, true
}
