package dist

import (
	"math"
	"testing"
)

const smallDiff = 1e-4

type Settings struct {
	n      int
	a, b   float64
	median bool
}

/*** Tests if a and b are approximately equal ***/
func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

/*** Tests that arrays have approximately same values ***/
func cmp(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !appreq(a[i], b[i]) {
			return false
		}
	}
	return true
}

/*** Test discrete gamma ***/
func TestGamma(tst *testing.T) {
	settings := [...]Settings{
		{4, 0.5, 10, false},
		{4, 0.5, 10, true},
		{8, 2, .1, false},
		{7, 15, 1, true},
		{4, 1.16, 3.54, false},
		{4, 1.16, 3.54, true},
	}
	results := [...]([]float64){
		{0.001669, 0.012596, 0.041013, 0.144721},
		{0.001454, 0.014036, 0.046239, 0.138272},
		{3.848344, 7.882645, 11.320993, 14.879554, 18.906079, 23.893507, 31.028044, 48.240834},
		{9.793787, 11.891047, 13.362596, 14.722906, 16.172736, 17.973174, 21.083754},
		{0.054962, 0.170420, 0.334948, 0.750405},
		{0.059239, 0.182032, 0.355645, 0.713819},
	}
	for i, s := range settings {
		tmp := make([]float64, s.n)
		r := DiscreteGamma(s.a, s.b, s.n, s.median, tmp, nil)
		if !cmp(r, results[i]) {
			tst.Error("Results missmatch:", r, results[i])
		}
	}
}

/*** Site rates have mean one and increase ***/
func TestSiteGamma(tst *testing.T) {
	for _, alpha := range []float64{0.1, 0.5, 1, 2, 10} {
		for k := 1; k <= 8; k++ {
			r := SiteGamma(alpha, k)
			sum := 0.0
			for i, v := range r {
				sum += v
				if i > 0 && v < r[i-1] {
					tst.Errorf("Rates are not increasing; alpha=%v, k=%d: %v", alpha, k, r)
				}
			}
			if !appreq(sum/float64(k), 1) {
				tst.Errorf("Mean rate is not one; alpha=%v, k=%d: %v", alpha, k, r)
			}
		}
	}
}
