package sim

import (
	"math/rand/v2"

	"bitbucket.org/Davydov/seqgen/dist"
)

// SiteRates stores rate multipliers for every site. Rates take a
// small number of distinct values, every site refers to one of them.
type SiteRates struct {
	// Values are the distinct rates; Values[0] is always 0
	// (invariant sites).
	Values []float64
	// Index stores position of the site rate in Values.
	Index []int
}

// Rate returns the rate multiplier of a site.
func (sr *SiteRates) Rate(site int) float64 {
	return sr.Values[sr.Index[site]]
}

// Len returns the number of sites.
func (sr *SiteRates) Len() int {
	return len(sr.Index)
}

// Used returns which of the Values are used by at least one site.
func (sr *SiteRates) Used() []bool {
	used := make([]bool, len(sr.Values))
	for _, i := range sr.Index {
		used[i] = true
	}
	return used
}

// NInvariant returns the number of invariant sites.
func (sr *SiteRates) NInvariant() (n int) {
	for _, i := range sr.Index {
		if i == 0 {
			n++
		}
	}
	return
}

// AssignSiteRates draws a rate for every site. A site is invariant
// with probability pinv. Otherwise one of the gamma categories is
// chosen with equal probability, or rate 1 is used if gamma is nil.
// No random numbers are consumed for a disabled mechanism.
func AssignSiteRates(rng *rand.Rand, length int, gamma []float64, pinv float64) *SiteRates {
	sr := &SiteRates{
		Values: []float64{0},
		Index:  make([]int, length),
	}
	if gamma == nil {
		sr.Values = append(sr.Values, 1)
	} else {
		sr.Values = append(sr.Values, gamma...)
	}
	ncat := len(sr.Values) - 1
	for i := range sr.Index {
		if pinv > 0 && rng.Float64() < pinv {
			sr.Index[i] = 0
			continue
		}
		if ncat > 1 {
			sr.Index[i] = 1 + rng.IntN(ncat)
		} else {
			sr.Index[i] = 1
		}
	}
	return sr
}

// gammaCategories returns site gamma categories for the settings or
// nil if rate variation is disabled.
func gammaCategories(alpha float64, ncat int) []float64 {
	if alpha <= 0 {
		return nil
	}
	return dist.SiteGamma(alpha, ncat)
}
