// Package dist implements discretization of continuous distributions
// used for rate heterogeneity among sites.
package dist

import (
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// QuantileGamma returns quantile for gamma distribution with shape
// alpha and rate beta.
func QuantileGamma(prob, alpha, beta float64) float64 {
	return distuv.Gamma{Alpha: alpha, Beta: beta}.Quantile(prob)
}

// IncompleteGamma returns the regularized lower incomplete gamma
// function P(alpha, x).
func IncompleteGamma(x, alpha float64) float64 {
	return mathext.GammaIncReg(alpha, x)
}

// DiscreteGamma returns K equiprobable categories of G(alpha, beta).
//
// With useMedian every category is represented by its median and the
// values are rescaled so the mean is alpha/beta. Otherwise the mean of
// every category is used (Yang 1994). tmp and res are optional
// buffers of length K.
func DiscreteGamma(alpha, beta float64, K int, useMedian bool, tmp, res []float64) []float64 {
	mean := alpha / beta

	if res == nil {
		res = make([]float64, K)
	}
	if K == 1 {
		res[0] = mean
		return res
	}
	if tmp == nil {
		tmp = make([]float64, K)
	}

	if useMedian {
		t := 0.0
		for i := 0; i < K; i++ {
			res[i] = QuantileGamma((float64(i)*2+1)/(2*float64(K)), alpha, beta)
			t += res[i]
		}
		for i := 0; i < K; i++ {
			res[i] *= mean * float64(K) / t
		}
		return res
	}

	// cutting points
	for i := 0; i < K-1; i++ {
		tmp[i] = QuantileGamma((float64(i)+1)/float64(K), alpha, beta)
	}
	// proportion of the mean below every cutting point
	for i := 0; i < K-1; i++ {
		tmp[i] = IncompleteGamma(tmp[i]*beta, alpha+1)
	}
	res[0] = tmp[0] * mean * float64(K)
	for i := 1; i < K-1; i++ {
		res[i] = (tmp[i] - tmp[i-1]) * mean * float64(K)
	}
	res[K-1] = (1 - tmp[K-2]) * mean * float64(K)

	return res
}

// SiteGamma returns K categories of the gamma distribution with shape
// alpha and mean one, as used for rates among sites.
func SiteGamma(alpha float64, K int) []float64 {
	return DiscreteGamma(alpha, alpha, K, false, nil, nil)
}
