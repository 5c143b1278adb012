package gtr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"bitbucket.org/Davydov/seqgen/bio"
)

func testMatrices(t *testing.T) []*RateMatrix {
	t.Helper()
	settings := []struct {
		r Rates
		f Frequencies
	}{
		{EqualRates(), EqualFrequencies()},
		{Rates{1, 4, 1, 1, 4, 1}, EqualFrequencies()},
		{Rates{0.3, 0.3, 0.3, 0.3, 0.3, 1}, Frequencies{0.1, 0.2, 0.3, 0.4}},
		{Rates{1.2, 3.4, 0.5, 0.8, 4.1, 1}, Frequencies{0.35, 0.15, 0.2, 0.3}},
		{Rates{1, 2, 3, 4, 5, 6}, Frequencies{0.5, 0.5, 0, 0}},
	}
	res := make([]*RateMatrix, len(settings))
	for i, s := range settings {
		m, err := NewRateMatrix(s.r, s.f)
		require.NoError(t, err)
		res[i] = m
	}
	return res
}

func TestRateMatrixRows(t *testing.T) {
	for _, m := range testMatrices(t) {
		mean := 0.0
		for i := 0; i < bio.NNuc; i++ {
			sum := 0.0
			for j := 0; j < bio.NNuc; j++ {
				sum += m.Q.At(i, j)
				if i != j {
					require.GreaterOrEqual(t, m.Q.At(i, j), 0.0)
				}
			}
			require.InDelta(t, 0, sum, 1e-9)
			mean -= m.Freq[i] * m.Q.At(i, i)
		}
		require.InDelta(t, 1, mean, 1e-9)
	}
}

func TestJC69(t *testing.T) {
	m := JC69()
	for i := 0; i < bio.NNuc; i++ {
		for j := 0; j < bio.NNuc; j++ {
			if i == j {
				require.InDelta(t, -1, m.Q.At(i, j), 1e-12)
			} else {
				require.InDelta(t, 1.0/3, m.Q.At(i, j), 1e-12)
			}
		}
	}

	e, err := NewEMatrix(m)
	require.NoError(t, err)
	// analytical JC69 transition probabilities
	for _, tm := range []float64{0.01, 0.1, 0.5, 2} {
		p := e.Exp(tm)
		same := 0.25 + 0.75*math.Exp(-4*tm/3)
		diff := 0.25 - 0.25*math.Exp(-4*tm/3)
		for i := 0; i < bio.NNuc; i++ {
			for j := 0; j < bio.NNuc; j++ {
				if i == j {
					require.InDelta(t, same, p.At(i, j), 1e-9)
				} else {
					require.InDelta(t, diff, p.At(i, j), 1e-9)
				}
			}
		}
	}
}

func TestExpStochastic(t *testing.T) {
	for _, m := range testMatrices(t) {
		e, err := NewEMatrix(m)
		require.NoError(t, err)
		for _, tm := range []float64{0, 1e-8, 0.05, 0.3, 1, 5, 50} {
			p := e.Exp(tm)
			for i := 0; i < bio.NNuc; i++ {
				sum := 0.0
				for j := 0; j < bio.NNuc; j++ {
					require.GreaterOrEqual(t, p.At(i, j), 0.0)
					sum += p.At(i, j)
				}
				require.InDelta(t, 1, sum, 1e-6)
			}
		}
	}
}

func TestExpIdentity(t *testing.T) {
	for _, m := range testMatrices(t) {
		e, err := NewEMatrix(m)
		require.NoError(t, err)
		p := e.Exp(0)
		for i := 0; i < bio.NNuc; i++ {
			for j := 0; j < bio.NNuc; j++ {
				exp := 0.0
				if i == j {
					exp = 1
				}
				require.InDelta(t, exp, p.At(i, j), 1e-9)
			}
		}
	}
}

func TestExpStationary(t *testing.T) {
	m := testMatrices(t)[3]
	e, err := NewEMatrix(m)
	require.NoError(t, err)
	p := e.Exp(200)
	for i := 0; i < bio.NNuc; i++ {
		for j := 0; j < bio.NNuc; j++ {
			require.InDelta(t, m.Freq[j], p.At(i, j), 1e-6)
		}
	}
}

func TestExpNegative(t *testing.T) {
	e, err := NewEMatrix(JC69())
	require.NoError(t, err)
	require.Panics(t, func() { e.Exp(-1) })
}

func TestZeroMatrix(t *testing.T) {
	m, err := NewRateMatrix(Rates{}, EqualFrequencies())
	require.NoError(t, err)
	require.True(t, m.IsZero())
	e, err := NewEMatrix(m)
	require.NoError(t, err)
	p := e.Exp(1)
	require.Equal(t, 1.0, p.At(2, 2))
	require.Equal(t, 0.0, p.At(2, 1))
}

func TestEigenvaluesJC69(t *testing.T) {
	e, err := NewEMatrix(JC69())
	require.NoError(t, err)
	d := e.Eigenvalues()
	require.Len(t, d, bio.NNuc)
	zeros := 0
	for _, v := range d {
		if math.Abs(v) < 1e-9 {
			zeros++
		} else {
			require.InDelta(t, -4.0/3, v, 1e-9)
		}
	}
	require.Equal(t, 1, zeros)
}
