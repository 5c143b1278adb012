package gtr

import (
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/seqgen/bio"
)

// smallScale is a small value such that if the mean rate is less than
// it, the matrix is considered to be zero.
const smallScale = 1e-30

// RateMatrix is an instantaneous rate matrix of the GTR model. Q is
// scaled so that the mean substitution rate at equilibrium is one.
type RateMatrix struct {
	// Q is the scaled rate matrix; rows sum to zero.
	Q *mat.Dense
	// Scale is the mean rate of the unscaled matrix.
	Scale float64
	Rates Rates
	Freq  Frequencies
}

// NewRateMatrix creates a rate matrix with Q[i][j] = r(i,j)*f[j].
func NewRateMatrix(r Rates, f Frequencies) (*RateMatrix, error) {
	if _, err := NewRates(r[:]); err != nil {
		return nil, err
	}
	if _, err := NewFrequencies(f[:]); err != nil {
		return nil, err
	}
	q := mat.NewDense(bio.NNuc, bio.NNuc, nil)
	for k, p := range ratePairs {
		i, j := p[0], p[1]
		q.Set(i, j, r[k]*f[j])
		q.Set(j, i, r[k]*f[i])
	}
	for i := 0; i < bio.NNuc; i++ {
		rowSum := 0.0
		for j := 0; j < bio.NNuc; j++ {
			if i != j {
				rowSum += q.At(i, j)
			}
		}
		q.Set(i, i, -rowSum)
	}
	scale := 0.0
	for i := 0; i < bio.NNuc; i++ {
		scale += -f[i] * q.At(i, i)
	}
	if scale >= smallScale {
		q.Scale(1/scale, q)
	} else {
		log.Warning("Rate matrix has zero substitution rate")
	}
	return &RateMatrix{Q: q, Scale: scale, Rates: r, Freq: f}, nil
}

// JC69 returns the Jukes-Cantor rate matrix.
func JC69() *RateMatrix {
	m, err := NewRateMatrix(EqualRates(), EqualFrequencies())
	if err != nil {
		panic(err)
	}
	return m
}

// IsZero returns true if the matrix has no substitutions.
func (m *RateMatrix) IsZero() bool {
	return m.Scale < smallScale
}

// String prints Q with nucleotide labels.
func (m *RateMatrix) String() string {
	var b bytes.Buffer
	b.WriteString("\t")
	for i := 0; i < bio.NNuc; i++ {
		fmt.Fprintf(&b, "%c\t", bio.Letter(byte(i)))
	}
	b.WriteByte('\n')
	for i := 0; i < bio.NNuc; i++ {
		fmt.Fprintf(&b, "%c\t", bio.Letter(byte(i)))
		for j := 0; j < bio.NNuc; j++ {
			fmt.Fprintf(&b, "%0.4f\t", m.Q.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
