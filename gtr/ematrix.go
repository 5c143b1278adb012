package gtr

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/seqgen/bio"
)

// imagTolerance is the maximum imaginary part of an eigenvalue or
// eigenvector element which is treated as zero.
const imagTolerance = 1e-8

// EMatrix stores a rate matrix and its eigendecomposition to quickly
// compute e^Qt. The decomposition is performed once.
type EMatrix struct {
	// RM is the decomposed rate matrix.
	RM *RateMatrix
	v  *mat.Dense
	d  []float64
	iv *mat.Dense
}

// NewEMatrix performs eigendecomposition of a rate matrix.
func NewEMatrix(q *RateMatrix) (*EMatrix, error) {
	m := &EMatrix{RM: q}
	if err := m.Eigen(); err != nil {
		return nil, err
	}
	return m, nil
}

// Eigen performs eigendecomposition. Reversible matrices with
// positive frequencies are symmetrized first, otherwise a general
// decomposition is used.
func (m *EMatrix) Eigen() (err error) {
	if m.v != nil {
		return nil
	}
	for _, f := range m.RM.Freq {
		if f <= 0 {
			return m.eigenGeneral()
		}
	}
	return m.eigenSym()
}

// eigenSym decomposes S = F^1/2 Q F^-1/2 which is symmetric for a
// reversible Q. With S = U D U', V = F^-1/2 U and V^-1 = U' F^1/2.
func (m *EMatrix) eigenSym() error {
	n := bio.NNuc
	sq := make([]float64, n)
	for i, f := range m.RM.Freq {
		sq[i] = math.Sqrt(f)
	}
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, sq[i]*m.RM.Q.At(i, j)/sq[j])
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(s, true); !ok {
		return errors.New("symmetric eigendecomposition failed")
	}
	m.d = es.Values(nil)
	var u mat.Dense
	es.VectorsTo(&u)

	m.v = mat.NewDense(n, n, nil)
	m.iv = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.v.Set(i, j, u.At(i, j)/sq[i])
			m.iv.Set(i, j, u.At(j, i)*sq[j])
		}
	}
	return nil
}

// eigenGeneral decomposes Q directly and inverts the eigenvector
// matrix.
func (m *EMatrix) eigenGeneral() error {
	n := bio.NNuc
	var eig mat.Eigen
	if ok := eig.Factorize(m.RM.Q, mat.EigenRight); !ok {
		return errors.New("eigendecomposition failed")
	}
	values := eig.Values(nil)
	m.d = make([]float64, n)
	for i, v := range values {
		if math.Abs(imag(v)) > imagTolerance {
			return errors.New("complex eigenvalues")
		}
		m.d[i] = real(v)
	}
	var cv mat.CDense
	eig.VectorsTo(&cv)
	m.v = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := cv.At(i, j)
			if math.Abs(imag(c)) > imagTolerance {
				return errors.New("complex eigenvectors")
			}
			m.v.Set(i, j, real(c))
		}
	}
	m.iv = mat.NewDense(n, n, nil)
	if err := m.iv.Inverse(m.v); err != nil {
		return err
	}
	return nil
}

// Eigenvalues returns a copy of the eigenvalues.
func (m *EMatrix) Eigenvalues() []float64 {
	return append([]float64(nil), m.d...)
}

// Exp computes P = e^Qt = V diag(e^(d t)) V^-1. Row i of P is the
// distribution of the state after time t starting from state i.
// Small negative values produced by round-off are removed and rows are
// renormalized. Exp panics for negative or infinite t.
func (m *EMatrix) Exp(t float64) *mat.Dense {
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		panic("invalid time")
	}
	n := bio.NNuc
	if t < smallScale || m.RM.IsZero() {
		return identity(n)
	}
	vd := mat.NewDense(n, n, nil)
	vd.Apply(func(i, j int, v float64) float64 {
		return v * math.Exp(m.d[j]*t)
	}, m.v)
	res := mat.NewDense(n, n, nil)
	res.Mul(vd, m.iv)
	// Remove slightly negative values
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			v := math.Max(0, res.At(i, j))
			res.Set(i, j, v)
			sum += v
		}
		for j := 0; j < n; j++ {
			res.Set(i, j, res.At(i, j)/sum)
		}
	}
	return res
}

// identity creates an identity matrix of size size.
func identity(size int) *mat.Dense {
	m := mat.NewDense(size, size, nil)
	for i := 0; i < size; i++ {
		m.Set(i, i, 1)
	}
	return m
}
