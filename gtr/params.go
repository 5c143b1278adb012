// Package gtr builds general time-reversible nucleotide substitution
// models: rate matrices, their eigendecomposition and transition
// probability matrices.
package gtr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/seqgen/bio"
)

// log is the global logging variable.
var log = logging.MustGetLogger("gtr")

// NRates is the number of exchangeability parameters.
const NRates = 6

// freqTolerance is the maximum allowed deviation of the frequency sum
// from one.
const freqTolerance = 1e-6

// ErrConfig is wrapped by every configuration error of this package.
var ErrConfig = errors.New("configuration error")

// RateNames are the exchangeability parameter names in input order.
var RateNames = [NRates]string{"A<->C", "A<->G", "A<->T", "C<->G", "C<->T", "G<->T"}

// ratePairs maps an exchangeability parameter to the pair of states.
var ratePairs = [NRates][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

// Frequencies are stationary nucleotide frequencies in A, C, G, T
// order.
type Frequencies [bio.NNuc]float64

// Rates are exchangeabilities in A<->C, A<->G, A<->T, C<->G, C<->T,
// G<->T order.
type Rates [NRates]float64

// EqualFrequencies returns equal base frequencies.
func EqualFrequencies() Frequencies {
	return Frequencies{0.25, 0.25, 0.25, 0.25}
}

// EqualRates returns equal exchangeabilities (Jukes-Cantor).
func EqualRates() Rates {
	return Rates{1, 1, 1, 1, 1, 1}
}

// ParseFloatList decodes a comma-delimited list of numbers.
func ParseFloatList(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty list: %w", ErrConfig)
	}
	fields := strings.Split(s, ",")
	res := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("item %d of %q: %v: %w", i+1, s, err, ErrConfig)
		}
		res[i] = v
	}
	return res, nil
}

// NewFrequencies validates base frequencies. Exactly four
// non-negative values summing to one are required; the values are
// never renormalized.
func NewFrequencies(values []float64) (f Frequencies, err error) {
	if len(values) != bio.NNuc {
		return f, fmt.Errorf("must provide %d base frequencies (%d provided): %w", bio.NNuc, len(values), ErrConfig)
	}
	sum := 0.0
	for i, v := range values {
		if v < 0 || math.IsNaN(v) {
			return f, fmt.Errorf("negative base frequency %v: %w", v, ErrConfig)
		}
		f[i] = v
		sum += v
	}
	if math.Abs(sum-1) > freqTolerance {
		return f, fmt.Errorf("base frequencies must sum to 1.0 (sum=%v): %w", sum, ErrConfig)
	}
	return f, nil
}

// NewRates validates exchangeability parameters.
func NewRates(values []float64) (r Rates, err error) {
	if len(values) != NRates {
		return r, fmt.Errorf("must provide %d substitution parameters (%d provided): %w", NRates, len(values), ErrConfig)
	}
	for i, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return r, fmt.Errorf("invalid %s rate %v: %w", RateNames[i], v, ErrConfig)
		}
		r[i] = v
	}
	return r, nil
}

// String returns rates in the input order.
func (r Rates) String() string {
	s := make([]string, NRates)
	for i, v := range r {
		s[i] = fmt.Sprintf("%s=%g", RateNames[i], v)
	}
	return strings.Join(s, ", ")
}

// Paint assigns a rate matrix to the subtree starting with a node.
type Paint struct {
	NodeID int
	Rates  Rates
}

// MultiModel is a background model plus models painted onto
// subtrees. Model 0 is the background, model i+1 is Paints[i].
type MultiModel struct {
	Background Rates
	Paints     []Paint
}

// NModels returns the number of rate matrices.
func (mm *MultiModel) NModels() int {
	return len(mm.Paints) + 1
}

// Rates returns the exchangeabilities of a model by index.
func (mm *MultiModel) Rates(i int) Rates {
	if i == 0 {
		return mm.Background
	}
	return mm.Paints[i-1].Rates
}

// ParseMultiModel decodes a flat multi-model list: six background
// rates followed by groups of seven values (node id and six rates).
func ParseMultiModel(values []float64) (*MultiModel, error) {
	if len(values) < NRates || (len(values)-NRates)%(NRates+1) != 0 {
		return nil, fmt.Errorf("must provide %d background substitution parameters and %d values "+
			"(1 node id + %d subst. par.) for each piecewise model (%d values provided): %w",
			NRates, NRates+1, NRates, len(values), ErrConfig)
	}
	bg, err := NewRates(values[:NRates])
	if err != nil {
		return nil, err
	}
	mm := &MultiModel{Background: bg}
	seen := make(map[int]bool)
	for i := NRates; i < len(values); i += NRates + 1 {
		v := values[i]
		if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
			return nil, fmt.Errorf("node id must be a non-negative integer, got %v: %w", v, ErrConfig)
		}
		id := int(v)
		if seen[id] {
			return nil, fmt.Errorf("node %d is painted more than once: %w", id, ErrConfig)
		}
		seen[id] = true
		r, err := NewRates(values[i+1 : i+NRates+1])
		if err != nil {
			return nil, err
		}
		mm.Paints = append(mm.Paints, Paint{NodeID: id, Rates: r})
	}
	log.Debugf("multi-model: background %v, %d painted model(s)", bg, len(mm.Paints))
	return mm, nil
}
