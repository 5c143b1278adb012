// Package sim simulates nucleotide sequences along a phylogenetic
// tree under GTR models with gamma rate heterogeneity, invariant sites
// and models painted onto subtrees.
package sim

import (
	"fmt"
	"math"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/seqgen/bio"
	"bitbucket.org/Davydov/seqgen/gtr"
)

// log is the global logging variable.
var log = logging.MustGetLogger("sim")

// ErrConfig is wrapped by configuration and input validation errors.
// It is the same value as gtr.ErrConfig.
var ErrConfig = gtr.ErrConfig

const (
	// DefaultLength is the default number of sites.
	DefaultLength = 1000
	// DefaultNCat is the default number of discrete gamma categories.
	DefaultNCat = 4
)

// Config stores all the generator settings.
type Config struct {
	// Length is the number of sites to simulate.
	Length int
	// Freq are base frequencies of the root sequence and of the
	// rate matrices.
	Freq gtr.Frequencies
	// Rates are the exchangeabilities of the single model. Ignored
	// if MultiModel is set.
	Rates gtr.Rates
	// MultiModel is an optional background model plus models
	// painted onto subtrees.
	MultiModel *gtr.MultiModel
	// Alpha is the gamma shape parameter; values <= 0 disable rate
	// variation among sites.
	Alpha float64
	// NCat is the number of discrete gamma categories.
	NCat int
	// Invariant is the proportion of invariant sites.
	Invariant float64
	// ClockRate multiplies all the branch lengths.
	ClockRate float64
	// Seed initializes the random number generator.
	Seed int64
	// Ancestors enables output of internal node sequences.
	Ancestors bool
	// NodeLabels names internal nodes by their label (or id)
	// instead of a placeholder.
	NodeLabels bool
	// RootSequence fixes the root sequence; empty means sampled
	// from Freq.
	RootSequence string
}

// DefaultConfig returns Jukes-Cantor settings with 1000 sites and
// no rate variation.
func DefaultConfig() Config {
	return Config{
		Length:    DefaultLength,
		Freq:      gtr.EqualFrequencies(),
		Rates:     gtr.EqualRates(),
		NCat:      DefaultNCat,
		ClockRate: 1,
	}
}

// configErrorf returns a formatted error wrapping ErrConfig.
func configErrorf(format string, a ...interface{}) error {
	return fmt.Errorf(format+": %w", append(a, ErrConfig)...)
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Length <= 0 {
		return configErrorf("sequence length must be positive, got %d", c.Length)
	}
	if math.IsNaN(c.Invariant) || c.Invariant < 0 || c.Invariant > 1 {
		return configErrorf("proportion of invariant sites must be in [0, 1], got %v", c.Invariant)
	}
	if math.IsNaN(c.Alpha) || math.IsInf(c.Alpha, 0) {
		return configErrorf("invalid gamma shape %v", c.Alpha)
	}
	if c.Alpha > 0 && c.NCat < 1 {
		return configErrorf("number of gamma categories must be positive, got %d", c.NCat)
	}
	if !(c.ClockRate > 0) || math.IsInf(c.ClockRate, 0) {
		return configErrorf("clock rate must be positive, got %v", c.ClockRate)
	}
	if _, err := gtr.NewFrequencies(c.Freq[:]); err != nil {
		return err
	}
	if c.RootSequence != "" {
		if len(c.RootSequence) != c.Length {
			return configErrorf("root sequence length (%d) differs from sequence length (%d)",
				len(c.RootSequence), c.Length)
		}
		if _, err := bio.Encode(c.RootSequence); err != nil {
			return configErrorf("root sequence: %v", err)
		}
	}
	return nil
}

// models returns exchangeabilities of all the models; model 0 is
// the background.
func (c *Config) models() []gtr.Rates {
	if c.MultiModel == nil {
		return []gtr.Rates{c.Rates}
	}
	res := make([]gtr.Rates, c.MultiModel.NModels())
	for i := range res {
		res[i] = c.MultiModel.Rates(i)
	}
	return res
}

// paints returns node id to model index mapping.
func (c *Config) paints() map[int]int {
	res := make(map[int]int)
	if c.MultiModel == nil {
		return res
	}
	for i, p := range c.MultiModel.Paints {
		res[p.NodeID] = i + 1
	}
	return res
}
