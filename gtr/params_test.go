package gtr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFloatList(t *testing.T) {
	v, err := ParseFloatList(" .3, 0.2,0.25 ,0.25")
	require.NoError(t, err)
	require.Equal(t, []float64{0.3, 0.2, 0.25, 0.25}, v)

	for _, s := range []string{"", "1,,2", "a,b", "1;2"} {
		_, err := ParseFloatList(s)
		require.Error(t, err, s)
		require.True(t, errors.Is(err, ErrConfig))
	}
}

func TestNewFrequencies(t *testing.T) {
	f, err := NewFrequencies([]float64{0.25, 0.25, 0.25, 0.25})
	require.NoError(t, err)
	require.Equal(t, EqualFrequencies(), f)

	_, err = NewFrequencies([]float64{0.3, 0.3, 0.3, 0.3})
	require.ErrorIs(t, err, ErrConfig)

	_, err = NewFrequencies([]float64{0.5, 0.5, 0})
	require.ErrorIs(t, err, ErrConfig)

	_, err = NewFrequencies([]float64{1.2, -0.2, 0, 0})
	require.ErrorIs(t, err, ErrConfig)

	// within tolerance, not renormalized
	f, err = NewFrequencies([]float64{0.1, 0.2, 0.3, 0.4000001})
	require.NoError(t, err)
	require.Equal(t, 0.4000001, f[3])
}

func TestNewRates(t *testing.T) {
	_, err := NewRates([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	_, err = NewRates([]float64{1, 2, 3, 4, 5})
	require.ErrorIs(t, err, ErrConfig)
	_, err = NewRates([]float64{1, 2, 3, 4, 5, -6})
	require.ErrorIs(t, err, ErrConfig)
}

func TestParseMultiModel(t *testing.T) {
	bg := []float64{1, 2, 1, 1, 2, 1}

	mm, err := ParseMultiModel(bg)
	require.NoError(t, err)
	require.Equal(t, 1, mm.NModels())
	require.Equal(t, Rates{1, 2, 1, 1, 2, 1}, mm.Rates(0))

	v13 := append(append([]float64{}, bg...), 3, .3, .3, .2, .5, .4, 1)
	mm, err = ParseMultiModel(v13)
	require.NoError(t, err)
	require.Equal(t, 2, mm.NModels())
	require.Equal(t, 3, mm.Paints[0].NodeID)
	require.Equal(t, Rates{.3, .3, .2, .5, .4, 1}, mm.Rates(1))

	_, err = ParseMultiModel(v13[:10])
	require.ErrorIs(t, err, ErrConfig)
	_, err = ParseMultiModel(bg[:3])
	require.ErrorIs(t, err, ErrConfig)

	// fractional node id
	bad := append([]float64{}, v13...)
	bad[6] = 2.5
	_, err = ParseMultiModel(bad)
	require.ErrorIs(t, err, ErrConfig)

	// same node painted twice
	dup := append(append([]float64{}, v13...), v13[6:]...)
	_, err = ParseMultiModel(dup)
	require.ErrorIs(t, err, ErrConfig)
}
