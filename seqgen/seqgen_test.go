package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bitbucket.org/Davydov/seqgen/bio"
	"bitbucket.org/Davydov/seqgen/checkpoint"
	"bitbucket.org/Davydov/seqgen/sim"
)

const trees = "((a:0.1,b:0.2):0.05,c:0.3);\n(d:0.5,(e:0.1,f:0.1)x:0.2);\n"

func TestFlagsOverrideConfig(t *testing.T) {
	fn := writeConfig(t, "length: 50\nnreps: 3\ngamma: 0.5\n")
	userFlags = map[string]bool{}
	_, err := app.Parse([]string{"--config", fn, "-l", "20", "-b", ".1,.2,.3,.4"})
	require.NoError(t, err)

	s, err := newSettings()
	require.NoError(t, err)
	require.Equal(t, 20, s.Length)
	require.Equal(t, 3, s.NReps)
	require.Equal(t, 0.5, s.Gamma)
	require.Equal(t, floatList{.1, .2, .3, .4}, s.BaseF)
	// not set anywhere
	require.Equal(t, int64(-1), s.Seed)
	require.Nil(t, s.RateMat)
}

func TestSimulate(t *testing.T) {
	s := defaultSettings()
	s.Length = 30
	s.NReps = 2
	s.Seed = 3
	s.Ancestors = true

	var b bytes.Buffer
	summary := &RunSummary{}
	require.NoError(t, simulate(s, strings.NewReader(trees), &b, summary))
	require.Equal(t, 2, summary.Trees)
	// (3 leaves + 2 internal) * 2 + (3 leaves + 2 internal) * 2
	require.Equal(t, 20, summary.Sequences)

	seqs, err := bio.ParseFasta(&b)
	require.NoError(t, err)
	require.Len(t, seqs, 20)
	require.Equal(t, "anc1", seqs[0].Name)
	for _, seq := range seqs {
		require.Len(t, seq.Sequence, 30)
	}
}

func TestSimulateErrors(t *testing.T) {
	s := defaultSettings()
	s.Seed = 1
	var b bytes.Buffer
	err := simulate(s, strings.NewReader("((a:1,b:-1):1,c:1);"), &b, &RunSummary{})
	require.Error(t, err)

	s.MultiModel = floatList{1, 1, 1, 1, 1, 1, 42, 1, 1, 1, 1, 1, 1}
	err = simulate(s, strings.NewReader("(a:1,b:1);"), &b, &RunSummary{})
	require.Error(t, err)
}

func TestCheckpointResume(t *testing.T) {
	s := defaultSettings()
	s.Length = 40
	s.NReps = 2
	s.Seed = 11

	var plain bytes.Buffer
	require.NoError(t, simulate(s, strings.NewReader(trees), &plain, &RunSummary{}))

	s.Checkpoint = filepath.Join(t.TempDir(), "ckp.db")
	// interrupted run: only the first tree
	var first bytes.Buffer
	require.NoError(t, simulate(s, strings.NewReader(strings.SplitAfter(trees, "\n")[0]), &first, &RunSummary{}))

	var resumed bytes.Buffer
	summary := &RunSummary{}
	require.NoError(t, simulate(s, strings.NewReader(trees), &resumed, summary))
	require.Equal(t, 2, summary.Resumed)
	require.Equal(t, plain.String(), resumed.String())
	require.True(t, strings.HasPrefix(resumed.String(), first.String()))
}

func TestCheckpointOtherSettings(t *testing.T) {
	s := defaultSettings()
	s.Length = 40
	s.Seed = 5
	s.Checkpoint = filepath.Join(t.TempDir(), "ckp.db")

	var b bytes.Buffer
	require.NoError(t, simulate(s, strings.NewReader(trees), &b, &RunSummary{}))

	s.Length = 10
	b.Reset()
	err := simulate(s, strings.NewReader(trees), &b, &RunSummary{})
	require.ErrorIs(t, err, sim.ErrConfig)
	require.ErrorIs(t, err, checkpoint.ErrMismatch)
	require.Zero(t, b.Len())

	s.Length = 40
	s.Seed = 6
	err = simulate(s, strings.NewReader(trees), &b, &RunSummary{})
	require.ErrorIs(t, err, checkpoint.ErrMismatch)

	// a different tree with the same settings
	s.Seed = 5
	err = simulate(s, strings.NewReader("(a:1,b:1);"), &b, &RunSummary{})
	require.ErrorIs(t, err, checkpoint.ErrMismatch)
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "summary.json")
	summary := &RunSummary{Seed: 3, Trees: 2, Replicates: 1, Sequences: 6}
	require.NoError(t, writeSummary(fn, summary))

	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	var got RunSummary
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, *summary, got)

	// a directory cannot be written
	require.Error(t, writeSummary(dir, summary))
}
