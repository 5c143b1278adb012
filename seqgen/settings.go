package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"bitbucket.org/Davydov/seqgen/bio"
	"bitbucket.org/Davydov/seqgen/gtr"
	"bitbucket.org/Davydov/seqgen/sim"
)

// floatList is a list of numbers. In a config file it can be either
// a comma-delimited string or a YAML sequence.
type floatList []float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (fl *floatList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		v, err := gtr.ParseFloatList(value.Value)
		if err != nil {
			return err
		}
		*fl = v
		return nil
	case yaml.SequenceNode:
		var v []float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*fl = v
		return nil
	}
	return fmt.Errorf("line %d: expected a list of numbers", value.Line)
}

// settings stores all the run options. Field names match the
// command-line flags.
type settings struct {
	TreeF      string    `yaml:"treef"`
	OutF       string    `yaml:"outf"`
	Length     int       `yaml:"length"`
	BaseF      floatList `yaml:"basef"`
	Gamma      float64   `yaml:"gamma"`
	NCat       int       `yaml:"ncat"`
	PInvar     float64   `yaml:"pinvar"`
	RateMat    floatList `yaml:"ratemat"`
	NReps      int       `yaml:"nreps"`
	Seed       int64     `yaml:"seed"`
	Ancestors  bool      `yaml:"ancestors"`
	NodeLabels bool      `yaml:"printnodelabels"`
	MultiModel floatList `yaml:"multimodel"`
	RootSeq    string    `yaml:"rootseq"`
	RootSeqF   string    `yaml:"rootseqfn"`
	Clock      float64   `yaml:"clock"`
	Checkpoint string    `yaml:"checkpoint"`
}

// defaultSettings returns the settings used when neither a config
// file nor a flag specifies a value.
func defaultSettings() *settings {
	return &settings{
		Length: sim.DefaultLength,
		NCat:   sim.DefaultNCat,
		NReps:  1,
		Seed:   -1,
		Clock:  1,
	}
}

// readSettings overrides settings with the values present in a YAML
// file.
func (s *settings) readSettings(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", fn, err)
	}
	return nil
}

// resolveSeed replaces a negative seed by a time-based one.
func (s *settings) resolveSeed() {
	if s.Seed < 0 {
		s.Seed = time.Now().UnixNano()
		log.Debug("Random seed from time")
	}
}

// rootSequence returns the fixed root sequence, reading it from the
// FASTA file if needed.
func (s *settings) rootSequence() (string, error) {
	if s.RootSeqF == "" {
		return s.RootSeq, nil
	}
	if s.RootSeq != "" {
		log.Warning("Both root sequence and root sequence file are set, using the file")
	}
	f, err := os.Open(s.RootSeqF)
	if err != nil {
		return "", err
	}
	defer f.Close()
	seqs, err := bio.ParseFasta(f)
	if err != nil {
		return "", err
	}
	if len(seqs) == 0 {
		return "", fmt.Errorf("no sequences in %s: %w", s.RootSeqF, sim.ErrConfig)
	}
	if len(seqs) > 1 {
		log.Warningf("Using the first of %d sequences from %s as the root", len(seqs), s.RootSeqF)
	}
	return seqs[0].Sequence, nil
}

// simConfig converts settings into a generator configuration.
func (s *settings) simConfig() (cfg sim.Config, err error) {
	cfg = sim.DefaultConfig()
	cfg.Length = s.Length
	cfg.Alpha = s.Gamma
	cfg.NCat = s.NCat
	cfg.Invariant = s.PInvar
	cfg.ClockRate = s.Clock
	cfg.Seed = s.Seed
	cfg.Ancestors = s.Ancestors
	cfg.NodeLabels = s.NodeLabels

	if s.BaseF != nil {
		cfg.Freq, err = gtr.NewFrequencies(s.BaseF)
		if err != nil {
			return
		}
	}
	if s.RateMat != nil {
		cfg.Rates, err = gtr.NewRates(s.RateMat)
		if err != nil {
			return
		}
	}
	if s.MultiModel != nil {
		if s.RateMat != nil {
			log.Warning("Both rate matrix and multi-model are set, using multi-model background rates")
		}
		cfg.MultiModel, err = gtr.ParseMultiModel(s.MultiModel)
		if err != nil {
			return
		}
	}
	cfg.RootSequence, err = s.rootSequence()
	if err != nil {
		return
	}
	if s.NReps < 1 {
		return cfg, fmt.Errorf("number of replicates must be positive, got %d: %w", s.NReps, sim.ErrConfig)
	}
	return cfg, cfg.Validate()
}
