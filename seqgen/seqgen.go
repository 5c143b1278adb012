/*
Seqgen simulates nucleotide sequences along phylogenetic trees under
the GTR model.

The basic usage of seqgen looks like this:

	seqgen -t trees.nwk -l 500 -x 1 > ali.fst

, this will generate alignments of 500 nucleotides under the
Jukes-Cantor model for every tree in trees.nwk.

Rate variation among sites, invariant sites and a custom GTR model:

	seqgen -t tree.nwk -g 0.5 -i 0.1 -b .1,.2,.3,.4 -r 1,4,1,1,4,1

Different models can be applied to different subtrees. The first six
values are background rates, then every node id (see brexp) is
followed by six rates:

	seqgen -t tree.nwk -m 1,1,1,1,1,1,3,1,5,1,1,5,1

All the options can be stored in a YAML file (--config). To see all
the options run:

	seqgen -h
*/
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/seqgen/bio"
	"bitbucket.org/Davydov/seqgen/checkpoint"
	"bitbucket.org/Davydov/seqgen/gtr"
	"bitbucket.org/Davydov/seqgen/sim"
	"bitbucket.org/Davydov/seqgen/tree"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("seqgen")
var formatter = logging.MustStringFormatter(`%{message}`)

// loggers are all the module loggers.
var loggers = []string{"seqgen", "sim", "gtr", "checkpoint"}

// userFlags stores names of the flags set on the command line.
var userFlags = map[string]bool{}

// flag creates a flag which is recorded in userFlags when used.
func flag(name, help string) *kingpin.FlagClause {
	return app.Flag(name, help).Action(func(*kingpin.ParseContext) error {
		userFlags[name] = true
		return nil
	})
}

// command-line options
var (
	// application
	app = kingpin.New("seqgen", "basic sequence simulator under the GTR model").Version(version)

	configF = app.Flag("config", "read options from a YAML file; command-line flags take precedence").ExistingFile()

	// input/output
	treeF = flag("treef", "input tree file (newick), stdin otherwise").Short('t').ExistingFile()
	outF  = flag("outf", "output sequence file (fasta), stdout otherwise").Short('o').String()

	// model parameters
	length  = flag("length", "length of sequences to generate (default 1000)").Short('l').Int()
	baseF   = flag("basef", "comma-delimited base freqs in order: A,C,G,T (default equal)").Short('b').String()
	gamma   = flag("gamma", "gamma shape value (default no rate variation)").Short('g').Float64()
	ncat    = flag("ncat", "number of discrete gamma categories (default 4)").Int()
	pinvar  = flag("pinvar", "proportion of invariable sites (default 0.0)").Short('i').Float64()
	rateMat = flag("ratemat", "comma-delimited input values for rate matrix, "+
		"order: A<->C,A<->G,A<->T,C<->G,C<->T,G<->T (default JC69)").Short('r').String()
	multiModel = flag("multimodel", "multiple models across tree: "+
		"A<->C,A<->G,A<->T,C<->G,C<->T,G<->T,Node#,A<->C,A<->G,A<->T,C<->G,C<->T,G<->T,...").Short('m').String()
	clock = flag("clock", "clock rate, all branch lengths are multiplied by it (default 1)").Float64()

	// output control
	ancestors  = flag("ancestors", "print the ancestral node sequences (use -p for the node labels)").Short('a').Bool()
	nodeLabels = flag("printnodelabels", "name ancestral sequences by node labels or ids").Short('p').Bool()
	rootSeq    = flag("rootseq", "set root sequence (default is random from base freqs)").Short('k').String()
	rootSeqF   = flag("rootseqfn", "read root sequence from a fasta file").ExistingFile()

	// technical
	nreps       = flag("nreps", "number of replicates per tree (default 1)").Short('n').Int()
	seed        = flag("seed", "random number seed, time based otherwise").Short('x').Int64()
	checkpointF = flag("checkpoint", "checkpoint database; finished replicates are restored from it").String()
	outLogF     = app.Flag("log", "write log to a file").String()
	logLevel    = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json run summary to a file").String()
)

// newSettings combines defaults, the config file and the command-line
// flags.
func newSettings() (*settings, error) {
	s := defaultSettings()
	if *configF != "" {
		log.Infof("Reading options from %s", *configF)
		if err := s.readSettings(*configF); err != nil {
			return nil, err
		}
	}
	set := func(name string, f func()) {
		if userFlags[name] {
			f()
		}
	}
	var err error
	parse := func(name string, value string, dst *floatList) {
		if userFlags[name] && err == nil {
			*dst, err = gtr.ParseFloatList(value)
		}
	}
	set("treef", func() { s.TreeF = *treeF })
	set("outf", func() { s.OutF = *outF })
	set("length", func() { s.Length = *length })
	parse("basef", *baseF, &s.BaseF)
	set("gamma", func() { s.Gamma = *gamma })
	set("ncat", func() { s.NCat = *ncat })
	set("pinvar", func() { s.PInvar = *pinvar })
	parse("ratemat", *rateMat, &s.RateMat)
	parse("multimodel", *multiModel, &s.MultiModel)
	set("clock", func() { s.Clock = *clock })
	set("ancestors", func() { s.Ancestors = *ancestors })
	set("printnodelabels", func() { s.NodeLabels = *nodeLabels })
	set("rootseq", func() { s.RootSeq = *rootSeq })
	set("rootseqfn", func() { s.RootSeqF = *rootSeqF })
	set("nreps", func() { s.NReps = *nreps })
	set("seed", func() { s.Seed = *seed })
	set("checkpoint", func() { s.Checkpoint = *checkpointF })
	return s, err
}

// fingerprint identifies the generator settings and the tree, so
// checkpoints of another run are not reused.
func fingerprint(cfg sim.Config, t *tree.Tree) (string, error) {
	j, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(j)
	h.Write([]byte(t.String()))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// replicate simulates or restores one replicate.
func replicate(g *sim.Generator, store *checkpoint.Store, t *tree.Tree, fp string, ti, rep int) (seqs bio.Sequences, resumed bool, err error) {
	if store != nil {
		data, err := store.Load(ti, rep, fp)
		if errors.Is(err, checkpoint.ErrMismatch) {
			log.Error("Use the same settings and seed (-x) to resume, or another checkpoint file")
			return nil, false, fmt.Errorf("%w: %w", err, sim.ErrConfig)
		}
		if err != nil {
			return nil, false, err
		}
		if data != nil {
			if err := g.SetRNGState(data.RNGState); err != nil {
				return nil, false, err
			}
			return data.Sequences, true, nil
		}
	}
	seqs, err = g.Generate(t)
	if err != nil {
		return nil, false, err
	}
	if store != nil {
		state, err := g.RNGState()
		if err != nil {
			return nil, false, err
		}
		err = store.Save(&checkpoint.Data{
			Tree:        ti,
			Replicate:   rep,
			Fingerprint: fp,
			RNGState:    state,
			Sequences:   seqs,
		})
		if err != nil {
			return nil, false, err
		}
	}
	return seqs, false, nil
}

// simulate processes all the trees from rd and writes sequences to w.
func simulate(s *settings, rd io.Reader, w io.Writer, summary *RunSummary) error {
	cfg, err := s.simConfig()
	if err != nil {
		return err
	}
	g, err := sim.NewGenerator(cfg)
	if err != nil {
		return err
	}
	log.Infof("Using %d rate matri(x/ces)", g.NModels())

	var store *checkpoint.Store
	if s.Checkpoint != "" {
		store, err = checkpoint.Open(s.Checkpoint)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	summary.Replicates = s.NReps
	nr := tree.NewNewickReader(rd)
	for ti := 0; ; ti++ {
		t, err := nr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tree #%d: %w", ti, err)
		}
		log.Infof("Working on tree #%d (%d leaves)", ti, t.NLeaves())
		log.Debugf("brtree=%s", t.BrString())
		var fp string
		if store != nil {
			fp, err = fingerprint(cfg, t)
			if err != nil {
				return err
			}
		}
		for rep := 0; rep < s.NReps; rep++ {
			seqs, resumed, err := replicate(g, store, t, fp, ti, rep)
			if err != nil {
				return fmt.Errorf("tree #%d: %w", ti, err)
			}
			if resumed {
				log.Infof("Restored tree #%d, replicate %d from checkpoint", ti, rep)
				summary.Resumed++
			}
			if err := seqs.WriteFasta(w); err != nil {
				return err
			}
			summary.Sequences += len(seqs)
		}
		summary.Trees++
	}
	if summary.Trees == 0 {
		log.Warning("No trees found in the input")
	}
	return nil
}

// writeSummary writes the run summary in json format.
func writeSummary(fn string, summary *RunSummary) error {
	j, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	log.Debug(string(j))
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if _, err := f.Write(j); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// setupLogging configures backend, format and levels of all the
// loggers.
func setupLogging() (closer func()) {
	logging.SetFormatter(formatter)

	closer = func() {}
	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		closer = func() { f.Close() }
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	for _, l := range loggers {
		logging.SetLevel(level, l)
	}
	return closer
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	closeLog := setupLogging()
	defer closeLog()

	startTime := time.Now()

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	s, err := newSettings()
	if err != nil {
		log.Fatal(err)
	}
	s.resolveSeed()
	log.Infof("Random seed=%v", s.Seed)

	in := os.Stdin
	if s.TreeF != "" {
		in, err = os.Open(s.TreeF)
		if err != nil {
			log.Fatal(err)
		}
		defer in.Close()
	}

	out := os.Stdout
	if s.OutF != "" {
		out, err = os.Create(s.OutF)
		if err != nil {
			log.Fatal("Error creating output file:", err)
		}
		defer out.Close()
	}

	summary := &RunSummary{
		Version:     version,
		CommandLine: os.Args,
		Seed:        s.Seed,
	}
	if err := simulate(s, in, out, summary); err != nil {
		log.Fatal(err)
	}

	deltaT := time.Since(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	// output summary in json format
	if *jsonF != "" {
		if err := writeSummary(*jsonF, summary); err != nil {
			log.Error("Error writing json summary:", err)
		}
	}
}
