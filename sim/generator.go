package sim

import (
	"math"
	"math/rand/v2"
	"strconv"

	"bitbucket.org/Davydov/seqgen/bio"
	"bitbucket.org/Davydov/seqgen/gtr"
	"bitbucket.org/Davydov/seqgen/tree"
)

// seedMix is xored with the seed to get the second PCG word.
const seedMix = 0x9e3779b97f4a7c15

// Generator simulates sequences along trees. Rate matrices are
// decomposed once and reused for every tree. A single random stream
// is used for all the draws, so the output is reproducible for a
// fixed seed.
type Generator struct {
	cfg    Config
	models []*gtr.EMatrix
	paints map[int]int
	gamma  []float64
	root   []byte
	cumF   [bio.NNuc]float64

	src *rand.PCG
	rng *rand.Rand

	// last site rates, kept for inspection
	siteRates *SiteRates
}

// NewGenerator validates the settings, builds all the rate matrices
// and seeds the random number generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:    cfg,
		paints: cfg.paints(),
		gamma:  gammaCategories(cfg.Alpha, cfg.NCat),
	}
	for i, r := range cfg.models() {
		q, err := gtr.NewRateMatrix(r, cfg.Freq)
		if err != nil {
			return nil, err
		}
		e, err := gtr.NewEMatrix(q)
		if err != nil {
			return nil, configErrorf("model %d (%v): %v", i, r, err)
		}
		log.Debugf("Q%d=\n%v", i, q)
		log.Debugf("Q%d eigenvalues: %v", i, e.Eigenvalues())
		g.models = append(g.models, e)
	}
	if cfg.RootSequence != "" {
		// validated above
		g.root, _ = bio.Encode(cfg.RootSequence)
	}
	sum := 0.0
	for i, f := range cfg.Freq {
		sum += f
		g.cumF[i] = sum
	}
	if g.gamma != nil {
		log.Infof("Gamma categories (alpha=%v): %v", cfg.Alpha, g.gamma)
	}
	g.src = rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^seedMix)
	g.rng = rand.New(g.src)
	return g, nil
}

// NModels returns the number of rate matrices.
func (g *Generator) NModels() int {
	return len(g.models)
}

// SiteRates returns the site rates used by the last Generate call.
func (g *Generator) SiteRates() *SiteRates {
	return g.siteRates
}

// RNGState returns the serialized state of the random number
// generator.
func (g *Generator) RNGState() ([]byte, error) {
	return g.src.MarshalBinary()
}

// SetRNGState restores a state saved with RNGState.
func (g *Generator) SetRNGState(state []byte) error {
	return g.src.UnmarshalBinary(state)
}

// maxRate returns the largest site rate multiplier.
func (g *Generator) maxRate() float64 {
	m := 1.0
	for _, r := range g.gamma {
		m = math.Max(m, r)
	}
	return m
}

// ValidateTree checks that a tree can be used for simulation: all
// branch lengths (except the root one) are finite and non-negative,
// stay finite after scaling by the clock and site rates and all the
// painted nodes exist.
func (g *Generator) ValidateTree(t *tree.Tree) (ModelAssignment, error) {
	var err error
	scale := g.cfg.ClockRate * g.maxRate()
	t.Walk(func(node *tree.Node) {
		if err != nil || node.IsRoot() {
			return
		}
		bl := node.BranchLength
		if bl < 0 || math.IsNaN(bl) || math.IsInf(bl, 0) {
			err = configErrorf("invalid branch length %v for node %d", bl, node.ID)
			return
		}
		if math.IsInf(bl*scale, 0) {
			err = configErrorf("branch length %v for node %d is too large", bl, node.ID)
		}
	})
	if err != nil {
		return nil, err
	}
	return PaintModels(t, g.paints)
}

// Generate simulates sequences for a tree. Draws are made in the
// following order: root sequence (unless fixed), site rates,
// substitutions branch by branch in pre-order. The result contains
// sequences in pre-order: all the leaves and, if ancestors are
// requested, all the internal nodes including the root.
func (g *Generator) Generate(t *tree.Tree) (bio.Sequences, error) {
	ma, err := g.ValidateTree(t)
	if err != nil {
		return nil, err
	}

	root := g.root
	if root == nil {
		root = g.rootSequence()
	} else {
		root = append([]byte(nil), root...)
	}
	g.siteRates = AssignSiteRates(g.rng, g.cfg.Length, g.gamma, g.cfg.Invariant)
	log.Debugf("%d invariant sites", g.siteRates.NInvariant())

	s := &simulation{
		g:     g,
		ma:    ma,
		rates: g.siteRates,
		used:  g.siteRates.Used(),
		res:   make(bio.Sequences, 0, t.NNodes()),
	}
	s.walk(t.Node, root)
	return s.res, nil
}

// rootSequence samples a sequence from base frequencies.
func (g *Generator) rootSequence() []byte {
	seq := make([]byte, g.cfg.Length)
	for i := range seq {
		seq[i] = sample(&g.cumF, g.rng.Float64())
	}
	return seq
}

// sample returns the first state with cumulative probability above u.
func sample(cum *[bio.NNuc]float64, u float64) byte {
	for s := 0; s < bio.NNuc-1; s++ {
		if u < cum[s] {
			return byte(s)
		}
	}
	return bio.NNuc - 1
}

// simulation stores a state of one Generate call.
type simulation struct {
	g     *Generator
	ma    ModelAssignment
	rates *SiteRates
	used  []bool
	nAnc  int
	res   bio.Sequences
}

// walk stores the node sequence and simulates all the child branches.
func (s *simulation) walk(node *tree.Node, seq []byte) {
	switch {
	case node.IsTerminal():
		s.res = append(s.res, bio.Sequence{Name: s.leafName(node), Sequence: bio.Decode(seq)})
	case s.g.cfg.Ancestors:
		s.nAnc++
		s.res = append(s.res, bio.Sequence{Name: s.ancestorName(node), Sequence: bio.Decode(seq)})
	}
	for _, child := range node.ChildNodes() {
		s.walk(child, s.evolve(child, seq))
	}
}

// evolve simulates substitutions on the branch leading to the node.
// Sites with rate 0 (invariant sites or a gamma category which
// underflowed to zero) are copied without random draws.
func (s *simulation) evolve(node *tree.Node, parent []byte) []byte {
	e := s.g.models[s.ma[node.ID]]
	bl := node.BranchLength * s.g.cfg.ClockRate

	// cumulative transition probabilities for every rate in use
	cum := make([][bio.NNuc][bio.NNuc]float64, len(s.rates.Values))
	for ri, r := range s.rates.Values {
		if r == 0 || !s.used[ri] {
			continue
		}
		p := e.Exp(bl * r)
		for i := 0; i < bio.NNuc; i++ {
			sum := 0.0
			for j := 0; j < bio.NNuc; j++ {
				sum += p.At(i, j)
				cum[ri][i][j] = sum
			}
		}
	}

	seq := make([]byte, len(parent))
	for site, st := range parent {
		ri := s.rates.Index[site]
		if s.rates.Values[ri] == 0 {
			seq[site] = st
			continue
		}
		seq[site] = sample(&cum[ri][st], s.g.rng.Float64())
	}
	return seq
}

// leafName returns the output name of a leaf.
func (s *simulation) leafName(node *tree.Node) string {
	if node.Name != "" {
		return node.Name
	}
	return strconv.Itoa(node.ID)
}

// ancestorName returns the output name of an internal node: its label
// or id if node labels are requested, a placeholder otherwise.
func (s *simulation) ancestorName(node *tree.Node) string {
	if !s.g.cfg.NodeLabels {
		return "anc" + strconv.Itoa(s.nAnc)
	}
	if node.Name != "" {
		return node.Name
	}
	return strconv.Itoa(node.ID)
}
