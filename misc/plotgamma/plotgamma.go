// Plotgamma plots the gamma density of site rates together with the
// rates of its discrete categories.
package main

import (
	"flag"
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/seqgen/dist"
)

func main() {
	alpha := flag.Float64("alpha", 1, "gamma shape (rate equals shape)")
	k := flag.Int("k", 4, "number of categories")
	useMedian := flag.Bool("median", false, "Use median instead of mean")
	out := flag.String("o", "gamma.png", "output file")
	flag.Parse()

	r := dist.DiscreteGamma(*alpha, *alpha, *k, *useMedian, nil, nil)
	fmt.Println(r)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("alpha=%v, %d categories", *alpha, *k)
	p.X.Label.Text = "rate"
	p.Y.Label.Text = "density"

	g := distuv.Gamma{Alpha: *alpha, Beta: *alpha}
	density := plotter.NewFunction(g.Prob)
	density.Color = plotutil.Color(0)
	p.Add(density)
	p.Legend.Add("gamma", density)

	pts := make(plotter.XYs, *k)
	for i, v := range r {
		pts[i].X = v
		pts[i].Y = g.Prob(v)
	}
	if err := plotutil.AddScatters(p, "categories", pts); err != nil {
		log.Fatal(err)
	}

	p.X.Min = 0
	p.X.Max = 3 * r[len(r)-1]
	if p.X.Max < 1 {
		p.X.Max = 3
	}
	density.XMin = 0.001
	density.XMax = p.X.Max
	p.Y.Min = 0
	p.Y.Max = 2

	if err := p.Save(4*vg.Inch, 4*vg.Inch, *out); err != nil {
		log.Fatal(err)
	}
}
