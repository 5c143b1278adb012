// Dgamma prints the relative rates of discrete gamma categories as
// used for site rate heterogeneity.
package main

import (
	"flag"
	"fmt"

	"bitbucket.org/Davydov/seqgen/dist"
)

func main() {
	alpha := flag.Float64("alpha", 1, "alpha")
	ncat := flag.Int("ncat", 4, "ncat")
	useMedian := flag.Bool("median", false, "Use median instead of mean")
	flag.Parse()

	var r []float64
	if *useMedian {
		r = dist.DiscreteGamma(*alpha, *alpha, *ncat, true, nil, nil)
	} else {
		r = dist.SiteGamma(*alpha, *ncat)
	}
	for i, v := range r {
		fmt.Printf("%d\t%f\n", i+1, v)
	}
}
