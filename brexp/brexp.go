/*
Brexp prints node ids of Newick trees. The ids are the ones used by
seqgen to paint subtrees with different rate matrices (-m). It has
four modes: "brtree" prints the tree with every node labeled as
name#id, "brlen" exports the branch lengths by node id, "nodes" lists
every node with its id and "selectome" labels internal branches in the
Selectome numbering style.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"

	"bitbucket.org/Davydov/seqgen/tree"
)

var log = logging.MustGetLogger("brexp")

var (
	app    = kingpin.New("brexp", "print node ids of newick trees")
	inFile = app.Arg("tree", "input tree file (newick), stdin otherwise").ExistingFile()
	mode   = app.Flag("mode", "program mode").Default("brtree").
		Enum("brtree", "brlen", "nodes", "selectome")
)

// SelectomeBrString returns a newick string with Selectome style
// labeled nodes for a tree.
func SelectomeBrString(t *tree.Tree) (s string) {
	s = SelectomeNodeStringBr(t.Node)
	n := 1
	repfunc := func(sym string) string {
		s := fmt.Sprintf("*%d", n)
		n++
		return s
	}
	es := regexp.MustCompile(`\*`)
	s = es.ReplaceAllStringFunc(s, repfunc)
	return
}

// SelectomeNodeStringBr returns a newick string with Selectome style
// labeled nodes for a node.
func SelectomeNodeStringBr(node *tree.Node) (s string) {
	if node.IsTerminal() {
		return node.Name
	}
	s += "("
	for i, child := range node.ChildNodes() {
		s += SelectomeNodeStringBr(child)
		if i != len(node.ChildNodes())-1 {
			s += ","
		}
	}
	s += ")"
	if node.IsRoot() {
		s += ";"
	} else {
		s += "*"
	}
	return s
}

// nodeTable lists all the nodes of a tree ordered by id.
func nodeTable(t *tree.Tree) string {
	var b strings.Builder
	for _, node := range t.NodeIDArray() {
		if node == nil {
			continue
		}
		kind := "internal"
		switch {
		case node.IsRoot():
			kind = "root"
		case node.IsTerminal():
			kind = "leaf"
		}
		fmt.Fprintf(&b, "%d\t%s\t%s\t%f\t%d\n",
			node.ID, kind, node.Name, node.BranchLength, node.NSubNodes())
	}
	return b.String()
}

// export writes every tree from rd to w in a given mode.
func export(rd io.Reader, w io.Writer, mode string) error {
	nr := tree.NewNewickReader(rd)
	for i := 0; ; i++ {
		t, err := nr.Next()
		if err == io.EOF {
			if i == 0 {
				log.Warning("No trees found")
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("tree #%d: %w", i, err)
		}
		switch mode {
		case "brlen":
			for _, node := range t.NodeIDArray() {
				if node != nil && !node.IsRoot() {
					fmt.Fprintf(w, "br%d=%f\n", node.ID, node.BranchLength)
				}
			}
		case "brtree":
			fmt.Fprintln(w, t.BrString())
		case "nodes":
			fmt.Fprint(w, nodeTable(t))
		case "selectome":
			fmt.Fprintln(w, SelectomeBrString(t))
		default:
			return fmt.Errorf("unknown mode %q", mode)
		}
	}
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))
	logging.SetBackend(logging.NewLogBackend(os.Stderr, "", 0))

	infile := os.Stdin
	if *inFile != "" {
		var err error
		infile, err = os.Open(*inFile)
		if err != nil {
			log.Fatal(err)
		}
		defer infile.Close()
	}

	if err := export(infile, os.Stdout, *mode); err != nil {
		log.Fatal(err)
	}
}
