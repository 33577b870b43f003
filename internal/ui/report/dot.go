package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"reqcheck/internal/shared/util"
)

// DOTRenderer draws the include tree for Graphviz. Edges point from the
// included parent to the including file.
type DOTRenderer struct{}

func (DOTRenderer) Render(w io.Writer, in Input) error {
	ew := &errWriter{w: w}

	ew.printf("digraph requirements {\n")
	ew.printf("  rankdir=TB;\n")
	ew.printf("  node [shape=box, style=\"rounded,filled\", fillcolor=\"white\", fontname=\"Helvetica\", fontsize=10];\n")
	ew.printf("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n\n")

	names := in.Tree.Names()
	for parent := range in.Dependents {
		if _, ok := in.Tree[parent]; !ok {
			names = append(names, parent)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := in.Tree[name]; !ok {
			ew.printf("  %s [label=%s, fillcolor=\"gainsboro\", color=\"grey\", style=\"rounded,dashed\"];\n",
				dotQuote(name), dotQuote(name))
			continue
		}
		n := len(in.Result.Report[name])
		if n == 0 {
			ew.printf("  %s [label=%s, color=\"darkslategrey\"];\n", dotQuote(name), dotQuote(name))
			continue
		}
		label := fmt.Sprintf("%s\\n(%d conflicts)", name, n)
		ew.printf("  %s [label=%s, fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n",
			dotQuote(name), dotQuote(label))
	}
	ew.printf("\n")

	for _, parent := range util.SortedStringKeys(in.Dependents) {
		for _, child := range in.Dependents.Children(parent) {
			ew.printf("  %s -> %s;\n", dotQuote(parent), dotQuote(child))
		}
	}

	ew.printf("}\n")
	return ew.err
}

// dotQuote keeps an already escaped "\n" intact and escapes quotes.
func dotQuote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}
