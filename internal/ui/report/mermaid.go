package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"reqcheck/internal/shared/util"
)

// MermaidRenderer draws the include tree as a flowchart, parents on top.
// Files with conflicts are highlighted; referenced but unscanned files are
// drawn dashed.
type MermaidRenderer struct{}

func (MermaidRenderer) Render(w io.Writer, in Input) error {
	ew := &errWriter{w: w}
	ew.printf("flowchart TD\n")

	names := in.Tree.Names()
	for parent := range in.Dependents {
		if _, ok := in.Tree[parent]; !ok {
			names = append(names, parent)
		}
	}
	sort.Strings(names)
	ids := makeIDs(names)

	for _, name := range names {
		n := len(in.Result.Report[name])
		label := name
		if n > 0 {
			label = fmt.Sprintf("%s (%d conflicts)", name, n)
		}
		ew.printf("  %s[\"%s\"]\n", ids[name], escapeLabel(label))
	}

	for _, parent := range util.SortedStringKeys(in.Dependents) {
		for _, child := range in.Dependents.Children(parent) {
			ew.printf("  %s --> %s\n", ids[parent], ids[child])
		}
	}

	ew.printf("  classDef conflict fill:#fee2e2,stroke:#dc2626,color:#7f1d1d\n")
	ew.printf("  classDef missing stroke-dasharray:4 4\n")
	for _, name := range names {
		if _, ok := in.Tree[name]; !ok {
			ew.printf("  class %s missing\n", ids[name])
			continue
		}
		if len(in.Result.Report[name]) > 0 {
			ew.printf("  class %s conflict\n", ids[name])
		}
	}
	return ew.err
}

func sanitizeID(name string) string {
	if name == "" {
		return "f"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) {
		return "f_" + out
	}
	return out
}

func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
