package checker

import (
	"fmt"
	"sort"
	"strings"

	"reqcheck/internal/engine/graph"
)

type Kind string

const (
	KindSelf     Kind = "self"
	KindAncestor Kind = "ancestor"
)

// Conflict is one redundant module declaration. Trail lists the parent
// names walked from File up to and including the ancestor that also
// declares Module; it is empty for KindSelf.
type Conflict struct {
	Kind   Kind
	File   string
	Module string
	Trail  []string
}

// Message renders the conflict the way the report prints it.
func (c Conflict) Message() string {
	if c.Kind == KindSelf {
		return fmt.Sprintf("%s is duplicated in same file.", c.Module)
	}
	return fmt.Sprintf("%s is duplicated in (>> %s)", c.Module, strings.Join(c.Trail, " >> "))
}

// Ancestor returns the file the module is also declared in.
func (c Conflict) Ancestor() string {
	if len(c.Trail) == 0 {
		return ""
	}
	return c.Trail[len(c.Trail)-1]
}

// Report maps every file in the tree to its conflict messages, in
// detection order. Clean files map to an empty slice.
type Report map[string][]string

func (r Report) Total() int {
	total := 0
	for _, msgs := range r {
		total += len(msgs)
	}
	return total
}

// Result carries both the structured conflicts and their rendered report.
type Result struct {
	Conflicts []Conflict
	Report    Report
}

func (r Result) Count(kind Kind) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Check inspects every file in the tree for duplicates within the file
// and against each ancestor on its parent chain. Siblings are never
// compared.
func Check(tree graph.Tree) Result {
	result := Result{Report: make(Report, len(tree))}

	for _, name := range tree.Names() {
		conflicts := CheckFile(tree, tree[name])
		msgs := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			msgs = append(msgs, c.Message())
		}
		result.Report[name] = msgs
		result.Conflicts = append(result.Conflicts, conflicts...)
	}

	return result
}

// CheckFile returns the conflicts of a single file against the tree.
func CheckFile(tree graph.Tree, file *graph.File) []Conflict {
	var conflicts []Conflict

	for _, module := range selfDuplicates(file.Modules) {
		conflicts = append(conflicts, Conflict{Kind: KindSelf, File: file.Name, Module: module})
	}

	modules := file.ModuleSet()
	visited := map[string]bool{file.Name: true}
	var trail []string

	parent := file.Parent
	for {
		ancestor, ok := tree.Lookup(parent)
		if !ok || visited[parent] {
			break
		}
		visited[parent] = true
		trail = append(trail, parent)

		for _, module := range intersect(modules, ancestor.ModuleSet()) {
			conflicts = append(conflicts, Conflict{
				Kind:   KindAncestor,
				File:   file.Name,
				Module: module,
				Trail:  append([]string(nil), trail...),
			})
		}
		parent = ancestor.Parent
	}

	return conflicts
}

func selfDuplicates(modules []string) []string {
	counts := make(map[string]int, len(modules))
	for _, m := range modules {
		counts[m]++
	}

	dups := make([]string, 0)
	for m, n := range counts {
		if n > 1 {
			dups = append(dups, m)
		}
	}
	sort.Strings(dups)
	return dups
}

func intersect(a, b map[string]struct{}) []string {
	out := make([]string, 0)
	for m := range a {
		if _, ok := b[m]; ok {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
