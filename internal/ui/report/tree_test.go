package report

import (
	"bytes"
	"strings"
	"testing"

	"reqcheck/internal/engine/checker"
	"reqcheck/internal/engine/graph"
)

func buildInput(files ...*graph.File) Input {
	tree := make(graph.Tree, len(files))
	dependents := make(graph.Dependents)
	for _, f := range files {
		if f.Modules == nil {
			f.Modules = []string{}
		}
		tree[f.Name] = f
		dependents.Add(f.Parent, f.Name)
	}
	return Input{Tree: tree, Dependents: dependents, Result: checker.Check(tree)}
}

func render(t *testing.T, r Renderer, in Input) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, in); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func TestTreeRenderer_NestedTree(t *testing.T) {
	in := buildInput(
		&graph.File{Name: "base.txt", Modules: []string{"requests", "six", "six"}},
		&graph.File{Name: "dev.txt", Parent: "base.txt", Modules: []string{"pytest"}},
		&graph.File{Name: "test.txt", Parent: "dev.txt", Modules: []string{"requests", "pytest"}},
		&graph.File{Name: "prod.txt", Parent: "base.txt", Modules: []string{"gunicorn"}},
	)

	got := render(t, TreeRenderer{}, in)
	want := strings.Join([]string{
		"base.txt <-- six is duplicated in same file.",
		"  └ dev.txt",
		"      └ test.txt <-- pytest is duplicated in (>> dev.txt)",
		"      └ test.txt <-- requests is duplicated in (>> dev.txt >> base.txt)",
		"  └ prod.txt",
		"",
	}, "\n")
	if got != want {
		t.Errorf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}
}

func TestTreeRenderer_TwoChildrenTwoBranches(t *testing.T) {
	in := buildInput(
		&graph.File{Name: "base.txt"},
		&graph.File{Name: "a.txt", Parent: "base.txt"},
		&graph.File{Name: "b.txt", Parent: "base.txt"},
	)

	got := render(t, TreeRenderer{}, in)
	if strings.Count(got, "  └ ") != 2 {
		t.Errorf("expected two branches, got:\n%s", got)
	}
	for _, name := range []string{"base.txt", "a.txt", "b.txt"} {
		if strings.Count(got, name) != 1 {
			t.Errorf("expected %s exactly once, got:\n%s", name, got)
		}
	}
}

func TestTreeRenderer_DanglingRoot(t *testing.T) {
	// The root is referenced but was never scanned; it still prints.
	in := buildInput(&graph.File{Name: "dev.txt", Parent: "base.txt", Modules: []string{"pytest"}})

	got := render(t, TreeRenderer{}, in)
	if got != "base.txt\n  └ dev.txt\n" {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestTreeRenderer_NoRoot(t *testing.T) {
	in := buildInput(
		&graph.File{Name: "a.txt", Modules: []string{"x", "x"}},
		&graph.File{Name: "b.txt"},
	)

	got := render(t, TreeRenderer{}, in)
	if got != "no unique root found among declaration files\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestTreeRenderer_AmbiguousRoot(t *testing.T) {
	in := buildInput(
		&graph.File{Name: "a.txt"},
		&graph.File{Name: "b.txt", Parent: "a.txt"},
		&graph.File{Name: "c.txt"},
		&graph.File{Name: "d.txt", Parent: "c.txt"},
	)

	got := render(t, TreeRenderer{}, in)
	want := "no unique root found among declaration files (candidates: a.txt, c.txt)\n"
	if got != want {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestPrefix(t *testing.T) {
	tests := map[int]string{
		0: "",
		1: "  └ ",
		2: "      └ ",
		3: "          └ ",
	}
	for depth, want := range tests {
		if got := Prefix(depth); got != want {
			t.Errorf("depth %d: expected %q, got %q", depth, want, got)
		}
	}
}
