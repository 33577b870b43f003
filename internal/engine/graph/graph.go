package graph

import (
	"sort"
)

// File is one parsed declaration file. Name is the basename and the key
// used everywhere else; Parent is empty when the file includes nothing.
type File struct {
	Name    string
	Path    string
	Parent  string
	Modules []string
}

func (f *File) HasParent() bool {
	return f.Parent != ""
}

// ModuleSet returns the distinct module names declared by the file.
func (f *File) ModuleSet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.Modules))
	for _, m := range f.Modules {
		set[m] = struct{}{}
	}
	return set
}

// Tree maps a declaration file name to its parsed contents. A Parent may
// name a file that is not in the tree.
type Tree map[string]*File

func (t Tree) Lookup(name string) (*File, bool) {
	if name == "" {
		return nil, false
	}
	f, ok := t[name]
	return f, ok
}

func (t Tree) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t Tree) ModuleCount() int {
	total := 0
	for _, f := range t {
		total += len(f.Modules)
	}
	return total
}

// Dependents is the reverse include index: parent name -> names of the
// files that reference it.
type Dependents map[string]map[string]struct{}

func (d Dependents) Add(parent, child string) {
	if parent == "" {
		return
	}
	children, ok := d[parent]
	if !ok {
		children = make(map[string]struct{})
		d[parent] = children
	}
	children[child] = struct{}{}
}

func (d Dependents) Has(name string) bool {
	_, ok := d[name]
	return ok
}

// Children returns the dependents of name sorted by file name.
func (d Dependents) Children(name string) []string {
	children := d[name]
	out := make([]string, 0, len(children))
	for child := range children {
		out = append(out, child)
	}
	sort.Strings(out)
	return out
}

func (d Dependents) EdgeCount() int {
	total := 0
	for _, children := range d {
		total += len(children)
	}
	return total
}
