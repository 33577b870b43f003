package report

import (
	"io"
)

// FlatRenderer lists every scanned file in name order, independent of the
// include tree.
type FlatRenderer struct{}

func (FlatRenderer) Render(w io.Writer, in Input) error {
	ew := &errWriter{w: w}
	for _, name := range in.Tree.Names() {
		msgs := in.Result.Report[name]
		if len(msgs) == 0 {
			ew.printf("%s is OK\n", name)
			continue
		}
		for _, msg := range msgs {
			ew.printf("%s: %s\n", name, msg)
		}
	}
	return ew.err
}

// Show dumps the parsed tree, one line per file.
func Show(w io.Writer, in Input) error {
	ew := &errWriter{w: w}
	for _, name := range in.Tree.Names() {
		f := in.Tree[name]
		ew.printf("%s parent=%s modules=%v\n", name, f.Parent, f.Modules)
	}
	return ew.err
}
