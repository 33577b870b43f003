package report

import (
	"io"
	"strings"
)

const (
	branchIndent = "    "
	branchMarker = "└ "
)

// TreeRenderer prints the include tree from the root file down, one line
// per file or one line per conflict of that file.
type TreeRenderer struct{}

func (TreeRenderer) Render(w io.Writer, in Input) error {
	ew := &errWriter{w: w}

	root, err := in.Dependents.Root()
	if err != nil {
		ew.printf("%s\n", err.Error())
		return ew.err
	}

	in.Dependents.Walk(root, func(name string, depth int) {
		writeEntry(ew, name, in.Result.Report[name], depth)
	})
	return ew.err
}

func writeEntry(ew *errWriter, name string, msgs []string, depth int) {
	prefix := Prefix(depth)
	if len(msgs) == 0 {
		ew.printf("%s%s\n", prefix, name)
		return
	}
	for _, msg := range msgs {
		ew.printf("%s%s <-- %s\n", prefix, name, msg)
	}
}

// Prefix is the indentation written before a file at depth.
func Prefix(depth int) string {
	if depth <= 0 {
		return ""
	}
	return "  " + strings.Repeat(branchIndent, depth-1) + branchMarker
}
