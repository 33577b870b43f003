package report

import (
	"io"
	"strings"
)

type TSVRenderer struct{}

func (TSVRenderer) Render(w io.Writer, in Input) error {
	ew := &errWriter{w: w}
	ew.printf("File\tKind\tModule\tAncestor\tTrail\n")
	for _, c := range in.Result.Conflicts {
		ew.printf("%s\t%s\t%s\t%s\t%s\n",
			c.File, c.Kind, c.Module, c.Ancestor(), strings.Join(c.Trail, " >> "))
	}
	return ew.err
}
