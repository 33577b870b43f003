package report

import (
	"fmt"
	"io"

	"reqcheck/internal/core/config"
	"reqcheck/internal/core/errors"
	"reqcheck/internal/engine/checker"
	"reqcheck/internal/engine/graph"
)

// Input is everything a renderer may draw from a single scan.
type Input struct {
	Tree       graph.Tree
	Dependents graph.Dependents
	Result     checker.Result
}

type Renderer interface {
	Render(w io.Writer, in Input) error
}

// ForFormat returns the renderer registered for a config output format.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case config.FormatTree, "":
		return TreeRenderer{}, nil
	case config.FormatFlat:
		return FlatRenderer{}, nil
	case config.FormatTSV:
		return TSVRenderer{}, nil
	case config.FormatMermaid:
		return MermaidRenderer{}, nil
	case config.FormatDOT:
		return DOTRenderer{}, nil
	default:
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown output format %q", format))
	}
}

// errWriter remembers the first write failure so renderers can write
// line by line and check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
