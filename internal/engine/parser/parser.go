package parser

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"reqcheck/internal/core/errors"
	"reqcheck/internal/engine/graph"
)

const maxLineSize = 1024 * 1024

// DefaultReferenceMarkers are the line prefixes that include another
// declaration file when no markers are configured.
var DefaultReferenceMarkers = []string{"-r"}

var modulePattern = regexp.MustCompile(`^([\w-]+)\s*([=!<>~]+)([0-9.]+)`)

// Parser turns declaration files into a graph.Tree plus the reverse
// include index.
type Parser struct {
	referencePattern *regexp.Regexp
}

func NewParser(markers ...string) *Parser {
	if len(markers) == 0 {
		markers = DefaultReferenceMarkers
	}
	quoted := make([]string, 0, len(markers))
	for _, marker := range markers {
		quoted = append(quoted, regexp.QuoteMeta(marker))
	}
	return &Parser{
		referencePattern: regexp.MustCompile(`^(?:` + strings.Join(quoted, "|") + `)\s*([^#\s]+)`),
	}
}

// Parse reads every path and returns a fresh tree keyed by basename along
// with the dependents index built in the same pass.
func (p *Parser) Parse(paths []string) (graph.Tree, graph.Dependents, error) {
	tree := make(graph.Tree, len(paths))
	dependents := make(graph.Dependents)

	for _, path := range paths {
		file, err := p.parsePath(path)
		if err != nil {
			return nil, nil, err
		}
		tree[file.Name] = file
		dependents.Add(file.Parent, file.Name)
	}

	return tree, dependents, nil
}

func (p *Parser) parsePath(path string) (*graph.File, error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.AddContext(errors.Wrap(err, errors.CodeIO, "open declaration file"), errors.CtxFile, filepath.Base(path))
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	defer f.Close()

	file, err := p.ParseFile(filepath.Base(path), f)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	file.Path = path
	return file, nil
}

// ParseFile parses a single declaration file. The first reference line
// sets the parent; every module line contributes its name, repeats
// included.
func (p *Parser) ParseFile(name string, r io.Reader) (*graph.File, error) {
	file := &graph.File{
		Name:    name,
		Modules: make([]string, 0),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()

		if file.Parent == "" {
			if m := p.referencePattern.FindStringSubmatch(line); m != nil {
				file.Parent = m[1]
			}
		}

		if m := modulePattern.FindStringSubmatch(line); m != nil {
			file.Modules = append(file.Modules, m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "read declaration file"), errors.CtxFile, name)
	}

	return file, nil
}
