package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNoRoot        = errors.New("no unique root found among declaration files")
	ErrAmbiguousRoot = errors.New("multiple root candidates found among declaration files")
)

// AmbiguousRootError lists every candidate when more than one file
// qualifies as root.
type AmbiguousRootError struct {
	Candidates []string
}

func (e *AmbiguousRootError) Error() string {
	return fmt.Sprintf("%s (candidates: %s)", ErrNoRoot.Error(), strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousRootError) Is(target error) bool {
	return target == ErrAmbiguousRoot || target == ErrNoRoot
}

// RootCandidates returns the referenced files that never reference another
// tracked parent themselves, sorted by name.
func (d Dependents) RootCandidates() []string {
	dependent := make(map[string]struct{})
	for _, children := range d {
		for child := range children {
			dependent[child] = struct{}{}
		}
	}

	candidates := make([]string, 0, 1)
	for parent := range d {
		if _, ok := dependent[parent]; !ok {
			candidates = append(candidates, parent)
		}
	}
	sort.Strings(candidates)
	return candidates
}

// Root returns the single root candidate. It fails with ErrNoRoot when
// nothing qualifies (no includes at all, or only cycles) and with an
// *AmbiguousRootError when several files qualify.
func (d Dependents) Root() (string, error) {
	candidates := d.RootCandidates()
	switch len(candidates) {
	case 0:
		return "", ErrNoRoot
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousRootError{Candidates: candidates}
	}
}
