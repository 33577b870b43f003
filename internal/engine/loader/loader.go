package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reqcheck/internal/core/errors"

	"github.com/gobwas/glob"
)

// Loader enumerates the declaration files sitting directly in a directory.
type Loader struct {
	include  glob.Glob
	excludes []glob.Glob
}

func New(include string, excludes []string) (*Loader, error) {
	inc, err := glob.Compile(include)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid include pattern %q", include))
	}

	compiled := make([]glob.Glob, 0, len(excludes))
	for _, p := range excludes {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude pattern %q", p))
		}
		compiled = append(compiled, g)
	}

	return &Loader{include: inc, excludes: compiled}, nil
}

// Matches reports whether a basename would be picked up by List.
func (l *Loader) Matches(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if !l.include.Match(name) {
		return false
	}
	for _, g := range l.excludes {
		if g.Match(name) {
			return false
		}
	}
	return true
}

// List returns the matching regular files in dir, sorted by path.
func (l *Loader) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		code := errors.CodeIO
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "read scan directory"), errors.CtxPath, dir)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !l.Matches(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isRegularTarget(entry, path) {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// isRegularTarget accepts regular files and symlinks that resolve to one.
func isRegularTarget(entry os.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("skipping unresolvable symlink", "path", path, "error", err)
		return false
	}
	return info.Mode().IsRegular()
}
