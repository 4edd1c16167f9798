package fsys

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/helper/iofs"
)

// skippedDirs never contribute matches.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Glob expands pattern against the filesystem with doublestar syntax: "**"
// matches zero or more directories and wildcards match dot files. Matches
// inside node_modules or .git are dropped. Results are slash separated and
// sorted.
func (f *FS) Glob(pattern string) ([]string, error) {
	pattern = path.Clean(filepath.ToSlash(pattern))

	var matches []string
	err := doublestar.GlobWalk(iofs.New(f.fs), pattern, func(p string, _ fs.DirEntry) error {
		if !inSkippedDir(p) {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fsys: glob %q: %w", pattern, err)
	}

	sort.Strings(matches)

	return matches, nil
}

// ValidPattern reports whether pattern is well-formed glob syntax.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(filepath.ToSlash(pattern))
}

// IsRecursive reports whether pattern has a "**" segment.
func IsRecursive(pattern string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(pattern), "/") {
		if seg == "**" {
			return true
		}
	}
	return false
}

func inSkippedDir(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if skippedDirs[seg] {
			return true
		}
	}
	return false
}
