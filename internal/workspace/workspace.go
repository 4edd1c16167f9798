// Package workspace discovers the workspaces of a monorepo from its root
// manifests and resolves each one's declared name.
package workspace

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"go.dot.industries/workspace-env/internal/apperr"
	"go.dot.industries/workspace-env/internal/fsys"
)

const defaultMaxConcurrency = 10

// Definition is a discovered workspace: its declared name and its directory
// relative to the project root.
type Definition struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithMaxConcurrency sets the maximum number of concurrent filesystem reads.
// Values less than 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.maxConcurrency = n
		}
	}
}

// Discoverer expands workspace patterns against a filesystem and reads each
// workspace manifest.
type Discoverer struct {
	files          *fsys.FS
	maxConcurrency int
}

// NewDiscoverer creates a Discoverer for the given project filesystem.
func NewDiscoverer(files *fsys.FS, opts ...Option) *Discoverer {
	d := &Discoverer{
		files:          files,
		maxConcurrency: defaultMaxConcurrency,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Discover returns the workspaces of the project. When override is non-nil it
// replaces the root manifests as the pattern source; otherwise the first
// manifest source with entries is used. Every positive pattern must match at
// least one directory. Results follow pattern order, then match order.
func (d *Discoverer) Discover(ctx context.Context, override []string) ([]Definition, error) {
	patterns, origin, err := d.patterns(ctx, override)
	if err != nil {
		return nil, err
	}

	paths, err := d.expand(ctx, patterns, origin)
	if err != nil {
		return nil, err
	}

	defs, err := d.readNames(ctx, paths)
	if err != nil {
		return nil, err
	}

	warnDuplicateNames(defs)

	return defs, nil
}

func (d *Discoverer) patterns(ctx context.Context, override []string) ([]string, string, error) {
	if override != nil {
		if len(override) == 0 {
			return nil, "", apperr.New(apperr.CodeNoWorkspacesFound, "config workspaces list is empty")
		}
		return override, "config", nil
	}

	patterns, origin, err := ReadManifestPatterns(ctx, d.files)
	if err != nil {
		return nil, "", err
	}
	if len(patterns) == 0 {
		return nil, "", apperr.Newf(apperr.CodeNoWorkspacesFound,
			"no workspaces declared in %s, %s or %s", PackageJSON, PnpmWorkspace, LernaJSON)
	}

	log.Debug().Str("source", origin).Strs("patterns", patterns).Msg("workspace patterns")

	return patterns, origin, nil
}

// expand globs every pattern concurrently and flattens the directory matches
// into a deduplicated, ordered path list. Patterns prefixed with "!" remove
// their matches from the result.
func (d *Discoverer) expand(ctx context.Context, patterns []string, origin string) ([]string, error) {
	matches := make([][]string, len(patterns))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrency)

	for i, pattern := range patterns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			dirs, err := d.globDirs(strings.TrimPrefix(pattern, "!"))
			if err != nil {
				return apperr.Wrap(err, apperr.CodeNoWorkspacesFound, "expanding workspace pattern").
					WithDetail("pattern", pattern)
			}

			if len(dirs) == 0 && !isExclusion(pattern) {
				return apperr.New(apperr.CodeNoWorkspacesFound, "workspace pattern matched no directories").
					WithDetail("pattern", pattern).
					WithDetail("source", origin)
			}

			matches[i] = dirs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	excluded := make(map[string]bool)
	for i, pattern := range patterns {
		if isExclusion(pattern) {
			for _, dir := range matches[i] {
				excluded[dir] = true
			}
		}
	}

	seen := make(map[string]bool)
	var paths []string
	for i, pattern := range patterns {
		if isExclusion(pattern) {
			continue
		}
		for _, dir := range matches[i] {
			if seen[dir] || excluded[dir] {
				continue
			}
			seen[dir] = true
			paths = append(paths, dir)
		}
	}

	if len(paths) == 0 {
		return nil, apperr.New(apperr.CodeNoWorkspacesFound, "every workspace directory was excluded").
			WithDetail("source", origin)
	}

	return paths, nil
}

// globDirs returns the directories pattern matches. Wildcards do not match
// dot directories unless the pattern names them. Directories matched through
// a "**" segment count only when they contain a manifest, so nested source
// folders of a workspace are not mistaken for workspaces.
func (d *Discoverer) globDirs(pattern string) ([]string, error) {
	matches, err := d.files.Glob(pattern)
	if err != nil {
		return nil, err
	}

	recursive := fsys.IsRecursive(pattern)

	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		if !d.files.IsDir(m) || hiddenMatch(pattern, m) {
			continue
		}
		if recursive && !d.files.IsFile(path.Join(m, PackageJSON)) {
			log.Debug().Str("pattern", pattern).Str("path", m).Msg("skipping directory without manifest")
			continue
		}
		dirs = append(dirs, m)
	}

	return dirs, nil
}

// hiddenMatch reports whether match passes through a dot directory that the
// pattern does not spell out literally.
func hiddenMatch(pattern, match string) bool {
	literal := make(map[string]bool)
	for _, seg := range strings.Split(path.Clean(pattern), "/") {
		literal[seg] = true
	}

	for _, seg := range strings.Split(match, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." && !literal[seg] {
			return true
		}
	}
	return false
}

// readNames reads the package.json of every workspace concurrently. Any
// missing or nameless manifest fails the whole discovery.
func (d *Discoverer) readNames(ctx context.Context, paths []string) ([]Definition, error) {
	var mu sync.Mutex
	names := make(map[string]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrency)

	for _, p := range paths {
		g.Go(d.readName(ctx, p, &mu, names))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	defs := make([]Definition, 0, len(paths))
	for _, p := range paths {
		defs = append(defs, Definition{Name: names[p], Path: p})
	}

	return defs, nil
}

// readName returns a function that reads a single workspace manifest and
// stores its name.
func (d *Discoverer) readName(
	ctx context.Context,
	dir string,
	mu *sync.Mutex,
	names map[string]string,
) func() error {
	return func() error {
		if err := ctx.Err(); err != nil {
			return err
		}

		manifest := path.Join(dir, PackageJSON)

		data, err := d.files.ReadFile(manifest)
		if err != nil {
			return apperr.Wrap(err, apperr.CodeMissingWorkspaceManifest, "reading workspace manifest").
				WithDetail("workspace", dir)
		}

		var pkg struct {
			Name any `json:"name"`
		}
		if err := json.Unmarshal(data, &pkg); err != nil {
			return apperr.Wrap(err, apperr.CodeMissingWorkspaceManifest, "parsing workspace manifest").
				WithDetail("workspace", dir)
		}

		name, ok := pkg.Name.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return apperr.New(apperr.CodeMissingWorkspaceManifest, "workspace manifest has no name").
				WithDetail("workspace", dir)
		}

		mu.Lock()
		names[dir] = name
		mu.Unlock()

		return nil
	}
}

// Names returns the names of defs in order.
func Names(defs []Definition) []string {
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

func isExclusion(pattern string) bool {
	return strings.HasPrefix(pattern, "!")
}

func warnDuplicateNames(defs []Definition) {
	first := make(map[string]string, len(defs))
	for _, def := range defs {
		if prev, ok := first[def.Name]; ok {
			log.Warn().
				Str("name", def.Name).
				Str("path", def.Path).
				Str("first", prev).
				Msg("duplicate workspace name")
			continue
		}
		first[def.Name] = def.Path
	}
}
