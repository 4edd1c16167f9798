// Package syncer copies env files from each profile's env directory into its
// workspaces, merging with existing files.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"go.dot.industries/workspace-env/internal/fsys"
	"go.dot.industries/workspace-env/internal/profile"
)

const defaultMaxConcurrency = 10

// Option configures an Executor.
type Option func(*Executor)

// WithMaxConcurrency sets the maximum number of destinations written
// concurrently. Values less than 1 are ignored.
func WithMaxConcurrency(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxConcurrency = n
		}
	}
}

// WithDryRun makes the executor compute every write without touching the
// filesystem.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) {
		e.dryRun = dryRun
	}
}

// Executor applies profiles to a project filesystem. Writes to the same
// destination are applied one after another in profile order; distinct
// destinations are written concurrently.
type Executor struct {
	files          *fsys.FS
	maxConcurrency int
	dryRun         bool
}

// New creates an Executor for the given project filesystem.
func New(files *fsys.FS, opts ...Option) *Executor {
	e := &Executor{
		files:          files,
		maxConcurrency: defaultMaxConcurrency,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Plan expands every profile's env file patterns and returns the planned
// writes in profile order.
func (e *Executor) Plan(ctx context.Context, profiles []profile.Profile) ([]Write, error) {
	sources, err := e.expandAll(ctx, profiles)
	if err != nil {
		return nil, err
	}

	return PlanWrites(profiles, sources), nil
}

// Execute runs every profile and returns a report with one result per planned
// write. A failed write does not stop the others; the returned error
// aggregates all failures. Context cancellation aborts the run.
func (e *Executor) Execute(ctx context.Context, profiles []profile.Profile) (*Report, error) {
	writes, err := e.Plan(ctx, profiles)
	if err != nil {
		return nil, err
	}

	cache, err := e.readSources(ctx, writes)
	if err != nil {
		return nil, err
	}

	report := &Report{
		DryRun:  e.dryRun,
		Results: make([]Result, len(writes)),
	}

	groups, order := GroupByDestination(writes)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for _, dest := range order {
		g.Go(e.applyGroup(ctx, dest, groups[dest], writes, cache, report.Results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := report.Err(); err != nil {
		return report, err
	}

	return report, nil
}

// expandAll resolves the source files of every profile concurrently.
func (e *Executor) expandAll(ctx context.Context, profiles []profile.Profile) ([][]string, error) {
	sources := make([][]string, len(profiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for i, p := range profiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			files, err := e.expand(p)
			if err != nil {
				return fmt.Errorf("expand env files for profile %q: %w", p.Name, err)
			}

			sources[i] = files
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sources, nil
}

// expand matches the profile's patterns inside its env directory. Only
// regular files directly inside the directory are returned, sorted.
func (e *Executor) expand(p profile.Profile) ([]string, error) {
	dir := path.Clean(p.EnvDir)

	seen := make(map[string]bool)
	var files []string

	for _, pattern := range p.EnvFilePatterns {
		matches, err := e.files.Glob(path.Join(dir, pattern))
		if err != nil {
			return nil, err
		}

		for _, m := range matches {
			m = path.Clean(m)
			if seen[m] || !e.files.IsFile(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	sort.Strings(files)

	if len(files) == 0 {
		log.Warn().Str("profile", p.Name).Str("envDir", p.EnvDir).Msg("no env files matched")
	}

	return files, nil
}

// readSources loads every distinct source once, before any destination is
// written. A failed read is cached and reported on each write using it.
func (e *Executor) readSources(ctx context.Context, writes []Write) (*Cache, error) {
	cache := NewCache()

	seen := make(map[string]bool)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for _, w := range writes {
		if seen[w.Source] {
			continue
		}
		seen[w.Source] = true

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := e.files.ReadFile(w.Source)
			if err != nil {
				cache.SetErr(w.Source, err)
				return nil
			}

			cache.Set(w.Source, data)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return cache, nil
}

// applyGroup returns a function that applies all writes for one destination
// in order, storing each result at its plan position.
func (e *Executor) applyGroup(
	ctx context.Context,
	dest string,
	positions []int,
	writes []Write,
	cache *Cache,
	results []Result,
) func() error {
	return func() error {
		current, exists, readErr := e.readDestination(dest)

		for _, i := range positions {
			if err := ctx.Err(); err != nil {
				return err
			}

			w := writes[i]
			res := Result{Write: w}

			switch {
			case w.SelfCopy():
				res.Outcome = OutcomeSkipped
				log.Debug().Str("path", w.Source).Msg("skipping self copy")
			case readErr != nil:
				res.Err = readErr
			default:
				next, outcome, err := e.apply(w, cache, current, exists)
				if err != nil {
					res.Err = err
					break
				}
				current, exists = next, true
				res.Outcome = outcome
				res.Bytes = len(next)
			}

			if res.Err != nil {
				log.Debug().Err(res.Err).Str("source", w.Source).Str("destination", w.Destination).Msg("write failed")
			} else {
				log.Debug().
					Str("profile", w.Profile).
					Str("source", w.Source).
					Str("destination", w.Destination).
					Str("outcome", string(res.Outcome)).
					Bool("dryRun", e.dryRun).
					Msg("synced env file")
			}

			results[i] = res
		}

		return nil
	}
}

// apply merges one source into the current destination content and writes
// the result unless running dry.
func (e *Executor) apply(w Write, cache *Cache, current []byte, exists bool) ([]byte, Outcome, error) {
	src, ok, err := cache.Get(w.Source)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("source %s was not read", w.Source)
	}

	next, outcome := Merge(w.Mode, current, exists, src)

	if !e.dryRun {
		if err := e.files.WriteFile(w.Destination, next); err != nil {
			return nil, "", err
		}
	}

	return next, outcome, nil
}

// readDestination returns the destination content and whether it exists.
func (e *Executor) readDestination(dest string) ([]byte, bool, error) {
	data, err := e.files.ReadFile(dest)
	switch {
	case err == nil:
		return data, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	default:
		return nil, false, err
	}
}
