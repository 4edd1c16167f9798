package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"go.dot.industries/workspace-env/internal/fsys"
)

// Manifest file names consulted at the project root, in priority order.
const (
	PackageJSON   = "package.json"
	PnpmWorkspace = "pnpm-workspace.yaml"
	LernaJSON     = "lerna.json"
)

// source reads a workspace pattern list from one manifest file.
type source struct {
	file  string
	parse func(data []byte) ([]string, error)
}

// sources are ordered by priority; the first that yields entries wins.
var sources = []source{
	{file: PackageJSON, parse: parsePackageJSON},
	{file: PnpmWorkspace, parse: parsePnpmWorkspace},
	{file: LernaJSON, parse: parseLernaJSON},
}

// sourceResult holds what one manifest source produced.
type sourceResult struct {
	patterns []string
	err      error
}

// ReadManifestPatterns reads every manifest source concurrently and returns
// the pattern list of the highest priority source that parses and is
// non-empty, along with that source's file name. It returns an empty name
// when no source yields anything.
func ReadManifestPatterns(ctx context.Context, files *fsys.FS) ([]string, string, error) {
	var mu sync.Mutex
	results := make(map[string]sourceResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			patterns, err := readSource(files, src)

			mu.Lock()
			results[src.file] = sourceResult{patterns: patterns, err: err}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	for _, src := range sources {
		res := results[src.file]
		if res.err != nil {
			log.Debug().Err(res.err).Str("file", src.file).Msg("skipping workspace source")
			continue
		}
		if len(res.patterns) == 0 {
			continue
		}
		return res.patterns, src.file, nil
	}

	return nil, "", nil
}

// readSource returns (nil, nil) when the file does not exist.
func readSource(files *fsys.FS, src source) ([]string, error) {
	data, err := files.ReadFile(src.file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	patterns, err := src.parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.file, err)
	}

	return patterns, nil
}

// parsePackageJSON accepts both the array form of "workspaces" and the yarn
// object form {"packages": [...]}.
func parsePackageJSON(data []byte) ([]string, error) {
	var manifest struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	if len(manifest.Workspaces) == 0 || string(manifest.Workspaces) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(manifest.Workspaces, &list); err == nil {
		return list, nil
	}

	var yarn struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(manifest.Workspaces, &yarn); err != nil {
		return nil, fmt.Errorf("workspaces: expected an array or an object with packages: %w", err)
	}

	return yarn.Packages, nil
}

func parsePnpmWorkspace(data []byte) ([]string, error) {
	var manifest struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return manifest.Packages, nil
}

func parseLernaJSON(data []byte) ([]string, error) {
	var manifest struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return manifest.Packages, nil
}
