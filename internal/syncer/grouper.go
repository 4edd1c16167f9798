package syncer

import (
	"path"

	"go.dot.industries/workspace-env/internal/config"
	"go.dot.industries/workspace-env/internal/profile"
)

// Write is one planned (source, destination) copy.
type Write struct {
	Profile     string                `json:"profile"`
	Source      string                `json:"source"`
	Destination string                `json:"destination"`
	Mode        config.MergeBehaviour `json:"mode"`
}

// SelfCopy reports whether the write would read and write the same file.
func (w Write) SelfCopy() bool {
	return path.Clean(w.Source) == path.Clean(w.Destination)
}

// PlanWrites pairs every source of every profile with every workspace of that
// profile. The destination is the workspace directory joined with the
// source's base name. Order is profile, then source, then workspace.
//
// sources maps a profile's position to its source files.
func PlanWrites(profiles []profile.Profile, sources [][]string) []Write {
	var writes []Write

	for i, p := range profiles {
		for _, src := range sources[i] {
			for _, ws := range p.Workspaces {
				writes = append(writes, Write{
					Profile:     p.Name,
					Source:      src,
					Destination: path.Join(ws.Path, path.Base(src)),
					Mode:        p.MergeBehaviour,
				})
			}
		}
	}

	return writes
}

// GroupByDestination groups write positions by destination path. Within a
// group positions keep plan order. The second return value lists the
// destinations in order of first appearance.
//
// The input slice is not mutated.
func GroupByDestination(writes []Write) (map[string][]int, []string) {
	groups := make(map[string][]int, len(writes))
	var order []string

	for i, w := range writes {
		dest := path.Clean(w.Destination)
		if _, ok := groups[dest]; !ok {
			order = append(order, dest)
		}
		groups[dest] = append(groups[dest], i)
	}

	return groups, order
}
