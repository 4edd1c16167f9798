package syncer

import (
	"go.dot.industries/workspace-env/internal/config"
)

// Outcome describes what a single write did to its destination.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeAppended    Outcome = "appended"
	OutcomePrepended   Outcome = "prepended"
	OutcomeOverwritten Outcome = "overwritten"
	OutcomeSkipped     Outcome = "skipped"
)

// separator joins existing and incoming content on append and prepend.
const separator = "\n"

// Merge computes the new destination content for src under mode. A missing
// destination always receives src verbatim. Neither input is mutated.
func Merge(mode config.MergeBehaviour, existing []byte, exists bool, src []byte) ([]byte, Outcome) {
	if !exists {
		return clone(src), OutcomeCreated
	}

	switch mode {
	case config.MergeAppend:
		return concat(existing, src), OutcomeAppended
	case config.MergePrepend:
		return concat(src, existing), OutcomePrepended
	default:
		return clone(src), OutcomeOverwritten
	}
}

func concat(first, second []byte) []byte {
	out := make([]byte, 0, len(first)+len(separator)+len(second))
	out = append(out, first...)
	out = append(out, separator...)
	return append(out, second...)
}

func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}
