package scheduler

import (
	"path/filepath"
	"strings"

	"github.com/worldmind/worldmind/internal/models"
)

// filesOverlap applies the scheduler's conservative, directional file-match
// rule: two declared paths overlap if, after cleaning, one is a path-segment
// suffix of the other. This catches the common case of one task declaring a
// package-relative path ("handler.go") and another declaring a
// repo-relative path ("internal/api/handler.go") for the same file, at the
// cost of occasionally over-serializing two genuinely distinct files that
// happen to share a trailing path segment (e.g. "a/config.go" and
// "b/config.go"). That false-positive rate is an accepted, intentional
// tradeoff in favor of never missing a real collision — it is not "fixed"
// by tightening the match, per the decision recorded in DESIGN.md.
func filesOverlap(a, b string) bool {
	ca := filepath.Clean(a)
	cb := filepath.Clean(b)
	if ca == cb {
		return true
	}
	return hasSuffixPath(ca, cb) || hasSuffixPath(cb, ca)
}

// hasSuffixPath reports whether short is a trailing path-segment suffix of
// long (e.g. "api/handler.go" is a suffix of "internal/api/handler.go").
func hasSuffixPath(long, short string) bool {
	if long == short {
		return true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(long, sep+short) {
		return false
	}
	return true
}

// anyOverlap reports whether declared overlaps with any path in the set.
func anyOverlap(declared []string, set []string) bool {
	for _, d := range declared {
		for _, s := range set {
			if filesOverlap(d, s) {
				return true
			}
		}
	}
	return false
}

// taskFileOverlap reports whether two tasks declare overlapping files.
// Empty TargetFiles on either side is "no claim" — a permissive reading
// that never triggers a conflict, matching the decision recorded in
// DESIGN.md: a task that declares no files is assumed not to touch
// anything the scheduler needs to serialize against, rather than being
// conservatively treated as touching everything.
func taskFileOverlap(a, b *models.Task) bool {
	if len(a.TargetFiles) == 0 || len(b.TargetFiles) == 0 {
		return false
	}
	return anyOverlap(a.TargetFiles, b.TargetFiles)
}
