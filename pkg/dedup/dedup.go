package dedup

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/yuya-takeyama/dupsweep/pkg/digest"
	"github.com/yuya-takeyama/dupsweep/pkg/pool"
)

// Groups maps a digest to every path sharing it, in result order
type Groups map[digest.Digest][]string

// Decision is the retention outcome for one collision group
type Decision struct {
	Digest digest.Digest
	Keep   string
	Remove []string
}

// Group builds the digest to paths mapping from hashing results
func Group(results []pool.FileResult) Groups {
	groups := make(Groups)
	for _, r := range results {
		groups[r.Digest] = append(groups[r.Digest], r.Path)
	}
	return groups
}

// Collisions returns only the groups with two or more members
func (g Groups) Collisions() Groups {
	collisions := make(Groups)
	for d, paths := range g {
		if len(paths) > 1 {
			collisions[d] = slices.Clone(paths)
		}
	}
	return collisions
}

// Digests returns the group keys in ascending order
func (g Groups) Digests() []digest.Digest {
	keys := make([]digest.Digest, 0, len(g))
	for d := range g {
		keys = append(keys, d)
	}
	slices.Sort(keys)
	return keys
}

// Files returns the total number of paths across all groups
func (g Groups) Files() int {
	n := 0
	for _, paths := range g {
		n += len(paths)
	}
	return n
}

// Depth counts the path separators in path
func Depth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}

// Retain decides which member of each collision group survives: the one
// with the fewest path separators, ties going to the earlier member. Every
// other member is marked for removal. Decisions are ordered by digest.
func Retain(collisions Groups) []Decision {
	decisions := make([]Decision, 0, len(collisions))

	for _, d := range collisions.Digests() {
		paths := slices.Clone(collisions[d])
		if len(paths) < 2 {
			continue
		}

		slices.SortStableFunc(paths, func(a, b string) int {
			return Depth(a) - Depth(b)
		})

		decisions = append(decisions, Decision{
			Digest: d,
			Keep:   paths[0],
			Remove: paths[1:],
		})
	}

	return decisions
}
