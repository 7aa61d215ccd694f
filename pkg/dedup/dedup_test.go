package dedup

import (
	"math/rand"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/yuya-takeyama/dupsweep/pkg/digest"
	"github.com/yuya-takeyama/dupsweep/pkg/pool"
)

func sortedGroups(g Groups) map[digest.Digest][]string {
	out := make(map[digest.Digest][]string, len(g))
	for d, paths := range g {
		sorted := slices.Clone(paths)
		slices.Sort(sorted)
		out[d] = sorted
	}
	return out
}

func TestGroup(t *testing.T) {
	results := []pool.FileResult{
		{Path: "/r/a.txt", Digest: "x"},
		{Path: "/r/b.txt", Digest: "y"},
		{Path: "/r/sub/c.txt", Digest: "x"},
		{Path: "/r/d.txt", Digest: "z"},
		{Path: "/r/sub/deep/e.txt", Digest: "x"},
	}

	groups := Group(results)

	want := Groups{
		"x": {"/r/a.txt", "/r/sub/c.txt", "/r/sub/deep/e.txt"},
		"y": {"/r/b.txt"},
		"z": {"/r/d.txt"},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("Group() = %v, want %v", groups, want)
	}
	if groups.Files() != len(results) {
		t.Errorf("Files() = %d, want %d", groups.Files(), len(results))
	}

	collisions := groups.Collisions()
	if len(collisions) != 1 {
		t.Fatalf("Collisions() = %v, want only digest x", collisions)
	}
	if _, ok := collisions["x"]; !ok {
		t.Errorf("Collisions() missing digest x")
	}
}

func TestGroupOrderIndependent(t *testing.T) {
	var results []pool.FileResult
	for i, p := range []string{"/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h"} {
		results = append(results, pool.FileResult{Path: p, Digest: digest.Digest([]string{"p", "q", "r"}[i%3])})
	}
	want := sortedGroups(Group(results))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := slices.Clone(results)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := sortedGroups(Group(shuffled))
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Group(shuffled) = %v, want %v", got, want)
		}
		if again := sortedGroups(Group(shuffled)); !reflect.DeepEqual(again, got) {
			t.Fatalf("Group() is not idempotent: %v vs %v", again, got)
		}
	}
}

func TestGroupEmpty(t *testing.T) {
	groups := Group(nil)
	if len(groups) != 0 {
		t.Errorf("Group(nil) = %v, want empty", groups)
	}
	if len(groups.Collisions()) != 0 {
		t.Errorf("Collisions() of empty groups should be empty")
	}
	if decisions := Retain(groups.Collisions()); len(decisions) != 0 {
		t.Errorf("Retain() of empty groups = %v", decisions)
	}
}

func TestDepth(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		path string
		want int
	}{
		{sep + "a", 1},
		{filepath.Join(sep, "a", "f.txt"), 2},
		{filepath.Join(sep, "a", "b", "c", "f.txt"), 4},
		{"relative", 0},
	}
	for _, tt := range tests {
		if got := Depth(tt.path); got != tt.want {
			t.Errorf("Depth(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestRetain(t *testing.T) {
	p := func(parts ...string) string {
		return filepath.Join(append([]string{string(filepath.Separator)}, parts...)...)
	}

	tests := []struct {
		name       string
		collisions Groups
		want       []Decision
	}{
		{
			name: "shallowest path survives",
			collisions: Groups{
				"h": {p("a", "b", "c", "f.txt"), p("a", "f.txt"), p("a", "b", "f.txt")},
			},
			want: []Decision{
				{Digest: "h", Keep: p("a", "f.txt"), Remove: []string{p("a", "b", "f.txt"), p("a", "b", "c", "f.txt")}},
			},
		},
		{
			name: "ties keep discovery order",
			collisions: Groups{
				"h": {p("x", "deep", "1.txt"), p("x", "two.txt"), p("y", "one.txt"), p("z", "three.txt")},
			},
			want: []Decision{
				{Digest: "h", Keep: p("x", "two.txt"), Remove: []string{p("y", "one.txt"), p("z", "three.txt"), p("x", "deep", "1.txt")}},
			},
		},
		{
			name: "decisions sorted by digest",
			collisions: Groups{
				"bb": {p("r", "s", "1"), p("r", "2")},
				"aa": {p("r", "3"), p("r", "4")},
			},
			want: []Decision{
				{Digest: "aa", Keep: p("r", "3"), Remove: []string{p("r", "4")}},
				{Digest: "bb", Keep: p("r", "2"), Remove: []string{p("r", "s", "1")}},
			},
		},
		{
			name: "singleton groups are ignored",
			collisions: Groups{
				"solo": {p("only.txt")},
			},
			want: []Decision{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make(Groups)
			for d, paths := range tt.collisions {
				input[d] = slices.Clone(paths)
			}

			got := Retain(tt.collisions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Retain() = %+v, want %+v", got, tt.want)
			}
			if !reflect.DeepEqual(tt.collisions, input) {
				t.Errorf("Retain() modified its input: %v", tt.collisions)
			}
		})
	}
}
