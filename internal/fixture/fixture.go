// Package fixture generates directory trees of random files, a share of which
// have identical content, for exercising duplicate detection.
package fixture

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	nameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	textChars = nameChars + "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ "
)

var extensions = []string{".mov", ".mp4", ".pdf", ".jpg", ".png", ".c", ".cpp", ".js", ".rs", ".sv", ".docx", ".ppt"}

type Options struct {
	Dirs             int // subdirectories per directory
	FilesPerDir      int
	Depth            int
	Length           int // bytes of text per file
	DuplicatePercent int
	Seed             uint64
}

// DefaultOptions matches the layout used for manual testing: 62 directories
// holding 620 files, a fifth of them duplicated.
func DefaultOptions() Options {
	return Options{
		Dirs:             2,
		FilesPerDir:      10,
		Depth:            5,
		Length:           100,
		DuplicatePercent: 20,
	}
}

func (o Options) Validate() error {
	switch {
	case o.Dirs < 1:
		return fmt.Errorf("dirs must be at least 1: %d", o.Dirs)
	case o.FilesPerDir < 1:
		return fmt.Errorf("files must be at least 1: %d", o.FilesPerDir)
	case o.Depth < 1:
		return fmt.Errorf("depth must be at least 1: %d", o.Depth)
	case o.Length < 1:
		return fmt.Errorf("length must be at least 1: %d", o.Length)
	case o.DuplicatePercent < 0 || o.DuplicatePercent > 100:
		return fmt.Errorf("duplicates must be a percentage between 0 and 100: %d", o.DuplicatePercent)
	}
	return nil
}

// groupSize is the number of copies sharing one content. A single file is
// not a duplicate, so groups have at least two members.
func (o Options) groupSize() int {
	return max(o.FilesPerDir, 2)
}

// File is one generated file. Group is the index of its duplicate group, or
// -1 for unique content.
type File struct {
	Path    string
	Content []byte
	Group   int
}

type Plan struct {
	Root   string
	Dirs   []string
	Files  []File
	Groups int
}

// NewPlan lays out the tree under root without touching any filesystem
func NewPlan(root string, opts Options) (*Plan, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	p := &Plan{Root: root}

	var paths []string
	var layout func(dir string, depth int)
	layout = func(dir string, depth int) {
		if depth >= opts.Depth {
			return
		}
		used := map[string]bool{}
		for range opts.Dirs {
			sub := filepath.Join(dir, uniqueName(rng, used, ""))
			p.Dirs = append(p.Dirs, sub)

			files := map[string]bool{}
			for range opts.FilesPerDir {
				ext := extensions[rng.IntN(len(extensions))]
				paths = append(paths, filepath.Join(sub, uniqueName(rng, files, ext)))
			}

			layout(sub, depth+1)
		}
	}
	layout(root, 0)

	rng.Shuffle(len(paths), func(i, j int) {
		paths[i], paths[j] = paths[j], paths[i]
	})

	size := opts.groupSize()
	p.Groups = len(paths) * opts.DuplicatePercent / 100 / size
	duplicated := p.Groups * size

	var content []byte
	for i, path := range paths {
		f := File{Path: path, Group: -1}
		if i < duplicated {
			if i%size == 0 {
				content = randomText(rng, opts.Length)
			}
			f.Group = i / size
			f.Content = content
		} else {
			f.Content = randomText(rng, opts.Length)
		}
		p.Files = append(p.Files, f)
	}

	return p, nil
}

// Duplicates returns the number of files whose content appears more than once
func (p *Plan) Duplicates() int {
	n := 0
	for _, f := range p.Files {
		if f.Group >= 0 {
			n++
		}
	}
	return n
}

// Write creates the planned directories and then writes the files with up to
// workers concurrent writers. The first failure cancels the remaining writes.
func Write(ctx context.Context, fs afero.Fs, p *Plan, workers int) error {
	for _, dir := range p.Dirs {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, f := range p.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := afero.WriteFile(fs, f.Path, f.Content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.Path, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func uniqueName(rng *rand.Rand, used map[string]bool, ext string) string {
	for {
		b := make([]byte, 8)
		for i := range b {
			b[i] = nameChars[rng.IntN(len(nameChars))]
		}
		name := string(b) + ext
		if !used[name] {
			used[name] = true
			return name
		}
	}
}

func randomText(rng *rand.Rand, length int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = textChars[rng.IntN(len(textChars))]
	}
	return b
}
