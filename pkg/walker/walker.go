package walker

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Entry is one traversal outcome: either a regular file or a skip
// diagnostic for an entry that could not be read.
type Entry struct {
	Path string // Absolute path
	Err  error  // Non-nil when Path was skipped
}

// Skipped reports whether the entry is a diagnostic rather than a file
func (e Entry) Skipped() bool {
	return e.Err != nil
}

// Skip is a path the traversal could not descend into or stat
type Skip struct {
	Path string
	Err  error
}

// Walker walks local files with exclude pattern support
type Walker struct {
	fs       afero.Fs
	root     string
	excludes []string
}

var errStop = errors.New("walk stopped")

// NewWalker creates a new file walker. The root must exist and be a directory.
func NewWalker(fs afero.Fs, root string, excludes []string) (*Walker, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	info, err := fs.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	// The walk lstats its root, so a symlinked root would yield nothing
	if absRoot, err = resolveRoot(fs, absRoot); err != nil {
		return nil, err
	}

	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(strings.TrimSuffix(pattern, "/")) {
			return nil, fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}

	return &Walker{
		fs:       fs,
		root:     absRoot,
		excludes: excludes,
	}, nil
}

func resolveRoot(fs afero.Fs, root string) (string, error) {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return root, nil
	}
	info, _, err := lstater.LstatIfPossible(root)
	if err != nil {
		return "", fmt.Errorf("stat root: %w", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return root, nil
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	return resolved, nil
}

// Root returns the absolute root directory
func (w *Walker) Root() string {
	return w.root
}

// Entries yields every regular file under the root and a diagnostic entry
// for every directory or entry that could not be read. A failing entry never
// stops the walk; its siblings are still visited.
func (w *Walker) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		err := afero.Walk(w.fs, w.root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if !yield(Entry{Path: path, Err: err}) {
					return errStop
				}
				return nil
			}

			relPath, err := filepath.Rel(w.root, path)
			if err != nil {
				if !yield(Entry{Path: path, Err: fmt.Errorf("get relative path: %w", err)}) {
					return errStop
				}
				return nil
			}
			relPath = filepath.ToSlash(relPath)

			if info.IsDir() {
				if path != w.root && w.isExcludedDir(relPath) {
					return filepath.SkipDir
				}
				return nil
			}

			// Symlinks and special files are never collected
			if !info.Mode().IsRegular() {
				return nil
			}

			if w.isExcluded(relPath) {
				return nil
			}

			if !yield(Entry{Path: path}) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) && !errors.Is(err, filepath.SkipDir) {
			yield(Entry{Path: w.root, Err: fmt.Errorf("walk directory: %w", err)})
		}
	}
}

// Walk drains Entries into the discovered paths and the skipped ones
func (w *Walker) Walk() ([]string, []Skip) {
	var files []string
	var skipped []Skip

	for entry := range w.Entries() {
		if entry.Skipped() {
			skipped = append(skipped, Skip{Path: entry.Path, Err: entry.Err})
			continue
		}
		files = append(files, entry.Path)
	}

	return files, skipped
}

// isExcludedDir checks if a directory is pruned by a directory pattern
func (w *Walker) isExcludedDir(path string) bool {
	for _, pattern := range w.excludes {
		if !strings.HasSuffix(pattern, "/") {
			continue
		}
		if matched, _ := doublestar.Match(strings.TrimSuffix(pattern, "/"), path); matched {
			return true
		}
	}
	return false
}

// isExcluded checks if a path matches any exclude pattern
func (w *Walker) isExcluded(path string) bool {
	for _, pattern := range w.excludes {
		// Handle directory patterns (ending with /)
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			parts := strings.Split(path, "/")
			for i := 1; i < len(parts); i++ {
				subPath := strings.Join(parts[:i], "/")
				if matched, _ := doublestar.Match(dirPattern, subPath); matched {
					return true
				}
			}
			continue
		}

		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
