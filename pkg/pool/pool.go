package pool

import (
	"errors"
	"runtime"
	"sync"

	"github.com/yuya-takeyama/dupsweep/pkg/digest"
)

// FallbackWorkers is used when the hardware parallelism is unknown
const FallbackWorkers = 4

// ErrUnreadable marks a file whose digest came back as the unreadable sentinel
var ErrUnreadable = errors.New("file could not be read")

// Digester computes the digest of one file. Implementations must be safe
// for concurrent use on distinct paths.
type Digester interface {
	File(path string) (digest.Digest, error)
}

// Observer is told how many files a Hash call will process and is then
// notified as each one finishes. Per-file calls may arrive concurrently.
type Observer interface {
	Start(total int)
	FileHashed(path string)
	FileSkipped(path string, err error)
}

// FileResult pairs a path with its digest
type FileResult struct {
	Path   string
	Digest digest.Digest
}

// Skip is a file that could not be digested
type Skip struct {
	Path string
	Err  error
}

// Result is the outcome of hashing a batch of files. Files and Skipped keep
// the order of the paths given to Hash.
type Result struct {
	Files   []FileResult
	Skipped []Skip
}

// job is one claimed path and its position in the input
type job struct {
	index int
	path  string
}

// outcome is the per-slot result; exactly one of file or skip is set
type outcome struct {
	file *FileResult
	skip *Skip
}

// Pool hashes files with a fixed number of workers
type Pool struct {
	digester Digester
	workers  int
	observer Observer
}

// DefaultWorkers returns the hardware parallelism, never less than one
func DefaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return FallbackWorkers
}

// NewPool creates a new worker pool. A non-positive worker count selects
// DefaultWorkers; a nil observer discards notifications.
func NewPool(digester Digester, workers int, observer Observer) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Pool{
		digester: digester,
		workers:  workers,
		observer: observer,
	}
}

// Workers returns the number of workers used per Hash call
func (p *Pool) Workers() int {
	return p.workers
}

// Hash digests every path exactly once and returns after all workers have
// exited. Files that cannot be read are reported in Result.Skipped. Both
// slices follow input order regardless of which worker finished first.
func (p *Pool) Hash(paths []string) Result {
	p.observer.Start(len(paths))

	// Pending work: each receive claims one path
	jobs := make(chan job, len(paths))
	for i, path := range paths {
		jobs <- job{index: i, path: path}
	}
	close(jobs)

	var (
		mu       sync.Mutex
		outcomes = make([]outcome, len(paths))
		wg       sync.WaitGroup
	)

	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker(jobs, &mu, outcomes, &wg)
	}

	wg.Wait()

	result := Result{Files: make([]FileResult, 0, len(paths))}
	for _, o := range outcomes {
		switch {
		case o.file != nil:
			result.Files = append(result.Files, *o.file)
		case o.skip != nil:
			result.Skipped = append(result.Skipped, *o.skip)
		}
	}
	return result
}

// worker processes jobs until the queue is drained. The digest is computed
// without holding mu.
func (p *Pool) worker(jobs <-chan job, mu *sync.Mutex, outcomes []outcome, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		d, err := p.digester.File(j.path)
		if err == nil && d == digest.Unreadable {
			err = ErrUnreadable
		}

		if err != nil {
			mu.Lock()
			outcomes[j.index] = outcome{skip: &Skip{Path: j.path, Err: err}}
			mu.Unlock()

			p.observer.FileSkipped(j.path, err)
			continue
		}

		mu.Lock()
		outcomes[j.index] = outcome{file: &FileResult{Path: j.path, Digest: d}}
		mu.Unlock()

		p.observer.FileHashed(j.path)
	}
}

type nopObserver struct{}

func (nopObserver) Start(int)                 {}
func (nopObserver) FileHashed(string)         {}
func (nopObserver) FileSkipped(string, error) {}
