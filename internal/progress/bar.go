package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar renders hashing progress. It satisfies pool.Observer.
type Bar struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	skipped atomic.Int64
}

func New(out io.Writer) *Bar {
	return &Bar{out: out}
}

// Start sizes the bar. It must be called before any file is reported.
func (b *Bar) Start(total int) {
	b.bar = progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(120*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(b.out)
		}),
	)
	_ = b.bar.RenderBlank()
}

func (b *Bar) FileHashed(path string) {
	_ = b.bar.Add(1)
}

func (b *Bar) FileSkipped(path string, err error) {
	n := b.skipped.Add(1)
	b.bar.Describe(fmt.Sprintf("hashing (skipped %d)", n))
	_ = b.bar.Add(1)
}

// Skipped returns how many files were reported as skipped
func (b *Bar) Skipped() int64 {
	return b.skipped.Load()
}

// Close finishes the bar if it was started
func (b *Bar) Close() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}
