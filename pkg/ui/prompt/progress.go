package prompt

import (
	"io"

	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// Progress drives a pterm progress bar from progress callbacks. The bar
// starts on the first callback that carries a known total; without one
// nothing is drawn.
type Progress struct {
	Title  string
	Writer io.Writer
	Bytes  bool

	bar     *pterm.ProgressbarPrinter
	current int64
}

// NewProgress creates a progress bar writing to w. When bytes is set the
// title shows humanized sizes.
func NewProgress(title string, w io.Writer, bytes bool) *Progress {
	return &Progress{Title: title, Writer: w, Bytes: bytes}
}

// Func returns the callback to hand to long-running operations
func (p *Progress) Func() types.ProgressFunc {
	return p.Update
}

// Update moves the bar to done out of total
func (p *Progress) Update(done, total int64) {
	if total <= 0 {
		return
	}
	if p.bar == nil {
		title := p.Title
		if p.Bytes {
			title += " (" + humanize.Bytes(uint64(total)) + ")"
		}
		bar, err := pterm.DefaultProgressbar.
			WithTotal(int(total)).
			WithTitle(title).
			WithWriter(p.Writer).
			Start()
		if err != nil {
			return
		}
		p.bar = bar
	}
	if delta := done - p.current; delta > 0 {
		p.bar.Add(int(delta))
		p.current = done
	}
}

// Stop removes the bar from the screen
func (p *Progress) Stop() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
