package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/kinnison/git-sync/pkg/transfer"
)

// progressReporter draws a bar while objects are copied. The engine
// serialises calls to Update.
type progressReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer) *progressReporter {
	return &progressReporter{w: w}
}

// Update implements transfer.ProgressFunc.
func (p *progressReporter) Update(stage transfer.State, done, total int) {
	if stage != transfer.StateTransferringObjects {
		p.Close()
		return
	}
	if total <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription("copying objects"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
		)
	}
	_ = p.bar.Set(done)
}

// Close finishes the bar if one is showing.
func (p *progressReporter) Close() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	io.WriteString(p.w, "\n")
	p.bar = nil
}
