package downloader

import (
	"fmt"
	"io"
	"sync"

	"fortio.org/progressbar"
	"github.com/google/uuid"
)

// barRenderer draws the transfer as one fortio bar line. A new Register
// ends the previous bar.
type barRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	color bool

	id      string
	bar     *progressbar.Bar
	current int64
	total   int64
}

func newBarRenderer(out io.Writer, printer *Printer) *barRenderer {
	return &barRenderer{out: out, color: printer != nil && printer.color}
}

func (r *barRenderer) Register(label string, total int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.End()
	}
	r.id = uuid.NewString()
	r.current, r.total = 0, total
	cfg := progressbar.Config{
		Width:        30,
		UseColors:    r.color,
		Color:        progressbar.RedBar,
		Prefix:       label + " ",
		Suffix:       " " + HumanBytes(total),
		ScreenWriter: r.out,
	}
	r.bar = cfg.NewBar()
	return r.id
}

func (r *barRenderer) Update(id string, current, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil || id != r.id {
		return
	}
	r.current = current
	if total > 0 {
		r.total = total
	}
	percent := 0.0
	if r.total > 0 {
		percent = 100 * float64(r.current) / float64(r.total)
	}
	r.bar.UpdateSuffix(fmt.Sprintf(" %s/%s", HumanBytes(r.current), HumanBytes(r.total)))
	r.bar.Progress(percent)
}

func (r *barRenderer) Finish(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil || id != r.id {
		return
	}
	r.bar.UpdateSuffix(" " + HumanBytes(r.current) + " done")
	r.bar.Progress(100)
	r.bar.End()
	r.bar = nil
}

func (r *barRenderer) Stop() {}
