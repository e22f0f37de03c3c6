package downloader

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ProgressMode selects how transfer progress is drawn.
type ProgressMode string

const (
	ProgressAuto  ProgressMode = "auto"
	ProgressTUI   ProgressMode = "tui"
	ProgressBar   ProgressMode = "bar"
	ProgressPlain ProgressMode = "plain"
)

func ParseProgressMode(raw string) (ProgressMode, error) {
	switch mode := ProgressMode(raw); mode {
	case "", ProgressAuto:
		return ProgressAuto, nil
	case ProgressTUI, ProgressBar, ProgressPlain:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid progress mode: %q", raw)
	}
}

func (m ProgressMode) resolve(interactive bool) ProgressMode {
	switch m {
	case ProgressTUI, ProgressBar:
		if !interactive {
			return ProgressPlain
		}
		return m
	case ProgressPlain:
		return m
	default:
		if interactive {
			return ProgressTUI
		}
		return ProgressPlain
	}
}

// progressRenderer draws registered transfers.
type progressRenderer interface {
	Register(label string, total int64) string
	Update(id string, current, total int64)
	Finish(id string)
	Stop()
}

func (p *Printer) newRenderer() progressRenderer {
	switch p.progress {
	case ProgressTUI:
		return NewTransferUI()
	case ProgressBar:
		return newBarRenderer(p.out, p)
	default:
		return &plainRenderer{printer: p, tasks: map[string]plainTask{}}
	}
}

// progressWriter counts bytes written through it and forwards throttled
// updates to the renderer.
type progressWriter struct {
	size     int64
	total    atomic.Int64
	finished atomic.Bool
	renderer progressRenderer
	taskID   string
	throttle *rate.Sometimes
}

func newProgressWriter(size int64, renderer progressRenderer, label string) *progressWriter {
	return &progressWriter{
		size:     size,
		renderer: renderer,
		taskID:   renderer.Register(label, size),
		throttle: &rate.Sometimes{Interval: 100 * time.Millisecond},
	}
}

func (w *progressWriter) Write(b []byte) (int, error) {
	n := len(b)
	current := w.total.Add(int64(n))
	w.throttle.Do(func() {
		w.renderer.Update(w.taskID, current, w.size)
	})
	return n, nil
}

// Written returns the number of bytes seen so far.
func (w *progressWriter) Written() int64 {
	return w.total.Load()
}

func (w *progressWriter) Finish() {
	if w.finished.Swap(true) {
		return
	}
	w.renderer.Update(w.taskID, w.total.Load(), w.size)
	w.renderer.Finish(w.taskID)
}

// plainRenderer prints one summary line per transfer, for logs and pipes.
type plainRenderer struct {
	printer *Printer
	mu      sync.Mutex
	seq     int
	tasks   map[string]plainTask
}

type plainTask struct {
	label   string
	current int64
	total   int64
	start   time.Time
}

func (r *plainRenderer) Register(label string, total int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("plain-%d", r.seq)
	r.tasks[id] = plainTask{label: label, total: total, start: time.Now()}
	return id
}

func (r *plainRenderer) Update(id string, current, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, ok := r.tasks[id]; ok {
		task.current = current
		if total > 0 {
			task.total = total
		}
		r.tasks[id] = task
	}
}

func (r *plainRenderer) Finish(id string) {
	r.mu.Lock()
	task, ok := r.tasks[id]
	delete(r.tasks, id)
	r.mu.Unlock()
	if !ok || r.printer == nil || r.printer.quiet {
		return
	}
	r.printer.writeProgressLine(r.printer.progressLine(task.label, task.current, task.total, time.Since(task.start)))
}

func (r *plainRenderer) Stop() {}
