package downloader

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-colorable"
)

// LogLevel ranks user-facing notices.
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogWarn:
		return "WARN"
	case LogError:
		return "ERROR"
	default:
		return "INFO"
	}
}

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D27A")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FDBFF")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D")).Bold(true)
)

// Printer is the display surface for notices, progress, and results.
type Printer struct {
	out         io.Writer
	quiet       bool
	color       bool
	interactive bool
	columns     int
	progress    ProgressMode
	mu          sync.Mutex
}

// NewPrinter writes to stderr through a color-capable writer.
func NewPrinter(opts Options) *Printer {
	interactive := isTerminal(os.Stderr)
	return newPrinter(colorable.NewColorableStderr(), opts, interactive && supportsColor(), interactive)
}

func newPrinter(out io.Writer, opts Options, color, interactive bool) *Printer {
	columns := terminalColumns()
	if columns <= 0 {
		columns = 100
	}
	return &Printer{
		out:         out,
		quiet:       opts.Quiet,
		color:       color,
		interactive: interactive,
		columns:     columns,
		progress:    opts.Progress.resolve(interactive),
	}
}

// Notice reports a step the operator should see.
func (p *Printer) Notice(msg string) {
	p.Log(LogInfo, msg)
}

func (p *Printer) Log(level LogLevel, msg string) {
	if p == nil || msg == "" {
		return
	}
	if p.quiet && level == LogInfo {
		return
	}
	style := infoStyle
	switch level {
	case LogWarn:
		style = warnStyle
	case LogError:
		style = failStyle
	}
	label := p.render(style, "["+level.String()+"]")
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", label, msg)
}

// Saved reports the final location of a downloaded file.
func (p *Printer) Saved(path string, bytes int64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s Saved at '%s' (%s)\n", p.render(okStyle, "OK"), path, HumanBytes(bytes))
}

// Failed reports an error that ends the run.
func (p *Printer) Failed(err error) {
	if p == nil || err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", p.render(failStyle, "FAIL"), truncateText(err.Error(), p.columns*4))
}

// Header renders text in the banner style.
func (p *Printer) Header(text string) string {
	if p == nil {
		return text
	}
	return p.render(headerStyle, text)
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

func (p *Printer) progressLine(prefix string, current, total int64, elapsed time.Duration) string {
	speed := ""
	if elapsed > 0 {
		speed = HumanBytes(int64(float64(current)/elapsed.Seconds())) + "/s"
	}

	if total > 0 {
		percent := float64(current) * 100 / float64(total)
		return fmt.Sprintf("%s %6.2f%% %s / %s %s",
			prefix,
			percent,
			padLeft(HumanBytes(current), 9),
			padLeft(HumanBytes(total), 9),
			padLeft(speed, 10),
		)
	}

	return fmt.Sprintf("%s %s %s",
		prefix,
		padLeft(HumanBytes(current), 9),
		padLeft(speed, 10),
	)
}

func (p *Printer) writeProgressLine(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

func padLeft(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat(" ", width-len(value)) + value
}

func truncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}

func terminalColumns() int {
	if columns := os.Getenv("COLUMNS"); columns != "" {
		if val, err := strconv.Atoi(columns); err == nil && val > 0 {
			return val
		}
	}
	return 0
}

func isTerminal(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func supportsColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return os.Getenv("CLICOLOR") != "0"
}
