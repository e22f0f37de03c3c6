package downloader

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// TransferUI draws the active transfer with Bubble Tea on stderr.
// Input is detached so the 522 and collision prompts can read stdin.
type TransferUI struct {
	mu      sync.Mutex
	program *tea.Program
	exited  chan struct{}
}

// NewTransferUI starts the program in the background.
func NewTransferUI() *TransferUI {
	ui := &TransferUI{exited: make(chan struct{})}
	ui.program = tea.NewProgram(newTransferModel(),
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		defer close(ui.exited)
		_, _ = ui.program.Run()
	}()
	return ui
}

func (ui *TransferUI) Register(label string, total int64) string {
	id := uuid.NewString()
	ui.send(transferStarted{id: id, label: label, total: total, at: time.Now()})
	return id
}

func (ui *TransferUI) Update(id string, current, total int64) {
	ui.send(transferProgressed{id: id, current: current, total: total})
}

func (ui *TransferUI) Finish(id string) {
	ui.send(transferFinished{id: id, at: time.Now()})
}

// Stop quits the program and waits up to two seconds for the last frame.
func (ui *TransferUI) Stop() {
	ui.mu.Lock()
	program := ui.program
	ui.program = nil
	ui.mu.Unlock()
	if program == nil {
		return
	}
	program.Send(quitUI{})
	select {
	case <-ui.exited:
	case <-time.After(2 * time.Second):
	}
}

func (ui *TransferUI) send(msg tea.Msg) {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if ui.program != nil {
		ui.program.Send(msg)
	}
}

type transferStarted struct {
	id    string
	label string
	total int64
	at    time.Time
}

type transferProgressed struct {
	id             string
	current, total int64
}

type transferFinished struct {
	id string
	at time.Time
}

type quitUI struct{}

var (
	percentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00F5D4")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2")).Bold(true)
	statsStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8")).Faint(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FDBFF"))
)

// transfer is the file currently being written.
type transfer struct {
	id      string
	label   string
	total   int64
	current int64
	started time.Time
	bar     progressbar.Model
	spin    spinner.Model
}

func (t *transfer) fraction() float64 {
	if t.total <= 0 {
		return 0
	}
	f := float64(t.current) / float64(t.total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// transferModel shows one active transfer above the summaries of the
// transfers that already completed.
type transferModel struct {
	active    *transfer
	completed []string
	width     int
	quitting  bool
}

func newTransferModel() *transferModel {
	return &transferModel{width: 80}
}

func barWidth(columns int) int {
	return min(max(columns-10, 10), 60)
}

func (m *transferModel) Init() tea.Cmd {
	return nil
}

func (m *transferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.active != nil {
			m.active.bar.Width = barWidth(m.width)
		}
		return m, nil

	case transferStarted:
		if m.active != nil {
			if m.active.id == msg.id {
				return m, nil
			}
			m.complete(msg.at)
		}
		spin := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle))
		m.active = &transfer{
			id:      msg.id,
			label:   msg.label,
			total:   msg.total,
			started: msg.at,
			bar: progressbar.New(
				progressbar.WithGradient("#FF006E", "#00F5FF"),
				progressbar.WithWidth(barWidth(m.width)),
				progressbar.WithoutPercentage(),
			),
			spin: spin,
		}
		return m, m.active.spin.Tick

	case transferProgressed:
		if m.active == nil || m.active.id != msg.id {
			return m, nil
		}
		m.active.current = msg.current
		if msg.total > 0 {
			m.active.total = msg.total
		}
		return m, m.active.bar.SetPercent(m.active.fraction())

	case transferFinished:
		if m.active != nil && m.active.id == msg.id {
			m.complete(msg.at)
		}
		return m, nil

	case progressbar.FrameMsg:
		if m.active == nil {
			return m, nil
		}
		model, cmd := m.active.bar.Update(msg)
		if bar, ok := model.(progressbar.Model); ok {
			m.active.bar = bar
		}
		return m, cmd

	case spinner.TickMsg:
		if m.active == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.active.spin, cmd = m.active.spin.Update(msg)
		return m, cmd

	case quitUI:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// complete collapses the active transfer into a summary line.
func (m *transferModel) complete(at time.Time) {
	t := m.active
	elapsed := at.Sub(t.started)
	m.completed = append(m.completed, fmt.Sprintf("%s %s  %s in %s",
		percentStyle.Render("100.0%"),
		labelStyle.Render(truncateText(t.label, m.width-30)),
		HumanBytes(max(t.current, t.total)),
		formatDurationShort(elapsed)))
	m.active = nil
}

func (m *transferModel) View() string {
	var b strings.Builder
	for _, line := range m.completed {
		b.WriteString(line + "\n")
	}
	t := m.active
	if t == nil {
		return b.String()
	}

	elapsed := time.Since(t.started)
	fmt.Fprintf(&b, "%s %s %s\n", t.spin.View(),
		percentStyle.Render(fmt.Sprintf("%5.1f%%", t.fraction()*100)),
		labelStyle.Render(truncateText(t.label, m.width-10)))
	b.WriteString(t.bar.View() + "\n")

	stats := []string{HumanBytes(t.current) + " / " + HumanBytes(t.total), formatRate(t.current, elapsed), formatDurationShort(elapsed)}
	if t.total > 0 {
		stats = append(stats, "eta "+formatDurationShort(estimateETA(t.current, t.total, elapsed)))
	}
	b.WriteString("  " + statsStyle.Render(strings.Join(stats, " · ")) + "\n")
	return b.String()
}

func formatRate(current int64, elapsed time.Duration) string {
	if elapsed <= 0 || current <= 0 {
		return "--/s"
	}
	perSecond := int64(float64(current) / elapsed.Seconds())
	if perSecond <= 0 {
		return "--/s"
	}
	return HumanBytes(perSecond) + "/s"
}

// estimateETA extrapolates the remaining time from the average rate so far.
func estimateETA(current, total int64, elapsed time.Duration) time.Duration {
	remaining := total - current
	if current <= 0 || elapsed <= 0 || remaining <= 0 {
		return 0
	}
	perSecond := float64(current) / elapsed.Seconds()
	return time.Duration(float64(remaining)/perSecond) * time.Second
}
