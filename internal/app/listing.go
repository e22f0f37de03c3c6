package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lvcoi/y2mate-dl/internal/db"
	"github.com/lvcoi/y2mate-dl/internal/downloader"
	"github.com/lvcoi/y2mate-dl/internal/y2mate"
)

// About identifies the tool in the banner and -version output.
type About struct {
	Title   string
	Version string
	Author  string
	Email   string
}

var Project = About{
	Title:   "y2mate-dl",
	Version: "0.1.0",
	Author:  "lvcoi",
}

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFE66D"))
	familyStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7FDBFF"))
	headerCell  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	bodyCell    = lipgloss.NewStyle().Padding(0, 1)
)

// Banner renders the project header.
func (a About) Banner() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("-", 29) + "\n")
	b.WriteString(bannerStyle.Render(a.Title+" "+a.Version) + "\n")
	b.WriteString(strings.Repeat("-", 62) + "\n")
	by := "by " + a.Author
	if a.Email != "" {
		by += " (" + a.Email + ")"
	}
	b.WriteString(by + "\n")
	b.WriteString(strings.Repeat("-", 62) + "\n")
	return b.String()
}

// QualityLabel formats a quality with its unit: p for video, kbps for audio.
func QualityLabel(format string, quality int) string {
	if y2mate.IsAudioFormat(format) {
		return strconv.Itoa(quality) + "kbps"
	}
	return strconv.Itoa(quality) + "p"
}

func sizeLabel(o y2mate.Option) string {
	if !o.HasSize() {
		return "unknown"
	}
	return o.Size
}

// WriteOptions prints the banner, the service, and one table per family.
func WriteOptions(w io.Writer, opts y2mate.Options, formats []string) {
	fmt.Fprint(w, Project.Banner())
	fmt.Fprintf(w, "\nService: %s\n", opts.Mode)
	if opts.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", opts.Title)
	}
	fmt.Fprintln(w, "\nAvailable options:")

	for _, format := range formats {
		fmt.Fprintf(w, "\n%s\n", familyStyle.Render(capitalize(format)))
		options, ok := opts.Formats[format]
		if !ok {
			fmt.Fprintln(w, "no options available")
			continue
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Quality", "Size").
			StyleFunc(cellStyle)
		for _, o := range options {
			t.Row(QualityLabel(format, o.Quality), sizeLabel(o))
		}
		fmt.Fprintln(w, t.Render())
	}
}

func cellStyle(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerCell
	}
	return bodyCell
}

// WriteHistory prints saved downloads, newest first, with the total count.
func WriteHistory(w io.Writer, records []db.Record, total int) {
	fmt.Fprintf(w, "Download history (%d of %d)\n", len(records), total)
	if len(records) == 0 {
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Saved", "Title", "Quality", "Size", "Path").
		StyleFunc(cellStyle)
	for _, r := range records {
		t.Row(
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Title,
			QualityLabel(r.Format, r.Quality),
			downloader.HumanBytes(r.FileSize),
			r.FilePath,
		)
	}
	fmt.Fprintln(w, t.Render())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
