// Package ui renders pipeline responses for the interactive terminal session.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"autopilot/internal/protocol"
)

var (
	colorPrimary = lipgloss.Color("#4ecdc4")
	colorAlert   = lipgloss.Color("#ff6b6b")
	colorCaution = lipgloss.Color("#f7b731")
	colorDim     = lipgloss.Color("#6c6c6c")

	titleStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	rejectedStyle = lipgloss.NewStyle().Foreground(colorAlert).Bold(true)
	approvedStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)
)

// Printer writes formatted responses. Markdown is rendered through glamour
// when a renderer could be constructed, and falls back to plain text.
type Printer struct {
	out      io.Writer
	renderer *glamour.TermRenderer
}

// NewPrinter builds a printer for the given writer.
func NewPrinter(out io.Writer) *Printer {
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	return &Printer{out: out, renderer: renderer}
}

// Welcome prints the session banner.
func (p *Printer) Welcome(version, repoPath string) {
	title := titleStyle.Render("AutoPilot DevOps " + version)
	info := dimStyle.Render("read-only analysis - type a request, or 'exit' to quit")
	repo := dimStyle.Render("repository: " + repoPath)
	fmt.Fprintln(p.out, boxStyle.Render(title+"\n"+info+"\n"+repo))
}

// Response prints one pipeline response: status line, rendered body, tool
// and report summaries.
func (p *Printer) Response(resp protocol.Response) {
	if resp.SafetyStatus == protocol.StatusRejected {
		fmt.Fprintln(p.out, rejectedStyle.Render("[REJECTED by safety review]"))
	} else {
		fmt.Fprintln(p.out, approvedStyle.Render("[approved]"))
	}

	fmt.Fprintln(p.out, p.markdown(resp.Text))

	if len(resp.ToolsUsed) > 0 {
		fmt.Fprintln(p.out, dimStyle.Render("tools: "+strings.Join(resp.ToolsUsed, ", ")))
	}
	if len(resp.Visualizations) > 0 {
		names := make([]string, 0, len(resp.Visualizations))
		for name := range resp.Visualizations {
			names = append(names, name)
		}
		fmt.Fprintln(p.out, dimStyle.Render("visualizations: "+strings.Join(names, ", ")))
	}
	if n := len(resp.RefactorSuggestionsReport); n > 0 {
		fmt.Fprintln(p.out, lipgloss.NewStyle().Foreground(colorCaution).
			Render(fmt.Sprintf("%d refactor suggestion(s) available", n)))
	}
}

// Error prints a failure line.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.out, rejectedStyle.Render("error: ")+err.Error())
}

func (p *Printer) markdown(text string) string {
	if p.renderer == nil {
		return text
	}
	rendered, err := p.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}
