// Package render draws session output on a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/docchat-cli/internal/session"
)

const emptyStateText = "Upload a document to start chatting."

type styles struct {
	user      lipgloss.Style
	assistant lipgloss.Style
	muted     lipgloss.Style
	warn      lipgloss.Style
	selected  lipgloss.Style
	title     lipgloss.Style
	body      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, color bool) styles {
	if !color {
		plain := r.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		muted:     r.NewStyle().Faint(true),
		warn:      r.NewStyle().Foreground(lipgloss.Color("11")),
		selected:  r.NewStyle().Bold(true),
		title:     r.NewStyle().Underline(true),
		body:      r.NewStyle(),
	}
}

// Options configures a Terminal.
type Options struct {
	// Color enables ANSI styling when the output supports it.
	Color bool
	// Interactive shows transient output such as the loading indicator.
	Interactive bool
}

// Terminal is a line-oriented session.Renderer.
type Terminal struct {
	out         io.Writer
	st          styles
	interactive bool

	// outMu makes each write atomic with respect to the poll goroutine.
	outMu sync.Mutex

	mu            sync.Mutex
	loading       bool
	inputEnabled  bool
	uploadVisible bool
	highlighted   string
	entries       []session.ListEntry
}

// NewTerminal writes to out.
func NewTerminal(out io.Writer, opts Options) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:           out,
		st:            newStyles(r, opts.Color),
		interactive:   opts.Interactive,
		uploadVisible: true,
	}
}

func (t *Terminal) printf(format string, args ...any) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// Printf writes unstyled text, such as a REPL prompt, in one piece.
func (t *Terminal) Printf(format string, args ...any) {
	t.printf(format, args...)
}

// AppendMessage prints one transcript message with a role label.
func (t *Terminal) AppendMessage(m session.Message) {
	label := t.st.assistant.Render("docchat")
	if m.Role == session.RoleUser {
		label = t.st.user.Render("you")
	}
	body := t.st.body
	if strings.HasPrefix(m.Text, "⚠") {
		body = t.st.warn
	}
	// Styled line by line; lipgloss pads multi-line blocks to equal width.
	lines := strings.Split(m.Text, "\n")
	var b strings.Builder
	fmt.Fprintf(&b, "%s> %s\n", label, body.Render(lines[0]))
	for _, l := range lines[1:] {
		fmt.Fprintf(&b, "  %s\n", body.Render(l))
	}
	t.printf("%s", b.String())
}

func (t *Terminal) ShowLoading() {
	t.mu.Lock()
	t.loading = true
	t.mu.Unlock()
	if t.interactive {
		t.printf("%s\n", t.st.muted.Render("..."))
	}
}

func (t *Terminal) RemoveLoading() {
	t.mu.Lock()
	t.loading = false
	t.mu.Unlock()
}

func (t *Terminal) ClearTranscript() {
	if t.interactive {
		t.printf("%s\n", t.st.muted.Render(strings.Repeat("─", 40)))
	}
}

func (t *Terminal) ShowEmptyState() {
	t.printf("%s\n", t.st.muted.Render(emptyStateText))
}

func (t *Terminal) SetInputEnabled(enabled bool) {
	t.mu.Lock()
	t.inputEnabled = enabled
	t.mu.Unlock()
}

func (t *Terminal) SetUploadVisible(visible bool) {
	t.mu.Lock()
	t.uploadVisible = visible
	t.mu.Unlock()
}

// RenderList prints a numbered list; numbers are what `/open <n>` accepts.
func (t *Terminal) RenderList(entries []session.ListEntry, placeholder string) {
	t.mu.Lock()
	t.entries = append([]session.ListEntry(nil), entries...)
	t.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", t.st.title.Render("Documents"))
	if len(entries) == 0 {
		fmt.Fprintf(&b, "  %s\n", t.st.muted.Render(placeholder))
		t.printf("%s", b.String())
		return
	}
	for i, e := range entries {
		marker := " "
		line := fmt.Sprintf("%2d. %s %s", i+1, e.Glyph, e.Title)
		if e.Selected {
			marker = "▶"
			line = t.st.selected.Render(line)
		}
		fmt.Fprintf(&b, "%s %s  %s\n", marker, line, t.st.muted.Render(e.FileID))
	}
	t.printf("%s", b.String())
}

func (t *Terminal) Highlight(fileID string) {
	t.mu.Lock()
	t.highlighted = fileID
	for i := range t.entries {
		t.entries[i].Selected = t.entries[i].FileID == fileID
	}
	t.mu.Unlock()
}

// Prompt prints a short hint that does not belong to the transcript.
func (t *Terminal) Prompt(text string) {
	t.printf("%s\n", t.st.warn.Render("! "+text))
}

// Entry returns the n-th entry (1-based) of the last rendered list.
func (t *Terminal) Entry(n int) (session.ListEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 || n > len(t.entries) {
		return session.ListEntry{}, false
	}
	return t.entries[n-1], true
}

// Entries returns the last rendered list.
func (t *Terminal) Entries() []session.ListEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]session.ListEntry(nil), t.entries...)
}

func (t *Terminal) Highlighted() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.highlighted
}

func (t *Terminal) InputEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputEnabled
}

func (t *Terminal) UploadVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.uploadVisible
}

func (t *Terminal) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

var _ session.Renderer = (*Terminal)(nil)
