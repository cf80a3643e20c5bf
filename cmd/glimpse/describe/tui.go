package describecmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/glimpse/pkg/render"
)

var (
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const analyzingLabel = "Analizando la imagen..."

type (
	updateMsg string
	finishMsg string
	failMsg   string
)

// model shows a spinner and the growing description until the analysis ends.
type model struct {
	spinner  spinner.Model
	markdown *glamour.TermRenderer
	cancel   func()

	// width wraps the streaming text; zero leaves it unwrapped.
	width int

	text   string
	final  string
	failed string
	done   bool
}

func newModel(cancel func(), md *glamour.TermRenderer, width int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return model{spinner: s, markdown: md, cancel: cancel, width: width}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// The analysis reports the cancellation through failMsg.
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case updateMsg:
		m.text = string(msg)
		return m, nil

	case finishMsg:
		m.text = string(msg)
		m.final = m.renderMarkdown(string(msg))
		m.done = true
		return m, tea.Quit

	case failMsg:
		m.text = strings.TrimSuffix(m.text, render.TypingMarker)
		m.failed = string(msg)
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.done {
		if m.failed != "" {
			var b strings.Builder
			if m.text != "" {
				b.WriteString(m.wrap(m.text))
				b.WriteString("\n\n")
			}
			b.WriteString(errorStyle.Render(m.failed))
			b.WriteString("\n")
			return b.String()
		}
		return m.final
	}

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(analyzingLabel)
	b.WriteString(" ")
	b.WriteString(hintStyle.Render("(ctrl+c para cancelar)"))
	b.WriteString("\n\n")
	b.WriteString(m.wrap(m.text))
	b.WriteString("\n")
	return b.String()
}

func (m model) wrap(text string) string {
	if m.width <= 0 {
		return text
	}
	return ansi.Wrap(text, m.width, "")
}

func (m model) renderMarkdown(text string) string {
	if m.markdown == nil {
		return text + "\n"
	}
	out, err := m.markdown.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

// newMarkdownRenderer is created before the program starts, since the auto
// style queries the terminal. It returns nil when glamour cannot be set up.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// sender is the part of *tea.Program a teaSurface needs.
type sender interface {
	Send(msg tea.Msg)
}

// teaSurface forwards renderer publications to the terminal program.
type teaSurface struct {
	program sender
}

func (s *teaSurface) Update(display string) error {
	s.program.Send(updateMsg(display))
	return nil
}

func (s *teaSurface) Finish(text string) error {
	s.program.Send(finishMsg(text))
	return nil
}

func (s *teaSurface) Fail(message string) error {
	s.program.Send(failMsg(message))
	return nil
}

// plainSurface writes only the new suffix of each update, so piped output
// is the bare description.
type plainSurface struct {
	out     io.Writer
	errOut  io.Writer
	written int
}

func newPlainSurface(out, errOut io.Writer) *plainSurface {
	return &plainSurface{out: out, errOut: errOut}
}

func (s *plainSurface) Update(display string) error {
	return s.flush(strings.TrimSuffix(display, render.TypingMarker))
}

func (s *plainSurface) Finish(text string) error {
	if err := s.flush(text); err != nil {
		return err
	}
	_, err := io.WriteString(s.out, "\n")
	return err
}

func (s *plainSurface) Fail(message string) error {
	if s.written > 0 {
		if _, err := io.WriteString(s.out, "\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(s.errOut, errorStyle.Render(message))
	return err
}

func (s *plainSurface) flush(text string) error {
	if len(text) <= s.written {
		return nil
	}
	n, err := io.WriteString(s.out, text[s.written:])
	s.written += n
	return err
}
