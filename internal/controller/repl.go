package controller

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const replPrompt = "rocq> "

var (
	replTitleStyle  = lipgloss.NewStyle().Bold(true)
	replPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	replErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	replHelpStyle   = lipgloss.NewStyle().Faint(true)
)

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Repl is the interactive host. The session's UI must write into buffer,
// which the repl flushes to its own output after every line; this is what
// lets the transcript live inside the interactive program.
type Repl struct {
	session *Session
	buffer  *bytes.Buffer
	out     io.Writer
}

// NewRepl creates a Repl around a session whose UI writes into buffer.
func NewRepl(session *Session, buffer *bytes.Buffer, out io.Writer) *Repl {
	return &Repl{
		session: session,
		buffer:  buffer,
		out:     out,
	}
}

// Run starts the interactive program, or processes lines from in without a
// terminal UI when interactive is false. Both modes stop at end of input or
// on an exit keyword; command failures are reported and do not stop the
// session.
func (r *Repl) Run(ctx context.Context, in io.Reader, interactive bool) error {
	if !interactive {
		return r.runLines(ctx, in)
	}

	program := tea.NewProgram(newReplModel(ctx, r), tea.WithInput(in), tea.WithOutput(r.out))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func (r *Repl) runLines(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isQuitLine(line) {
			return nil
		}

		fmt.Fprintf(r.out, "%s%s\n", replPrompt, line)
		fmt.Fprint(r.out, r.dispatchLine(ctx, line))
	}

	return scanner.Err()
}

// dispatchLine runs one line and returns everything the session printed for
// it, failures included.
func (r *Repl) dispatchLine(ctx context.Context, line string) string {
	r.buffer.Reset()

	if err := r.session.Run(ctx, line); err != nil {
		r.session.ui.DisplayError(ctx, err)
	}

	return r.buffer.String()
}

func isQuitLine(line string) bool {
	return line == "exit" || line == "quit"
}

// replModel is the Bubble Tea model for the interactive session.
type replModel struct {
	ctx      context.Context
	repl     *Repl
	input    textinput.Model
	lines    []string
	height   int
	quitting bool
}

func newReplModel(ctx context.Context, repl *Repl) replModel {
	input := textinput.New()
	input.Prompt = replPromptStyle.Render(replPrompt)
	input.Placeholder = "define Id := fun (x : Type) => x"
	input.Focus()

	return replModel{
		ctx:   ctx,
		repl:  repl,
		input: input,
	}
}

func (rm replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (rm replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.height = msg.Height

		width := msg.Width - lipgloss.Width(rm.input.Prompt) - 1
		if width > 0 {
			rm.input.Width = width
		}

		return rm, nil

	case tea.KeyMsg:
		return rm.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	rm.input, cmd = rm.input.Update(msg)

	return rm, cmd
}

func (rm replModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // Remaining key types belong to the text input.
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		rm.quitting = true
		return rm, tea.Quit

	case tea.KeyCtrlL:
		rm.lines = nil
		return rm, nil

	case tea.KeyEnter:
		return rm.submit()
	}

	var cmd tea.Cmd
	rm.input, cmd = rm.input.Update(msg)

	return rm, cmd
}

func (rm replModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(rm.input.Value())
	rm.input.Reset()

	if line == "" {
		return rm, nil
	}

	if isQuitLine(line) {
		rm.quitting = true
		return rm, tea.Quit
	}

	rm.lines = append(rm.lines, replPromptStyle.Render(replPrompt)+line)

	out := strings.TrimRight(rm.repl.dispatchLine(rm.ctx, line), "\n")
	if out != "" {
		rm.lines = append(rm.lines, strings.Split(out, "\n")...)
	}

	return rm, nil
}

func (rm replModel) View() string {
	if rm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(replTitleStyle.Render("rocq interpreter"))
	b.WriteString("\n\n")

	for _, line := range rm.visibleLines() {
		if strings.HasPrefix(line, "error:") {
			line = replErrorStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(rm.input.View())
	b.WriteString("\n")
	b.WriteString(replHelpStyle.Render("enter: run | ctrl+l: clear | ctrl+c: quit"))
	b.WriteString("\n")

	return b.String()
}

// visibleLines trims the transcript to what fits above the input line.
func (rm replModel) visibleLines() []string {
	if rm.height == 0 {
		return rm.lines
	}

	// Reserved lines:
	// - Title + blank: 2
	// - Input: 1
	// - Help: 1
	reserved := 4

	available := rm.height - reserved
	if available < 1 {
		available = 1
	}

	if len(rm.lines) <= available {
		return rm.lines
	}

	return rm.lines[len(rm.lines)-available:]
}
