// Package repl implements the interactive numl shell: a bubbletea program
// that evaluates one line at a time against a persistent Runtime, with
// history navigation and fuzzy identifier completion.
package repl

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/numl-lang/numl/pkg/ast"
	"github.com/numl-lang/numl/pkg/diagnostics"
	"github.com/numl-lang/numl/pkg/evaluator"
	"github.com/numl-lang/numl/pkg/runtime"
	"github.com/numl-lang/numl/pkg/stdlib"
)

const prompt = "numl› "

var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

func helpMessage() string {
	return `
Commands:
  :help    print this message
  :vars    list every user-declared binding (built-ins are omitted)
  :clear   reset the environment (drops all let/const/fn/proc)
  :quit    exit the REPL

Type a numl statement or expression and press Enter to evaluate it.
Press Tab to complete an identifier; Up/Down to browse history.
`
}

type model struct {
	ctx       context.Context
	rt        *runtime.Runtime
	input     textinput.Model
	history   []string
	historyAt int
	matches   fuzzy.Matches
	wordStart int
	quitting  bool
}

// Run starts the REPL against a freshly seeded Runtime, blocking until
// the user quits. opts configures that Runtime the same way the CLI's
// `run` command configures its own (step budget, deadline, extra
// config-supplied constants).
func Run(ctx context.Context, opts ...runtime.Option) error {
	rt := runtime.New(opts...)
	m := newModel(ctx, rt)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, rt *runtime.Runtime) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 80
	return model{ctx: ctx, rt: rt, input: ti}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if ws, ok := msg.(tea.WindowSizeMsg); ok {
			m.input.Width = ws.Width - len(prompt) - 2
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEnter:
		return m.execute()

	case tea.KeyTab:
		return m.complete()

	case tea.KeyUp:
		return m.historyPrev()

	case tea.KeyDown:
		return m.historyNext()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches()
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	if len(m.matches) > 0 {
		names := make([]string, 0, len(m.matches))
		for _, match := range m.matches {
			names = append(names, match.Str)
		}
		b.WriteString(suggestionStyle.Render(strings.Join(names, "  ")))
	}
	b.WriteByte('\n')
	return b.String()
}

func (m model) execute() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.matches = nil
	if line == "" {
		return m, nil
	}
	m.history = append(m.history, line)
	m.historyAt = len(m.history)

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	if strings.HasPrefix(line, ":") {
		return m, tea.Sequence(echo, m.executeCommand(line))
	}

	result, diags, err := m.rt.Interpret(m.ctx, line, "<repl>")
	if len(diags) > 0 {
		parts := make([]string, len(diags))
		for i, d := range diags {
			parts[i] = renderDiagnostic(d)
		}
		return m, tea.Sequence(echo, tea.Println(strings.Join(parts, "\n")))
	}
	if err != nil {
		if d, ok := err.(diagnostics.Diagnostic); ok {
			return m, tea.Sequence(echo, tea.Println(renderDiagnostic(d)))
		}
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}
	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(fmt.Sprintf("%g", result.Value))))
}

// renderDiagnostic shows a diagnostic the way spec.md's "user-visible
// behavior" requirement calls for: the offending span underlined
// beneath the input line, followed by the kind/message/hint text
// diagnostics.Format already renders for the CLI.
func renderDiagnostic(d diagnostics.Diagnostic) string {
	body := errorStyle.Render(diagnostics.Format(d, true))
	underline := spanUnderline(d.Span)
	if underline == "" {
		return body
	}
	return errorStyle.Render(underline) + "\n" + body
}

// spanUnderline builds a caret-underline for span, offset to align
// beneath the input text on the line the REPL just echoed (which is
// itself preceded by the rendered prompt).
func spanUnderline(span *ast.Span) string {
	if span == nil || span.StartLine > 1 {
		return ""
	}
	promptWidth := utf8.RuneCountInString(prompt)
	start := promptWidth + (span.StartCol - 1)
	width := span.EndCol - span.StartCol
	if width < 1 {
		width = 1
	}
	if start < 0 {
		start = 0
	}
	return strings.Repeat(" ", start) + strings.Repeat("^", width)
}

func (m model) executeCommand(line string) tea.Cmd {
	switch strings.TrimSpace(line) {
	case ":help":
		return tea.Println(hintStyle.Render(helpMessage()))
	case ":vars":
		return tea.Println(hintStyle.Render(formatVars(m.rt.ListVariables())))
	case ":clear":
		m.rt.ClearEnvironment()
		return tea.Println(hintStyle.Render("environment cleared"))
	case ":quit":
		return tea.Quit
	default:
		return tea.Println(errorStyle.Render("unknown command: " + line))
	}
}

func formatVars(vars []evaluator.ListedVar) string {
	if len(vars) == 0 {
		return "(no bindings)"
	}
	lines := make([]string, len(vars))
	for i, v := range vars {
		switch v.Kind {
		case "var", "const":
			lines[i] = fmt.Sprintf("%s %s = %g", v.Kind, v.Name, v.Value)
		default:
			lines[i] = fmt.Sprintf("%s %s/%d", v.Kind, v.Name, v.Arity)
		}
	}
	return strings.Join(lines, "\n")
}

func (m model) complete() (tea.Model, tea.Cmd) {
	m.refreshMatches()
	if len(m.matches) != 1 {
		return m, nil
	}
	value := m.input.Value()
	replacement := m.matches[0].Str
	newValue := value[:m.wordStart] + replacement
	m.input.SetValue(newValue)
	m.input.SetCursor(len(newValue))
	m.matches = nil
	return m, nil
}

func (m *model) refreshMatches() {
	value := m.input.Value()
	cursor := m.input.Position()
	start := cursor
	for start > 0 && isIdentByte(value[start-1]) {
		start--
	}
	m.wordStart = start
	word := value[start:cursor]
	if word == "" {
		m.matches = nil
		return
	}
	m.matches = fuzzy.Find(word, m.candidates())
}

func (m model) candidates() []string {
	var names []string
	for name := range stdlib.Constants() {
		names = append(names, name)
	}
	for _, v := range m.rt.ListVariables() {
		names = append(names, v.Name)
	}
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)
	for name := range reg.All() {
		names = append(names, name)
	}
	return names
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (m model) historyPrev() (tea.Model, tea.Cmd) {
	if m.historyAt > 0 {
		m.historyAt--
		m.input.SetValue(m.history[m.historyAt])
		m.input.SetCursor(len(m.input.Value()))
	}
	return m, nil
}

func (m model) historyNext() (tea.Model, tea.Cmd) {
	if m.historyAt < len(m.history)-1 {
		m.historyAt++
		m.input.SetValue(m.history[m.historyAt])
		m.input.SetCursor(len(m.input.Value()))
	} else {
		m.historyAt = len(m.history)
		m.input.SetValue("")
	}
	return m, nil
}
