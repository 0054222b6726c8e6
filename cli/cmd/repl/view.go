package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

var (
	promptStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	valueStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle          = lipgloss.NewStyle().Bold(true)
	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle         = suggestionStyle.Bold(true)
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

func prompt(mode inputMode) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

// echo renders a submitted line the way it was typed.
func echo(mode inputMode, line string) string {
	return prompt(mode) + inputStyle.Render(line)
}

var keyHelp = [][2]string{
	{"Esc", "toggle expression and command mode"},
	{"Tab / Shift+Tab", "cycle completion candidates"},
	{"Space / Enter", "accept the selected candidate"},
	{"Up / Down", "history, switching mode as needed"},
	{"Shift+Up / Shift+Down", "history of the current mode"},
	{"Alt+Up / Alt+Down", "command history, then back to where you were"},
	{"Ctrl+C / Ctrl+D", "clear the line, or exit on an empty line"},
}

func helpView() string {
	var b strings.Builder

	b.WriteString(boldStyle.Render("Commands") + " (Esc for command mode)\n")

	for _, c := range commands {
		name := c.name
		if c.usage != "" {
			name += " " + c.usage
		}

		fmt.Fprintf(&b, "  %-14s %s\n", name, hintStyle.Render(c.help))
	}

	b.WriteString("\n" + boldStyle.Render("Keys") + "\n")

	for _, k := range keyHelp {
		fmt.Fprintf(&b, "  %-22s %s\n", k[0], hintStyle.Render(k[1]))
	}

	b.WriteString("\nExpressions are compiled for the current target. With data loaded\n")
	b.WriteString("they are also evaluated, and member names complete as you type.")

	return b.String()
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.statusLine() + "\n"
}

// statusLine is the line under the input: the history position, a usage
// hint, a call signature or the completion candidates.
func (m model) statusLine() string {
	line := m.input.Value()

	if m.cursor < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			boldStyle.Render(strconv.Itoa(m.cursor+1)), m.history.Len()))
	}

	if strings.TrimSpace(line) == "" {
		if m.mode == modeCtrl {
			return hintStyle.Render(strings.Join(commandNames(), ", ") + " (Esc to return)")
		}

		return hintStyle.Render("expression for " + m.session.target + " (Esc for commands)")
	}

	if m.mode == modeEval {
		if call := detectFunctionCall(line, m.input.Position()); call.inCall {
			if sig, params := getSignature(m.session.data, call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.comp, m.selected(), m.width)
}
