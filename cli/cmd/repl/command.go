package repl

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmplkit/format"
)

// command is a control-mode command.
type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	run     func(m model, args []string) (model, tea.Cmd)
}

var commands []command

func init() {
	commands = []command{
		{name: "help", aliases: []string{"h", "?"}, help: "Show this help", run: model.cmdHelp},
		{name: "list", aliases: []string{"l"}, help: "List top-level data members", run: model.cmdList},
		{name: "target", aliases: []string{"t"}, usage: "[NAME]", help: "Show or select the backend", run: model.cmdTarget},
		{name: "edit", aliases: []string{"e"}, help: "Edit data as YAML in $EDITOR", run: model.cmdEdit},
		{name: "clear", aliases: []string{"c"}, help: "Clear the screen", run: model.cmdClear},
		{name: "quit", aliases: []string{"q", "exit"}, help: "Exit", run: model.cmdQuit},
	}
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}

	return names
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name || slices.Contains(c.aliases, name) {
			return c, true
		}
	}

	return command{}, false
}

// submit runs the input line in the current mode and records it in history.
func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.buffers = [2]buffer{}
	m.input.SetValue("")
	m.refresh(false)

	if err := m.history.Append(line, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.cursor = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(line)
	}

	return m, tea.Sequence(tea.Println(echo(modeEval, line)), m.evaluate(line))
}

func (m model) evaluate(line string) tea.Cmd {
	r, err := m.session.eval(line)
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl eval failed", slog.Any("error", err))

		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval",
		slog.String("target", m.session.target),
		slog.String("source", r.source),
		slog.String("type", typeName(r.value)),
	)

	out := []tea.Cmd{tea.Println(resultStyle.Render(r.source))}

	switch {
	case r.err != nil:
		out = append(out, tea.Println(errorStyle.Render("= error: "+r.err.Error())))
	case m.session.replay:
		out = append(out, tea.Println(valueStyle.Render(fmt.Sprintf("= %v", r.value))))
	}

	return tea.Sequence(out...)
}

func (m model) executeCommand(line string) (model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", fields[0]),
		slog.Any("args", fields[1:]),
	)

	c, ok := lookupCommand(fields[0])
	if !ok {
		return m, tea.Println(errorStyle.Render(
			"unknown command " + strconv.Quote(fields[0]) + " (try help)",
		))
	}

	m, cmd := c.run(m, fields[1:])

	return m, tea.Sequence(tea.Println(echo(modeCtrl, line)), cmd)
}

func (m model) cmdHelp([]string) (model, tea.Cmd) {
	return m, tea.Println(helpView())
}

func (m model) cmdList([]string) (model, tea.Cmd) {
	return m, tea.Println(m.session.list())
}

func (m model) cmdTarget(args []string) (model, tea.Cmd) {
	if len(args) == 0 {
		return m, tea.Println(m.targetsView())
	}

	if err := m.session.setTarget(args[0]); err != nil {
		return m, tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	m.refresh(false)

	return m, tea.Println(resultStyle.Render("✔ target " + m.session.target))
}

func (m model) cmdClear([]string) (model, tea.Cmd) {
	return m, tea.ClearScreen
}

func (m model) cmdQuit([]string) (model, tea.Cmd) {
	return m.quit()
}

// editResult reports the outcome of an edit command.
type editResult struct {
	data     any
	cleared  bool
	declined bool
	err      error
}

func (m model) cmdEdit([]string) (model, tea.Cmd) {
	data := m.session.data
	if data == nil {
		data = map[string]any{}
	}

	c := &editDataCommand{data: data, ctxFunc: m.ctxFunc, logger: m.logger}

	return m, tea.Exec(c, func(err error) tea.Msg {
		return editResult{
			data:     c.edited,
			cleared:  c.cleared,
			declined: errors.Is(err, ErrEditDeclined),
			err:      err,
		}
	})
}

func (m model) finishEdit(r editResult) (model, tea.Cmd) {
	switch {
	case r.declined:
		return m, tea.Println(hintStyle.Render("🗴 edit discarded"))
	case r.err != nil:
		return m, tea.Println(errorStyle.Render("🗴 error: " + r.err.Error()))
	case r.cleared:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))
	}

	m.session.setData(r.data)
	m.refresh(false)

	m.logger.TraceContext(m.ctxFunc(), "repl data edited",
		slog.String("type", typeName(r.data)),
	)

	return m, tea.Println(resultStyle.Render("✔ data updated"))
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", v)
}

func (m model) targetsView() string {
	var b strings.Builder

	for _, name := range format.Names() {
		mark := "  "
		if name == m.session.target {
			mark = "* "
		}

		b.WriteString(mark + name + "\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
