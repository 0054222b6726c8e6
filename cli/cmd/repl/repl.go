package repl

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmplkit/log"
)

// inputMode selects how a submitted line is interpreted.
type inputMode int

const (
	modeEval inputMode = iota // expressions
	modeCtrl                  // control commands
)

func (m inputMode) other() inputMode {
	if m == modeEval {
		return modeCtrl
	}

	return modeEval
}

// buffer is an input line and its cursor position.
type buffer struct {
	text   string
	cursor int
}

// cycle is the state of Tab cycling through completion candidates.
type cycle struct {
	active bool
	idx    int
	saved  buffer // input before cycling began
}

// detour is the state saved while Alt+Up/Down browses command history from
// another mode.
type detour struct {
	active bool
	mode   inputMode
	saved  buffer
}

// model is the Bubble Tea model of the REPL.
type model struct {
	ctxFunc  func() context.Context
	session  session
	logger   log.Logger
	history  *History
	input    textinput.Model
	comp     completion
	cycle    cycle
	detour   detour
	buffers  [2]buffer // saved input of each mode
	cursor   int       // history position; history.Len() on a fresh line
	width    int
	mode     inputMode
	quitting bool
}

// Run starts the REPL and blocks until the user exits. History is kept in
// cacheDir if it is not empty.
func Run(ctx context.Context, in Input, cacheDir string, logger log.Logger) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func() { cancel(err) }()

	sess, err := newSession(in, logger)
	if err != nil {
		return err
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("target", in.Target),
		slog.Bool("replay", in.Replay),
		slog.String("history", path),
		slog.Int("history_len", history.Len()),
	)

	_, err = tea.NewProgram(newModel(ctx, sess, history, logger), tea.WithContext(ctx)).Run()

	return err
}

const (
	defaultWidth = 80
	maxInput     = 1024
)

func newModel(ctx context.Context, sess session, history *History, logger log.Logger) model {
	ti := textinput.New()
	ti.Prompt = prompt(modeEval)
	ti.CharLimit = maxInput
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctxFunc: func() context.Context { return ctx },
		session: sess,
		logger:  logger,
		history: history,
		input:   ti,
		cursor:  history.Len(),
		width:   defaultWidth,
		mode:    modeEval,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(m.input.Prompt)-1, 1)

		return m, nil

	case editResult:
		return m.finishEdit(msg)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl key", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			return m.quit()
		}

		m.input.SetValue("")
		m.cycle, m.detour = cycle{}, detour{}
		m.cursor = m.history.Len()
		m.refresh(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			return m.quit()
		}

		return m, nil

	case tea.KeyEnter:
		m.detour = detour{}

		if m.cycle.active && len(m.comp.matches) > 0 {
			// keep the cycled-to candidate without submitting
			m.cycle = cycle{}
			m.refresh(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.step(1), nil

	case tea.KeyShiftTab:
		return m.step(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.recallCommand(-1), nil
		}

		m.recall(-1, anyEntry)

		return m, nil

	case tea.KeyDown:
		if msg.Alt {
			return m.recallCommand(1), nil
		}

		if !m.recall(1, anyEntry) {
			m.leaveHistory()
		}

		return m, nil

	case tea.KeyShiftUp:
		m.recall(-1, inMode(m.mode))

		return m, nil

	case tea.KeyShiftDown:
		if !m.recall(1, inMode(m.mode)) {
			m.leaveHistory()
		}

		return m, nil

	case tea.KeyEsc:
		if m.cycle.active {
			m.restore(m.cycle.saved)
			m.cycle = cycle{}
			m.refresh(false)

			return m, nil
		}

		m.detour = detour{}

		return m.switchMode(m.mode.other()), nil
	}

	// Typing a rune may complete a word; editing and cursor keys never do.
	typed := msg.Type == tea.KeyRunes
	if !typed || msg.String() == " " {
		m.cycle = cycle{}
	}

	if !typed {
		m.detour = detour{}
	}

	var cmd tea.Cmd

	m.cursor = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(typed)

	return m, cmd
}

func (m model) quit() (model, tea.Cmd) {
	m.quitting = true

	return m, tea.Quit
}

func (m model) snapshot() buffer {
	return buffer{text: m.input.Value(), cursor: m.input.Position()}
}

func (m *model) restore(b buffer) {
	m.input.SetValue(b.text)
	m.input.SetCursor(b.cursor)
}

// switchMode stashes the input of the current mode and restores the input
// last stashed for mode.
func (m model) switchMode(mode inputMode) model {
	m.buffers[m.mode] = m.snapshot()
	m.mode = mode
	m.input.Prompt = prompt(mode)
	m.restore(m.buffers[mode])
	m.refresh(false)

	return m
}

// step moves the Tab selection by delta, wrapping around the candidates. A
// lone candidate is accepted immediately.
func (m model) step(delta int) model {
	n := len(m.comp.matches)

	switch n {
	case 0:
		return m

	case 1:
		m.replaceWord(m.comp.matches[0].Str)
		m.cycle = cycle{}
		m.comp.matches = nil

		return m
	}

	if !m.cycle.active {
		m.cycle = cycle{active: true, saved: m.snapshot()}
		if delta > 0 {
			m.cycle.idx = -1
		}
	}

	m.cycle.idx = ((m.cycle.idx+delta)%n + n) % n
	m.replaceWord(m.comp.matches[m.cycle.idx].Str)

	return m
}

// selected returns the index of the highlighted candidate, or -1.
func (m model) selected() int {
	if !m.cycle.active {
		return -1
	}

	return m.cycle.idx
}

// replaceWord substitutes s for the word being completed and moves the
// cursor past it.
func (m *model) replaceWord(s string) {
	line := m.input.Value()
	end := m.comp.wordStart + len(s)

	m.input.SetValue(line[:m.comp.wordStart] + s + line[m.comp.wordEnd:])
	m.input.SetCursor(end)

	m.comp.wordEnd = end
}

// refresh recomputes completion candidates. With accept set, a word that
// already equals its only candidate is accepted so the bar clears.
func (m *model) refresh(accept bool) {
	m.comp = m.complete()

	if !accept || len(m.comp.matches) != 1 {
		return
	}

	only := m.comp.matches[0].Str
	if m.input.Value()[m.comp.wordStart:m.comp.wordEnd] == only {
		m.replaceWord(only)
		m.cycle = cycle{}
		m.comp.matches = nil
	}
}
