package repl

func anyEntry(HistoryEntry) bool { return true }

func inMode(mode inputMode) func(HistoryEntry) bool {
	return func(e HistoryEntry) bool { return e.Mode == mode }
}

// recall moves through history in direction dir (-1 older, +1 newer) to the
// nearest entry accepted by keep and loads it, switching to the entry's
// mode. It reports false, leaving the input alone, if there is none.
func (m *model) recall(dir int, keep func(HistoryEntry) bool) bool {
	for i := m.cursor + dir; i >= 0 && i < m.history.Len(); i += dir {
		e, err := m.history.Entry(i)
		if err != nil || !keep(e) {
			continue
		}

		if e.Mode != m.mode {
			*m = m.switchMode(e.Mode)
		}

		m.cursor = i
		m.input.SetValue(e.Line)
		m.input.CursorEnd()
		m.refresh(false)

		return true
	}

	return false
}

// leaveHistory clears the input if it holds a recalled entry.
func (m *model) leaveHistory() {
	if m.cursor >= m.history.Len() {
		return
	}

	m.cursor = m.history.Len()
	m.input.SetValue("")
	m.refresh(false)
}

// recallCommand browses command history only, switching to control mode on
// the first step. Running off either end returns to the mode and input the
// browsing started from.
func (m model) recallCommand(dir int) model {
	if !m.detour.active {
		m.detour = detour{active: true, mode: m.mode, saved: m.snapshot()}
		if m.mode != modeCtrl {
			m = m.switchMode(modeCtrl)
		}
	}

	if m.recall(dir, inMode(modeCtrl)) {
		return m
	}

	back := m.detour
	m.detour = detour{}

	if back.mode != m.mode {
		m = m.switchMode(back.mode)
	}

	m.cursor = m.history.Len()
	m.restore(back.saved)
	m.refresh(false)

	return m
}
