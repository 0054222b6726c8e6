package repl

import (
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tmplkit/format"
	"github.com/ardnew/tmplkit/trace"
)

// isWordBoundary reports whether r delimits a completion word: whitespace,
// the member-access dot, and expr-lang operator and punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '\'':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries within
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word that
// starts at wordStart. For "x + server.http.ho" and the word "ho" it is
// "server.http". Top-level words have no parent.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// resolve walks the dotted path through data.
func resolve(data any, path string) (any, bool) {
	if path == "" {
		return data, true
	}

	v := data
	for seg := range strings.SplitSeq(path, ".") {
		var err error
		if v, err = trace.Lookup(v, seg); err != nil {
			return nil, false
		}
	}

	return v, true
}

// members returns the property names of v and which of them are callable.
// Maps with string keys contribute their keys; structs their exported fields.
// Any value contributes its exported methods.
func members(v any) (names []string, callable map[string]bool) {
	callable = make(map[string]bool)

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, callable
	}

	for i := range rv.NumMethod() {
		name := rv.Type().Method(i).Name
		names = append(names, name)
		callable[name] = true
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return names, callable
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}

		iter := rv.MapRange()
		for iter.Next() {
			name := iter.Key().String()
			names = append(names, name)

			if e := iter.Value(); e.Kind() == reflect.Interface {
				callable[name] = !e.IsNil() && e.Elem().Kind() == reflect.Func
			} else {
				callable[name] = e.Kind() == reflect.Func
			}
		}

	case reflect.Struct:
		for _, f := range reflect.VisibleFields(rv.Type()) {
			if f.IsExported() && !f.Anonymous {
				names = append(names, f.Name)
				callable[f.Name] = f.Type.Kind() == reflect.Func
			}
		}
	}

	slices.Sort(names)

	return slices.Compact(names), callable
}

// completion is the completion state for the word at the cursor.
type completion struct {
	matches   fuzzy.Matches // ranked best-first
	callable  map[string]bool
	wordStart int
	wordEnd   int
}

// complete computes the completion for the word at the cursor. In eval mode
// candidates are the members of the data value the word is accessed on. An
// empty top-level word yields no matches so the hint stays visible; an empty
// word after a dot lists every member.
func (m model) complete() completion {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())
	c := completion{wordStart: start, wordEnd: end}

	var (
		candidates []string
		browse     bool
	)

	switch m.mode {
	case modeCtrl:
		if word == "" {
			return c
		}

		candidates = commandNames()
		if fields := strings.Fields(input[:start]); len(fields) == 1 && fields[0] == "target" {
			candidates = format.Names()
		}

	default:
		if !m.session.replay {
			return c
		}

		parent := parentPath(input, start)

		v, ok := resolve(m.session.data, parent)
		if !ok {
			return c
		}

		candidates, c.callable = members(v)
		browse = word == "" && parent != ""
	}

	switch {
	case browse:
		c.matches = make(fuzzy.Matches, len(candidates))
		for i, s := range candidates {
			c.matches[i] = fuzzy.Match{Str: s, Index: i}
		}

	case word != "" && len(candidates) > 0:
		c.matches = fuzzy.Find(word, candidates)
	}

	return c
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The candidate at index sel is highlighted; sel is negative
// when nothing is selected.
func renderCandidateBar(c completion, sel, width int) string {
	if len(c.matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range c.matches {
		rendered := renderCandidate(match, i == sel, c.callable[match.Str])

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted. Callable members get a "()" suffix.
func renderCandidate(match fuzzy.Match, selected, callable bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if callable {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
