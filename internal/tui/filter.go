package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// filterBar selects which sources the list shows. No active source means
// all of them.
type filterBar struct {
	sources      []string
	active       map[string]bool
	filterMode   bool
	filterCursor int
}

func newFilterBar(sources []string) filterBar {
	return filterBar{
		sources: sources,
		active:  make(map[string]bool),
	}
}

func (f *filterBar) toggle(source string) {
	if f.active[source] {
		delete(f.active, source)
		return
	}
	f.active[source] = true
}

// setSources replaces the tab list, dropping selections that vanished.
func (f *filterBar) setSources(sources []string) {
	f.sources = sources
	known := make(map[string]bool, len(sources))
	for _, s := range sources {
		known[s] = true
	}
	for s := range f.active {
		if !known[s] {
			delete(f.active, s)
		}
	}
	f.move(0)
}

func (f *filterBar) move(delta int) {
	f.filterCursor = max(0, min(len(f.sources)-1, f.filterCursor+delta))
}

func (f *filterBar) toggleCurrent() {
	if f.filterCursor < len(f.sources) {
		f.toggle(f.sources[f.filterCursor])
	}
}

// activeSources returns nil when every source is shown.
func (f *filterBar) activeSources() []string {
	if len(f.active) == 0 {
		return nil
	}
	var out []string
	for _, s := range f.sources {
		if f.active[s] {
			out = append(out, s)
		}
	}
	return out
}

func (f *filterBar) activeLabel() string {
	if active := f.activeSources(); active != nil {
		return strings.Join(active, ", ")
	}
	return "All"
}

// render draws the source chips, "All" first; the cursor is bracketed in
// filter mode.
func (f *filterBar) render(width int) string {
	chip := func(label string, on bool) string {
		if on {
			return tabActiveStyle.Render(label)
		}
		return tabInactiveStyle.Render(label)
	}

	chips := []string{chip("All", len(f.active) == 0)}
	for i, s := range f.sources {
		label := s
		if f.filterMode && i == f.filterCursor {
			label = "[" + s + "]"
		}
		chips = append(chips, chip(label, f.active[s]))
	}

	return lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1).
		Render(fitRow(chips, tabSeparatorStyle.Render(" · "), width))
}

// fitRow joins parts with sep, dropping whatever would overflow width. The
// first part is always kept.
func fitRow(parts []string, sep string, width int) string {
	var b strings.Builder
	for i, part := range parts {
		add := part
		if i > 0 {
			add = sep + part
		}
		if i > 0 && lipgloss.Width(b.String())+lipgloss.Width(add) > width {
			break
		}
		b.WriteString(add)
	}
	return b.String()
}
