package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	count       int
	filterLabel string
	showHidden  bool
	searching   bool
	editing     bool
	refreshing  bool
	message     string
}

func renderStatusBar(s statusInfo, width int) string {
	left := fmt.Sprintf(" %d postings", s.count)
	if s.filterLabel != "All" {
		left += " · " + s.filterLabel
	}
	if s.showHidden {
		left += " · incl. hidden"
	}
	if s.refreshing {
		left += " (scanning...)"
	} else if s.message != "" {
		left += " · " + s.message
	}

	right := " x hide  b bookmark  o open  / search  f filter  ? help "
	switch {
	case s.searching:
		right = " esc cancel  enter search "
	case s.editing:
		right = " esc cancel  enter save note "
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	bar := left + fmt.Sprintf("%*s", gap, "") + right
	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "
	gap := max(width-lipgloss.Width(right), 0)
	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
