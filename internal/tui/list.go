package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/score"
)

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 14*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d < 10*7*24*time.Hour:
		// postings age in weeks; ghost staleness starts around 4w
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	default:
		return t.Format("Jan 2")
	}
}

// scoreBadge renders a score as a percentage.
func scoreBadge(s, high float64) string {
	return scoreStyle(s, high).Render(fmt.Sprintf("%3.0f", s*100))
}

func ghostBadge(ghostScore float64) string {
	switch score.Level(ghostScore) {
	case score.GhostLikely:
		return ghostLikelyStyle.Render(" ghost")
	case score.GhostWarning:
		return ghostWarnStyle.Render(" ghost?")
	default:
		return ""
	}
}

func renderListItem(p job.Posting, selected bool, width int, high float64) string {
	if width < 10 {
		width = 30
	}

	mark := "  "
	if selected {
		mark = "> "
	}
	titleWidth := width - 8
	text := mark + truncateStr(p.Title, titleWidth)

	var title string
	switch {
	case p.Hidden:
		title = itemHiddenStyle.Render(text)
	case selected:
		title = itemSelectedStyle.Render(text)
	default:
		title = itemTitleStyle.Render(text)
	}
	title = scoreBadge(p.Score, high) + " " + title
	if p.Bookmarked {
		title += bookmarkStyle.Render(" *")
	}

	company := p.Company
	if company == "" {
		company = p.Source
	}
	meta := "      " + itemSourceStyle.Render(truncateStr(company, width/2)) +
		" " + itemTimeStyle.Render("· "+relativeTime(p.LastSeen)) +
		ghostBadge(p.GhostScore)

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// visibleRange keeps the cursor on screen for items of itemHeight lines.
func visibleRange(n, cursor, height, itemHeight int) (start, end int) {
	visible := max(height/itemHeight, 1)
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end = start + visible
	if end > n {
		end = n
		start = max(end-visible, 0)
	}
	return start, end
}

func renderList(postings []job.Posting, cursor, height, width int, high float64) string {
	if len(postings) == 0 {
		return lipglossCenter("No postings found", width, height)
	}

	// two lines per item plus a blank separator
	start, end := visibleRange(len(postings), cursor, height, 3)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(postings[i], i == cursor, width, high))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", max((width-len(s))/2, 0)) + s
}
