package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/jobradar/internal/cycle"
	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/score"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"})
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"})
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F5F"})
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}).
			Padding(0, 1)
)

func renderSummary(res *cycle.Result) string {
	var lines []string
	lines = append(lines, titleStyle.Render("Cycle "+res.ID.String()[:8])+
		dimStyle.Render("  "+res.StartedAt.Format(time.DateTime)))
	lines = append(lines, "")

	counts := []struct {
		label string
		n     int
	}{
		{"found", res.Found},
		{"new", res.New},
		{"updated", res.Updated},
		{"high matches", res.HighMatches},
		{"alerts sent", res.AlertsSent},
		{"invalid", res.Invalid},
		{"likely ghosts", res.Ghosts},
	}
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("%-14s %s", dimStyle.Render(c.label), goodStyle.Render(fmt.Sprint(c.n))))
	}

	if len(res.PerSource) > 0 {
		names := make([]string, 0, len(res.PerSource))
		for name := range res.PerSource {
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, "", dimStyle.Render("per source"))
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("  %-20s %d", name, res.PerSource[name]))
		}
	}

	if len(res.Alerts) > 0 {
		lines = append(lines, "", dimStyle.Render("new matches"))
		for _, p := range res.Alerts {
			lines = append(lines, "  "+postingLine(p))
		}
	}

	if len(res.Errors) > 0 {
		lines = append(lines, "", warnStyle.Render(fmt.Sprintf("%d error(s)", len(res.Errors))))
		for _, e := range res.Errors {
			lines = append(lines, warnStyle.Render("  "+e.Error()))
		}
	}

	t := res.Timings
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("scrape %s · score %s · persist %s",
		t.Scrape.Round(time.Millisecond), t.Score.Round(time.Millisecond), t.Persist.Round(time.Millisecond))))

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// postingLine is the one-line form used by list, dupes and scan.
func postingLine(p job.Posting) string {
	short := p.Hash
	if len(short) > 8 {
		short = short[:8]
	}
	line := fmt.Sprintf("%s %3.0f  %s", dimStyle.Render(short), p.Score*100, p.Title)
	if p.Company != "" {
		line += dimStyle.Render(" @ " + p.Company)
	}
	line += dimStyle.Render(" [" + p.Source + "]")
	switch score.Level(p.GhostScore) {
	case score.GhostLikely:
		line += warnStyle.Render(" ghost")
	case score.GhostWarning:
		line += warnStyle.Render(" ghost?")
	}
	if p.Bookmarked {
		line += goodStyle.Render(" *")
	}
	return line
}
