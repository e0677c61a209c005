package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/jobradar/internal/classify"
	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/score"
)

func renderPreview(p *job.Posting, width, height, scroll int) string {
	if p == nil {
		return lipglossCenter("Select a posting", width, height)
	}

	contentWidth := max(width-2, 10)

	title := previewTitleStyle.Width(contentWidth).Render(p.Title)

	where := []string{}
	for _, s := range []string{p.Company, p.Location, p.Source} {
		if s != "" {
			where = append(where, s)
		}
	}
	if p.Remote != nil && *p.Remote {
		where = append(where, "remote")
	}
	source := previewSourceStyle.Render(strings.Join(where, " · "))

	sections := []string{title, source, renderFacts(*p), "", renderBreakdown(p.Breakdown, contentWidth)}

	if len(p.GhostReasons) > 0 {
		sections = append(sections, "", renderGhost(p.GhostScore, p.GhostReasons, contentWidth))
	}

	desc := p.Description
	if desc == "" {
		desc = "(No description available)"
	}
	sections = append(sections, "", previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth)))

	if p.Notes != "" {
		sections = append(sections, "", previewLabelStyle.Render("Notes"),
			previewBodyStyle.Width(contentWidth).Render(wrapText(p.Notes, contentWidth)))
	}
	sections = append(sections, previewLinkStyle.Width(contentWidth).Render("Apply: "+p.URL))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func renderFacts(p job.Posting) string {
	facts := []string{
		fmt.Sprintf("score %.0f", p.Score*100),
		string(classify.Classify(p.Title, p.Description)),
	}
	if s := formatSalary(p); s != "" {
		facts = append(facts, s)
	}
	if !p.PostedAt.IsZero() {
		facts = append(facts, "posted "+p.PostedAt.Format("Jan 2, 2006"))
	}
	if p.TimesSeen > 1 {
		facts = append(facts, fmt.Sprintf("seen %d times", p.TimesSeen))
	}
	if p.Bookmarked {
		facts = append(facts, "bookmarked")
	}
	if p.Hidden {
		facts = append(facts, "hidden")
	}
	return previewLabelStyle.Render(strings.Join(facts, " · "))
}

func formatSalary(p job.Posting) string {
	if !p.HasSalary() {
		return ""
	}
	cur := p.SalaryCurrency
	if cur == "" {
		cur = "$"
	} else {
		cur += " "
	}
	k := func(v int64) string { return fmt.Sprintf("%s%dk", cur, v/1000) }
	switch {
	case p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin != *p.SalaryMax:
		return k(*p.SalaryMin) + "–" + fmt.Sprintf("%dk", *p.SalaryMax/1000)
	case p.SalaryMin != nil:
		return k(*p.SalaryMin)
	default:
		return "up to " + k(*p.SalaryMax)
	}
}

func renderBreakdown(b job.Breakdown, width int) string {
	barWidth := max(min(width-14, 20), 5)
	rows := []struct {
		name string
		v    float64
	}{
		{"skills", b.Skills},
		{"salary", b.Salary},
		{"location", b.Location},
		{"company", b.Company},
		{"recency", b.Recency},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		filled := max(min(int(r.v*float64(barWidth)+0.5), barWidth), 0)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		lines[i] = previewLabelStyle.Render(fmt.Sprintf("%-9s", r.name)) + " " + scoreStyle(r.v, 0.7).Render(bar)
	}
	return strings.Join(lines, "\n")
}

func renderGhost(ghostScore float64, reasons []string, width int) string {
	style := ghostWarnStyle
	if score.Level(ghostScore) == score.GhostLikely {
		style = ghostLikelyStyle
	}
	lines := []string{style.Render(fmt.Sprintf("Ghost risk %.0f%%", ghostScore*100))}
	for _, r := range reasons {
		lines = append(lines, previewLabelStyle.Render("  - "+truncateStr(r, width-4)))
	}
	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
