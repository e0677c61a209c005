package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/jobradar/internal/digest"
)

var asciiLogo = []string{
	`     ██╗ ██████╗ ██████╗ ██████╗  █████╗ ██████╗  █████╗ ██████╗ `,
	`     ██║██╔═══██╗██╔══██╗██╔══██╗██╔══██╗██╔══██╗██╔══██╗██╔══██╗`,
	`     ██║██║   ██║██████╔╝██████╔╝███████║██║  ██║███████║██████╔╝`,
	`██   ██║██║   ██║██╔══██╗██╔══██╗██╔══██║██║  ██║██╔══██║██╔══██╗`,
	`╚█████╔╝╚██████╔╝██████╔╝██║  ██║██║  ██║██████╔╝██║  ██║██║  ██║`,
	` ╚════╝  ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝`,
}

func renderHomeScreen(d *digest.Digest, width, height int, high float64, updateVersion string) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)

	var lines []string
	for _, l := range asciiLogo {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, "")

	if d != nil {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%s · %s", d.Greeting, d.DateLabel)), "")
		lines = append(lines, homeMetaStyle.Render(fmt.Sprintf("%d seen recently · %d new · %d likely ghosts", d.Scanned, d.New, d.Ghosts)))
		if d.ActiveSources != "" {
			lines = append(lines, homeMetaStyle.Render("Most active: "+d.ActiveSources))
		}
		if len(d.Trending) > 0 {
			lines = append(lines, homeMetaStyle.Render("Trending: "+strings.Join(d.Trending, ", ")))
		}
		if len(d.Top) > 0 {
			lines = append(lines, "", labelStyle.Render("Top matches"))
			for i, p := range d.Top {
				lines = append(lines, fmt.Sprintf("  %s %s  %s %s",
					keyStyle.Render(fmt.Sprintf("[%d]", i+1)),
					scoreBadge(p.Score, high),
					itemTitleStyle.Render(truncateStr(p.Title, 50)),
					itemSourceStyle.Render(truncateStr(p.Company, 24))))
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, "          "+keyStyle.Render("[e]")+"  "+labelStyle.Render("Browse postings"))
	lines = append(lines, "          "+keyStyle.Render("[r]")+"  "+labelStyle.Render("Scan sources now"))
	lines = append(lines, "          "+keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	if updateVersion != "" {
		lines = append(lines, "", "          "+logoStyle.Render("Update available: v"+updateVersion))
	}

	content := strings.Join(lines, "\n")
	contentHeight := strings.Count(content, "\n") + 1
	topPad := max((height-contentHeight)/3, 0)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
