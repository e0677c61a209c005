package tui

import "github.com/charmbracelet/lipgloss"

// radar palette: phosphor green on slate, amber and red reserved for ghost
// warnings so they never blend into score colors.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#0B7A55", Dark: "#3DDC97"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#46505A", Dark: "#A3ADB8"}
	colorText    = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E5E9F0"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#8A939C", Dark: "#5C6670"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#38BDF8"}
	colorEdge    = lipgloss.AdaptiveColor{Light: "#D4D9DE", Dark: "#2E3640"}
	colorChip    = lipgloss.AdaptiveColor{Light: "#E6EBEF", Dark: "#1F2933"}
	colorSurface = lipgloss.AdaptiveColor{Light: "#F3F5F7", Dark: "#151B22"}
	colorBar     = lipgloss.AdaptiveColor{Light: "#E2E7EB", Dark: "#0F2A24"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	colorYellow  = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"}
	colorRed     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).PaddingLeft(1)
	headerDateStyle = lipgloss.NewStyle().Foreground(colorDim).Align(lipgloss.Right)

	itemTitleStyle    = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	itemSelectedStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	itemHiddenStyle   = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
	itemSourceStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	itemTimeStyle     = lipgloss.NewStyle().Foreground(colorDim)

	scoreHighStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	scoreMidStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	scoreLowStyle  = lipgloss.NewStyle().Foreground(colorDim)

	ghostWarnStyle   = lipgloss.NewStyle().Foreground(colorYellow)
	ghostLikelyStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	bookmarkStyle    = lipgloss.NewStyle().Foreground(colorAccent)

	previewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1)
	previewSourceStyle = lipgloss.NewStyle().Foreground(colorAccent).MarginBottom(1)
	previewBodyStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	previewLabelStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewLinkStyle   = lipgloss.NewStyle().Foreground(colorAccent).Underline(true).MarginTop(1)

	tabActiveStyle    = lipgloss.NewStyle().Foreground(colorSurface).Background(colorPrimary).Padding(0, 1).Bold(true)
	tabInactiveStyle  = lipgloss.NewStyle().Foreground(colorMuted).Background(colorChip).Padding(0, 1)
	tabSeparatorStyle = lipgloss.NewStyle().Foreground(colorDim).Background(colorSurface)

	statusBarStyle    = lipgloss.NewStyle().Background(colorBar).Foreground(colorMuted).Padding(0, 1)
	spinnerStyle      = lipgloss.NewStyle().Foreground(colorPrimary)
	searchPromptStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	helpCardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(1, 3)
	helpDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	homeMetaStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func paneStyle(active bool) lipgloss.Style {
	edge := colorEdge
	if active {
		edge = colorPrimary
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(edge)
}

// scoreStyle colors a composite score by band.
func scoreStyle(s, high float64) lipgloss.Style {
	switch {
	case s >= high:
		return scoreHighStyle
	case s >= high/2:
		return scoreMidStyle
	default:
		return scoreLowStyle
	}
}
