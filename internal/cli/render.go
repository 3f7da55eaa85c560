package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/streaklit/internal/analytics"
	"github.com/julianstephens/streaklit/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)

	tierStyles = map[stats.Tier]lipgloss.Style{
		stats.TierExcellent: lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
		stats.TierGood:      lipgloss.NewStyle().Foreground(lipgloss.Color("#84cc16")),
		stats.TierFair:      lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		stats.TierLow:       lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	}

	strengthStyles = map[analytics.Strength]lipgloss.Style{
		analytics.StrengthStrong:      lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
		analytics.StrengthModerate:    lipgloss.NewStyle().Foreground(lipgloss.Color("#84cc16")),
		analytics.StrengthNeutral:     mutedStyle,
		analytics.StrengthWeakInverse: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		analytics.StrengthInverse:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	}

	// heatLevels shades heatmap cells from empty (0) to busiest (4).
	heatLevels = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#0e4429")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#006d32")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#26a641")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#39d353")),
	}
)

// NewTable returns a bordered table with the shared header style.
func NewTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Rate renders a completion percentage in its tier colour.
func Rate(rate int) string {
	return tierStyles[stats.RateTier(rate)].Render(fmt.Sprintf("%d%%", rate))
}

// Strength renders a correlation label in its colour.
func Strength(s analytics.Strength) string {
	return strengthStyles[s].Render(string(s))
}

// Swatch renders a small block in the habit's colour.
func Swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

// HeatCell renders one heatmap day.
func HeatCell(level int) string {
	if level < 0 {
		level = 0
	}
	if level >= len(heatLevels) {
		level = len(heatLevels) - 1
	}
	return heatLevels[level].Render("■")
}

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Check renders a done / not done marker.
func Check(done bool) string {
	if done {
		return tierStyles[stats.TierExcellent].Render("✓")
	}
	return mutedStyle.Render("·")
}

// Bar renders value/max as a fixed-width bar.
func Bar(value, max, width int) string {
	if max <= 0 || width <= 0 {
		return strings.Repeat(" ", width)
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
