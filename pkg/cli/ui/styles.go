package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Preyash-NEU/InsightIQ/pkg/quality"
)

// Styles defines the lipgloss styles used by the CLI.
var Styles = struct {
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Header     lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Bold:   lipgloss.NewStyle().Bold(true),
	Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("42")).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(0, 1).
		Width(60),
}

// bandColors follow the band classes, red through green.
var bandColors = map[string]lipgloss.Color{
	quality.Critical.Class:  lipgloss.Color("196"),
	quality.Poor.Class:      lipgloss.Color("208"),
	quality.Fair.Class:      lipgloss.Color("220"),
	quality.Good.Class:      lipgloss.Color("148"),
	quality.Excellent.Class: lipgloss.Color("42"),
	quality.Unknown.Class:   lipgloss.Color("245"),
}

var tierColors = map[quality.Tier]lipgloss.Color{
	quality.TierHealthy:      lipgloss.Color("42"),
	quality.TierWarning:      lipgloss.Color("220"),
	quality.TierFailing:      lipgloss.Color("196"),
	quality.TierNotProcessed: lipgloss.Color("245"),
}

// BandLabel renders a band label in its color.
func BandLabel(b quality.Band) string {
	return lipgloss.NewStyle().Foreground(bandColors[b.Class]).Render(b.Label)
}

// QualityBadge renders the indicator symbol with the score, or the
// not-processed label.
func QualityBadge(score *float64) string {
	ind := quality.IndicatorOf(score)
	style := lipgloss.NewStyle().Foreground(tierColors[ind.Tier])
	if ind.Tier == quality.TierNotProcessed {
		return style.Render(ind.Symbol + " " + ind.Label())
	}
	return style.Render(fmt.Sprintf("%s %.1f%%", ind.Symbol, ind.Percent))
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// KeyValues renders aligned "key: value" lines.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, kv := range pairs {
		width = max(width, lipgloss.Width(kv[0]))
	}
	var b strings.Builder
	for _, kv := range pairs {
		key := Styles.Bold.Render(kv[0] + ":")
		pad := strings.Repeat(" ", width-lipgloss.Width(kv[0])+1)
		b.WriteString(key + pad + kv[1] + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// SuccessBox renders title and content in a green box.
func SuccessBox(title, content string) string {
	return Styles.SuccessBox.Render(successColor.Sprint(title) + "\n\n" + content)
}

// ErrorBox renders title and content in a red box.
func ErrorBox(title, content string) string {
	return Styles.ErrorBox.Render(errorColor.Sprint(title) + "\n\n" + content)
}
