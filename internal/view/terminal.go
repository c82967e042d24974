// Package view renders readings and search output for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/aqipro/aqipro/internal/aqi"
)

const barWidth = 20

// Terminal renders to an io.Writer using lipgloss styles. It also
// implements the search view interface for interactive suggestion
// display.
type Terminal struct {
	out io.Writer

	titleStyle    lipgloss.Style
	labelStyle    lipgloss.Style
	faintStyle    lipgloss.Style
	categoryStyle lipgloss.Style
	cardStyle     lipgloss.Style
}

// NewTerminal creates a renderer writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:           out,
		titleStyle:    lipgloss.NewStyle().Bold(true),
		labelStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		faintStyle:    lipgloss.NewStyle().Faint(true),
		categoryStyle: lipgloss.NewStyle().Bold(true),
		cardStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2),
	}
}

// RenderReading prints a full dashboard card for one reading.
func (t *Terminal) RenderReading(vm aqi.ViewModel) {
	var b strings.Builder

	b.WriteString(t.titleStyle.Render(vm.CityName))
	b.WriteString("\n")
	b.WriteString(t.labelStyle.Render(fmt.Sprintf("%s: %s", vm.StationLabel, vm.StationName)))
	b.WriteString("\n\n")

	if vm.Unavailable {
		b.WriteString(t.faintStyle.Render("AQI unavailable for this station"))
		fmt.Fprintln(t.out, t.cardStyle.Render(b.String()))
		return
	}

	aqiStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(vm.Color))
	b.WriteString(aqiStyle.Render(fmt.Sprintf("AQI %d", vm.AQI)))
	b.WriteString("  ")
	b.WriteString(t.categoryStyle.Foreground(lipgloss.Color(vm.Color)).Render(vm.Category.Text))
	b.WriteString("\n")
	b.WriteString(t.faintStyle.Render(vm.Category.Advice))
	b.WriteString("\n")

	if rows := presentRows(vm.Pollutants); len(rows) > 0 {
		b.WriteString("\n")
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("%-5s %s %5.1f\n",
				strings.ToUpper(string(row.Pollutant)),
				renderBar(row.Progress),
				row.Value))
		}
	}

	if len(vm.Trend) > 0 {
		b.WriteString("\n")
		b.WriteString(t.labelStyle.Render("PM2.5 forecast"))
		b.WriteString("\n")
		for _, day := range vm.Trend {
			b.WriteString(fmt.Sprintf("%s  avg %3.0f  min %3.0f  max %3.0f\n",
				day.Day, day.Avg, day.Min, day.Max))
		}
	}

	if !vm.UpdatedAt.IsZero() {
		b.WriteString("\n")
		b.WriteString(t.faintStyle.Render("updated " + vm.UpdatedAt.Format(time.RFC1123)))
	}

	fmt.Fprintln(t.out, t.cardStyle.Render(strings.TrimRight(b.String(), "\n")))
}

// RenderStations prints nearby stations as a compact list.
func (t *Terminal) RenderStations(stations []aqi.MapStation) {
	if len(stations) == 0 {
		fmt.Fprintln(t.out, t.faintStyle.Render("no stations in this area"))
		return
	}

	for _, s := range stations {
		value := "-"
		if s.AQI != aqi.AQIUnavailable {
			value = fmt.Sprintf("%d", s.AQI)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(aqi.ColorFor(s.AQI)))
		fmt.Fprintf(t.out, "%s  %s (%.3f, %.3f)\n",
			style.Render(fmt.Sprintf("%4s", value)), s.Name, s.Lat, s.Lon)
	}
}

// ShowDefaults implements the search view.
func (t *Terminal) ShowDefaults(favorites, recents []string) {
	if len(favorites) > 0 {
		fmt.Fprintln(t.out, t.labelStyle.Render("Favorites"))
		for _, name := range favorites {
			fmt.Fprintf(t.out, "  ★ %s\n", name)
		}
	}
	if len(recents) > 0 {
		fmt.Fprintln(t.out, t.labelStyle.Render("Recent searches"))
		for _, name := range recents {
			fmt.Fprintf(t.out, "  • %s\n", name)
		}
	}
	if len(favorites) == 0 && len(recents) == 0 {
		fmt.Fprintln(t.out, t.faintStyle.Render("type a city name to search"))
	}
}

// ShowSearching implements the search view.
func (t *Terminal) ShowSearching() {
	fmt.Fprintln(t.out, t.faintStyle.Render("searching..."))
}

// ShowSuggestions implements the search view.
func (t *Terminal) ShowSuggestions(suggestions []aqi.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(t.out, t.faintStyle.Render("no matches"))
		return
	}

	for _, s := range suggestions {
		line := fmt.Sprintf("%d. %s", s.Rank+1, s.City)
		if s.Country != "" {
			line += t.faintStyle.Render(", " + s.Country)
		}
		line += t.faintStyle.Render("  (" + s.Query.Raw() + ")")
		fmt.Fprintln(t.out, line)
	}
}

// Hide implements the search view.
func (t *Terminal) Hide() {}

func presentRows(rows []aqi.PollutantRow) []aqi.PollutantRow {
	out := rows[:0:0]
	for _, row := range rows {
		if row.Present {
			out = append(out, row)
		}
	}
	return out
}

func renderBar(progress float64) string {
	filled := int(progress / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
