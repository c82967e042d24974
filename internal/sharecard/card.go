// Package sharecard renders a reading as a square SVG image suitable
// for sharing.
package sharecard

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/aqipro/aqipro/internal/aqi"
)

// Size is the card's width and height in pixels.
const Size = 1080

// Render produces the SVG share card for a view model. Unavailable
// readings render with a neutral palette and a dash for the index.
func Render(vm aqi.ViewModel) []byte {
	color := vm.Color
	if vm.Unavailable || color == "" {
		color = "#78909c"
	}

	value := "-"
	category := "No data"
	advice := "This station is not reporting an air quality index."
	if !vm.Unavailable {
		value = strconv.Itoa(vm.AQI)
		category = vm.Category.Text
		advice = vm.Category.Advice
	}

	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		Size, Size, Size, Size)

	// Background: category color fading into a darkened shade.
	fmt.Fprintf(&b, `<defs><linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">`+
		`<stop offset="0%%" stop-color="%s"/>`+
		`<stop offset="100%%" stop-color="%s"/>`+
		`</linearGradient></defs>`,
		color, adjustColor(color, -70))
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="url(#bg)"/>`, Size, Size)

	// Frosted center card.
	b.WriteString(`<rect x="90" y="150" width="900" height="780" rx="48"` +
		` fill="#ffffff" fill-opacity="0.12" stroke="#ffffff" stroke-opacity="0.25" stroke-width="2"/>`)

	text := func(y int, size int, weight, opacity, content string) {
		fmt.Fprintf(&b, `<text x="540" y="%d" text-anchor="middle" font-family="Helvetica, Arial, sans-serif"`+
			` font-size="%d" font-weight="%s" fill="#ffffff" fill-opacity="%s">%s</text>`,
			y, size, weight, opacity, html.EscapeString(content))
	}

	text(290, 64, "bold", "1", vm.CityName)
	text(350, 34, "normal", "0.75", vm.StationLabel+": "+vm.StationName)
	text(640, valueFontSize(value), "bold", "1", value)
	text(740, 56, "bold", "0.95", category)
	text(810, 30, "normal", "0.8", clip(advice, 70))

	if !vm.UpdatedAt.IsZero() {
		text(890, 26, "normal", "0.6", "Updated "+vm.UpdatedAt.Format("Jan 2, 2006 15:04 MST"))
	}

	text(1010, 32, "bold", "0.9", "AQI Pro")

	b.WriteString(`</svg>`)
	return []byte(b.String())
}

// valueFontSize shrinks the index as it gains digits so four-digit
// values still fit the card.
func valueFontSize(value string) int {
	switch {
	case len(value) <= 2:
		return 280
	case len(value) == 3:
		return 240
	default:
		return 190
	}
}

// adjustColor shifts each RGB channel of a "#rrggbb" color by amount,
// clamping to [0, 255]. Unparseable input is returned unchanged.
func adjustColor(hex string, amount int) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}

	out := [3]int{}
	for i := 0; i < 3; i++ {
		channel, err := strconv.ParseInt(hex[1+i*2:3+i*2], 16, 0)
		if err != nil {
			return hex
		}
		v := int(channel) + amount
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out[i] = v
	}

	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}

// clip truncates s to at most n runes, appending an ellipsis when
// anything was cut.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
