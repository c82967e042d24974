package aqi

// Category describes one EPA AQI severity band.
type Category struct {
	// ID is a stable slug usable as a theme key.
	ID string

	// Text is the short human label.
	Text string

	// Advice is the health guidance for the band.
	Advice string
}

var categories = []struct {
	max int
	cat Category
}{
	{50, Category{ID: "good", Text: "Good",
		Advice: "Air quality is satisfactory, and air pollution poses little or no risk."}},
	{100, Category{ID: "moderate", Text: "Moderate",
		Advice: "Air quality is acceptable. However, people with respiratory conditions may be affected."}},
	{150, Category{ID: "unhealthy-sens", Text: "Unhealthy for Sensitive Groups",
		Advice: "Members of sensitive groups may experience health effects. General public is less likely to be affected."}},
	{200, Category{ID: "unhealthy", Text: "Unhealthy",
		Advice: "Everyone may begin to experience health effects; members of sensitive groups may experience more serious health effects."}},
	{300, Category{ID: "very-unhealthy", Text: "Very Unhealthy",
		Advice: "Health alert: everyone may experience more serious health effects."}},
}

var hazardous = Category{ID: "hazardous", Text: "Hazardous",
	Advice: "Health warnings of emergency conditions. The entire population is more likely to be affected."}

// CategoryFor returns the severity band for an AQI value.
func CategoryFor(aqi int) Category {
	for _, c := range categories {
		if aqi <= c.max {
			return c.cat
		}
	}
	return hazardous
}

var colors = []struct {
	max int
	hex string
}{
	{50, "#00e676"},
	{100, "#ffea00"},
	{150, "#ff9100"},
	{200, "#ff5252"},
	{300, "#d500f9"},
}

// ColorFor returns the display color for an AQI value.
func ColorFor(aqi int) string {
	for _, c := range colors {
		if aqi <= c.max {
			return c.hex
		}
	}
	return "#b71c1c"
}
