package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// SparklineConfig holds configuration for trend chart rendering.
type SparklineConfig struct {
	// Width is the number of characters for the chart
	Width int
	// Height is the number of lines (1 for compact, 2+ for a full chart)
	Height int
	// Color is the lipgloss color for the chart
	Color lipgloss.Color
	// Caption is an optional label shown below the chart
	Caption string
}

// DefaultSparklineConfig returns sensible defaults for inline sparklines.
func DefaultSparklineConfig() SparklineConfig {
	return SparklineConfig{
		Width:  24,
		Height: 1,
		Color:  lipgloss.Color("117"), // Light blue
	}
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline renders the daily ingest trend. Single-line charts use
// Unicode blocks; taller charts go through asciigraph.
func RenderSparkline(data []float64, config SparklineConfig) string {
	if len(data) == 0 {
		return strings.Repeat("─", config.Width)
	}
	if config.Height <= 1 {
		return renderBlocks(data, config)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Width(config.Width),
		asciigraph.Height(config.Height),
	)
	out := lipgloss.NewStyle().Foreground(config.Color).Render(graph)
	if config.Caption != "" {
		out += "\n" + lipgloss.NewStyle().Faint(true).Render(config.Caption)
	}
	return out
}

func renderBlocks(data []float64, config SparklineConfig) string {
	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	var b strings.Builder
	for _, v := range data {
		idx := 0
		if span > 0 {
			idx = int((v - min) / span * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(config.Color).Render(b.String())
}
