package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

// Gauge renders a static fill bar with a count, e.g. "History ███░░ 3/5".
type Gauge struct {
	ui    *UI
	bar   progress.Model
	label string
}

// NewGauge creates a gauge with a bar of the given width.
func (u *UI) NewGauge(label string, width int) *Gauge {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	return &Gauge{
		ui:    u,
		bar:   bar,
		label: label,
	}
}

// Render draws the gauge for current out of total.
func (g *Gauge) Render(current, total int) string {
	count := fmt.Sprintf("%d/%d", current, total)
	if !g.ui.shouldStyle() {
		return g.label + " " + count
	}

	percent := 0.0
	if total > 0 {
		percent = float64(current) / float64(total)
	}
	percent = max(0, min(percent, 1))

	return StyleMuted.Render(g.label) + " " + g.bar.ViewAs(percent) + " " + count
}
