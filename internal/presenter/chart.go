package presenter

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToChart is returned when no sector holds a positive cost.
var ErrNothingToChart = errors.New("no sector allocation to chart")

var sectorColors = []drawing.Color{
	drawing.ColorFromHex("0088fe"),
	drawing.ColorFromHex("00c49f"),
	drawing.ColorFromHex("ffbb28"),
	drawing.ColorFromHex("ff8042"),
	drawing.ColorFromHex("8884d8"),
	drawing.ColorFromHex("82ca9d"),
}

// RenderSectorChart writes a PNG pie chart of the overview's sector shares.
func RenderSectorChart(ov *Overview, w io.Writer) error {
	var values []chart.Value
	for _, s := range ov.Sectors {
		if !s.Cost.IsPositive() || s.Share.Indeterminate {
			continue
		}
		label := s.Sector
		if label == "" {
			label = "Unspecified"
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", label, s.Share),
			Value: s.Share.Float(),
			Style: chart.Style{
				FillColor:   sectorColors[len(values)%len(sectorColors)],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1.5,
			},
		})
	}
	if len(values) == 0 {
		return ErrNothingToChart
	}

	pie := chart.PieChart{
		Title:  "Sector Allocation",
		Width:  600,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}
