package report

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/talgya/roomsim/internal/engine"
)

// ErrNotEnoughData is returned when a chart has fewer than two samples.
var ErrNotEnoughData = errors.New("report: not enough samples to chart")

// WriteChart renders the infection curve as a PNG: cumulative new
// infections and currently infected persons over simulated time.
func WriteChart(w io.Writer, history []engine.Sample) error {
	if len(history) < 2 {
		return ErrNotEnoughData
	}

	xs := make([]float64, len(history))
	newly := make([]float64, len(history))
	current := make([]float64, len(history))
	maxY := 1.0
	for i, s := range history {
		xs[i] = s.Time
		newly[i] = float64(s.NewlyInfected)
		current[i] = float64(s.Infected)
		maxY = max(maxY, newly[i], current[i])
	}
	minX, maxX := xs[0], xs[len(xs)-1]
	if maxX <= minX {
		maxX = minX + 1
	}

	graph := chart.Chart{
		Title: "Infections over simulated time",
		XAxis: chart.XAxis{
			Name:  "simulated time",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: minX, Max: maxX},
		},
		YAxis: chart.YAxis{
			Name:  "persons",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "newly infected (cumulative)",
				XValues: xs,
				YValues: newly,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 3.0},
			},
			chart.ContinuousSeries{
				Name:    "currently infected",
				XValues: xs,
				YValues: current,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}
