package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/inference-sim/charge-lab/sim"
)

// Chart size used by RenderCharts.
const (
	ChartWidth  = 6 * vg.Inch
	ChartHeight = 4 * vg.Inch
)

var (
	voltageColor = color.RGBA{R: 0x22, G: 0xd3, B: 0xee, A: 0xff}
	logColor     = color.RGBA{R: 0xf4, G: 0x72, B: 0xb6, A: 0xff}
)

// VoltageChart plots V(t) over every recorded point.
func VoltageChart(series []sim.DataPoint) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}
	pts := make(plotter.XYs, len(series))
	for i, p := range series {
		pts[i].X = p.Time
		pts[i].Y = p.Voltage
	}
	return lineChart("Voltage Decay: V(t) vs t", "Voltage (V)", pts, voltageColor)
}

// LogChart plots ln(V) against t over the points above LogFloor.
func LogChart(series []sim.DataPoint) (*plot.Plot, error) {
	logs := LogSeries(series)
	if len(logs) == 0 {
		return nil, ErrNoData
	}
	pts := make(plotter.XYs, len(logs))
	for i, p := range logs {
		pts[i].X = p.Time
		pts[i].Y = p.LnV
	}
	return lineChart("Analysis: ln(V) vs t", "ln(V)", pts, logColor)
}

func lineChart(title, yLabel string, pts plotter.XYs, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("building line for %q: %w", title, err)
	}
	line.Color = c
	line.Width = vg.Points(2)
	p.Add(line)
	return p, nil
}

// RenderCharts writes voltage.png and lnv.png into dir. The ln(V) chart is
// skipped when no point is above the floor.
func RenderCharts(dir string, series []sim.DataPoint) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}
	var written []string

	vp, err := VoltageChart(series)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "voltage.png")
	if err := vp.Save(ChartWidth, ChartHeight, path); err != nil {
		return written, fmt.Errorf("saving %s: %w", path, err)
	}
	written = append(written, path)

	lp, err := LogChart(series)
	if err == ErrNoData {
		return written, nil
	}
	if err != nil {
		return written, err
	}
	path = filepath.Join(dir, "lnv.png")
	if err := lp.Save(ChartWidth, ChartHeight, path); err != nil {
		return written, fmt.Errorf("saving %s: %w", path, err)
	}
	return append(written, path), nil
}
