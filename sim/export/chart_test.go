package export

import (
	"bytes"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/charge-lab/sim"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func decaySeries(n int) []sim.DataPoint {
	out := make([]sim.DataPoint, n)
	for i := range out {
		tm := float64(i+1) * 0.5
		out[i] = sim.DataPoint{Time: tm, Voltage: 10 * math.Exp(-tm/50)}
	}
	return out
}

func TestVoltageChart_RendersPNG(t *testing.T) {
	p, err := VoltageChart(decaySeries(40))
	require.NoError(t, err)

	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = wt.WriteTo(&buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCharts_EmptySeries(t *testing.T) {
	_, err := VoltageChart(nil)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = LogChart([]sim.DataPoint{{Time: 1, Voltage: 0}})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderCharts_WritesBothFiles(t *testing.T) {
	dir := t.TempDir()

	paths, err := RenderCharts(dir, decaySeries(20))
	require.NoError(t, err)

	require.Len(t, paths, 2)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), p)
	}
}

func TestRenderCharts_SkipsLogChartWhenAllBelowFloor(t *testing.T) {
	paths, err := RenderCharts(t.TempDir(), []sim.DataPoint{{Time: 1, Voltage: 0}, {Time: 2, Voltage: 0}})
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}
