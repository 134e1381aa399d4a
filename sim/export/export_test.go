package export

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/charge-lab/sim"
)

func TestWriteCSV_HeaderAndFourDecimals(t *testing.T) {
	// GIVEN a short series
	series := []sim.DataPoint{
		{Time: 0.5, Voltage: 10},
		{Time: 1.0, Voltage: 9.900498},
	}

	// WHEN exported
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, series))

	// THEN the header and rows use the documented layout
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Time (s),Voltage (V),ln(V)", lines[0])
	assert.Equal(t, "0.5000,10.0000,2.3026", lines[1])
	assert.Equal(t, "1.0000,9.9005,2.2926", lines[2])
}

func TestWriteCSV_ExcludesPointsAtOrBelowFloor(t *testing.T) {
	series := []sim.DataPoint{
		{Time: 1, Voltage: 0.5},
		{Time: 2, Voltage: 0.01},
		{Time: 3, Voltage: 0.0099},
		{Time: 4, Voltage: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, series))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "only the 0.5 V point is above the floor")
	assert.True(t, strings.HasPrefix(lines[1], "1.0000,0.5000,"))
}

func TestWriteCSV_EmptySeries(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, nil), ErrNoData)
	assert.Empty(t, buf.String())
}

func TestWriteCSV_LnColumnMatchesVoltage(t *testing.T) {
	// GIVEN a decay curve sampled every 0.5 s
	var series []sim.DataPoint
	for i := 1; i <= 200; i++ {
		tm := float64(i) * 0.5
		series = append(series, sim.DataPoint{Time: tm, Voltage: 10 * math.Exp(-tm/50)})
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, series))

	// THEN every exported ln(V) equals ln of the exported voltage's source point
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")[1:]
	require.Len(t, lines, len(series))
	for i, line := range lines {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 3)
		lnV, err := strconv.ParseFloat(fields[2], 64)
		require.NoError(t, err)
		assert.InDelta(t, math.Log(series[i].Voltage), lnV, 0.00005+1e-12)
	}
}

func TestLogSeries_PreservesOrder(t *testing.T) {
	series := []sim.DataPoint{{Time: 1, Voltage: 5}, {Time: 2, Voltage: 0.001}, {Time: 3, Voltage: 4}}
	logs := LogSeries(series)
	require.Len(t, logs, 2)
	assert.Equal(t, 1.0, logs[0].Time)
	assert.Equal(t, 3.0, logs[1].Time)
	assert.InDelta(t, math.Log(4), logs[1].LnV, 1e-12)
}

func TestRecent_NewestFirst(t *testing.T) {
	var series []sim.DataPoint
	for i := 1; i <= 15; i++ {
		series = append(series, sim.DataPoint{Time: float64(i), Voltage: 10 - float64(i)*0.5})
	}

	recent := Recent(series, 10)

	require.Len(t, recent, 10)
	assert.Equal(t, 15.0, recent[0].Time)
	assert.Equal(t, 6.0, recent[9].Time)
	assert.Len(t, Recent(series[:3], 10), 3)
	assert.Empty(t, Recent(series, -1))
}
