// Package export turns a recorded series into the artifacts a student works
// with: the ln(V) table, its CSV download, a least-squares resistance estimate
// and the two analysis charts.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/inference-sim/charge-lab/sim"
)

// LogFloor is the voltage at or below which points are left out of the ln(V)
// series, the CSV table and the fit.
const LogFloor = 0.01

// ErrNoData is returned when there is nothing recorded to export.
var ErrNoData = errors.New("no data recorded")

// CSVHeader is the header row of the exported table.
var CSVHeader = []string{"Time (s)", "Voltage (V)", "ln(V)"}

// LogPoint is a recorded sample with its natural log.
type LogPoint struct {
	Time    float64 `json:"time"`
	Voltage float64 `json:"voltage"`
	LnV     float64 `json:"lnV"`
}

// LogSeries returns the points with voltage above LogFloor, with ln(V), in
// their recorded order.
func LogSeries(series []sim.DataPoint) []LogPoint {
	out := make([]LogPoint, 0, len(series))
	for _, p := range series {
		if p.Voltage > LogFloor {
			out = append(out, LogPoint{Time: p.Time, Voltage: p.Voltage, LnV: math.Log(p.Voltage)})
		}
	}
	return out
}

// Recent returns the last n points of the ln(V) series, newest first.
func Recent(series []sim.DataPoint, n int) []LogPoint {
	logs := LogSeries(series)
	if n < 0 {
		n = 0
	}
	if n > len(logs) {
		n = len(logs)
	}
	out := make([]LogPoint, 0, n)
	for i := len(logs) - 1; i >= len(logs)-n; i-- {
		out = append(out, logs[i])
	}
	return out
}

// WriteCSV writes the ln(V) table: a header row, then one row per point above
// LogFloor with every field at four decimal places. An empty series is
// ErrNoData; a series with no point above the floor yields only the header.
func WriteCSV(w io.Writer, series []sim.DataPoint) error {
	if len(series) == 0 {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range LogSeries(series) {
		row := []string{format4(p.Time), format4(p.Voltage), format4(p.LnV)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func format4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
