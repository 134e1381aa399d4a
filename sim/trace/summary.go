package trace

// TraceSummary aggregates statistics from a SessionTrace.
type TraceSummary struct {
	TotalToggles    int
	DischargeLegs   int // toggles that moved the switch into discharge
	Resets          int
	RecordingStarts int
	RecordingStops  int
	DiscardedPoints int            // points dropped by resets and clears
	PositionCounts  map[string]int // switch position → number of toggles into it
}

// Summarize computes aggregate statistics from a SessionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SessionTrace) *TraceSummary {
	summary := &TraceSummary{
		PositionCounts: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalToggles = len(st.Toggles)
	for _, tg := range st.Toggles {
		summary.PositionCounts[tg.To]++
		if tg.To == "discharge" {
			summary.DischargeLegs++
		}
	}

	summary.Resets = len(st.Resets)
	for _, r := range st.Resets {
		summary.DiscardedPoints += r.DiscardedPoints
	}
	for _, c := range st.Clears {
		summary.DiscardedPoints += c.DiscardedPoints
	}

	for _, r := range st.Recordings {
		if r.Enabled {
			summary.RecordingStarts++
		} else {
			summary.RecordingStops++
		}
	}

	return summary
}
