package trace

import (
	"testing"
)

func TestSessionTrace_RecordToggle_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for events
	st := NewSessionTrace(LevelEvents)

	// WHEN a toggle record is recorded
	st.RecordToggle(ToggleRecord{Time: 1.5, Voltage: 10, From: "charge", To: "discharge"})

	// THEN the trace contains one toggle record with correct data
	if len(st.Toggles) != 1 {
		t.Fatalf("expected 1 toggle, got %d", len(st.Toggles))
	}
	if st.Toggles[0].To != "discharge" {
		t.Errorf("expected to=discharge, got %s", st.Toggles[0].To)
	}
	if st.Toggles[0].Time != 1.5 {
		t.Errorf("expected time 1.5, got %v", st.Toggles[0].Time)
	}
}

func TestSessionTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSessionTrace(LevelEvents)

	// WHEN multiple records are added
	st.RecordToggle(ToggleRecord{Time: 0, From: "open", To: "charge"})
	st.RecordToggle(ToggleRecord{Time: 2, From: "charge", To: "discharge"})
	st.RecordRecording(RecordingRecord{Time: 2, Enabled: true})

	// THEN order is preserved
	if len(st.Toggles) != 2 {
		t.Fatalf("expected 2 toggles, got %d", len(st.Toggles))
	}
	if st.Toggles[0].To != "charge" || st.Toggles[1].To != "discharge" {
		t.Errorf("unexpected toggle order: %+v", st.Toggles)
	}
	if len(st.Recordings) != 1 || !st.Recordings[0].Enabled {
		t.Errorf("expected one enabled recording record, got %+v", st.Recordings)
	}
}

func TestIsValidLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"", true},
		{"none", true},
		{"events", true},
		{"decisions", false},
		{"EVENTS", false},
	}
	for _, tc := range tests {
		if got := IsValidLevel(tc.level); got != tc.want {
			t.Errorf("IsValidLevel(%q) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestLevel_Enabled(t *testing.T) {
	if Level("").Enabled() || LevelNone.Enabled() {
		t.Error("none and empty levels must not record")
	}
	if !LevelEvents.Enabled() {
		t.Error("events level must record")
	}
}
