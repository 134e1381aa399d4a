package trace

// Level controls the verbosity of session tracing.
type Level string

const (
	// LevelNone disables tracing (zero overhead).
	LevelNone Level = "none"
	// LevelEvents captures every user-driven session event.
	LevelEvents Level = "events"
)

// validLevels maps accepted trace level strings.
var validLevels = map[Level]bool{
	LevelNone:   true,
	LevelEvents: true,
	"":          true, // empty defaults to none
}

// IsValidLevel returns true if the given level string is a recognized trace level.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// Enabled returns true if events should be recorded at this level.
func (l Level) Enabled() bool {
	return l == LevelEvents
}

// SessionTrace collects event records during a session.
type SessionTrace struct {
	Level      Level
	Toggles    []ToggleRecord
	Resets     []ResetRecord
	Recordings []RecordingRecord
	Clears     []ClearRecord
}

// NewSessionTrace creates a SessionTrace ready for recording.
func NewSessionTrace(level Level) *SessionTrace {
	return &SessionTrace{
		Level:      level,
		Toggles:    make([]ToggleRecord, 0),
		Resets:     make([]ResetRecord, 0),
		Recordings: make([]RecordingRecord, 0),
		Clears:     make([]ClearRecord, 0),
	}
}

// RecordToggle appends a toggle record.
func (st *SessionTrace) RecordToggle(record ToggleRecord) {
	st.Toggles = append(st.Toggles, record)
}

// RecordReset appends a reset record.
func (st *SessionTrace) RecordReset(record ResetRecord) {
	st.Resets = append(st.Resets, record)
}

// RecordRecording appends a recording on/off record.
func (st *SessionTrace) RecordRecording(record RecordingRecord) {
	st.Recordings = append(st.Recordings, record)
}

// RecordClear appends a clear record.
func (st *SessionTrace) RecordClear(record ClearRecord) {
	st.Clears = append(st.Clears, record)
}
