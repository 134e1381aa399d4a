package sim

import "fmt"

// Intent is a discrete user command delivered to a session between ticks.
type Intent string

const (
	IntentToggle Intent = "toggle" // advance the switch one position
	IntentReset  Intent = "reset"  // restore initial state, clear series, stop recording
	IntentRecord Intent = "record" // start recording samples
	IntentStop   Intent = "stop"   // stop recording samples
	IntentClear  Intent = "clear"  // empty the recorded series
)

var validIntents = map[Intent]bool{
	IntentToggle: true,
	IntentReset:  true,
	IntentRecord: true,
	IntentStop:   true,
	IntentClear:  true,
}

// ParseIntent converts a wire or config string into an Intent.
func ParseIntent(s string) (Intent, error) {
	in := Intent(s)
	if !validIntents[in] {
		return "", fmt.Errorf("unknown intent %q (want toggle, reset, record, stop or clear)", s)
	}
	return in, nil
}

// Apply executes one intent against the session.
func (s *Session) Apply(in Intent) error {
	switch in {
	case IntentToggle:
		s.Toggle()
	case IntentReset:
		s.Reset()
	case IntentRecord:
		s.SetRecording(true)
	case IntentStop:
		s.SetRecording(false)
	case IntentClear:
		s.ClearData()
	default:
		return fmt.Errorf("unknown intent %q", in)
	}
	return nil
}
