package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/charge-lab/sim"
)

// Tutor holds a chat with the model. Safe for concurrent use. The lock is not
// held while the model answers, so concurrent asks overlap and replies are
// appended in the order they arrive.
type Tutor struct {
	mu      sync.Mutex
	client  Client
	history []Message
}

// NewTutor starts a chat seeded with the greeting.
func NewTutor(c Client) *Tutor {
	return &Tutor{
		client:  c,
		history: []Message{{Role: RoleModel, Text: Greeting}},
	}
}

// History returns a copy of the chat so far.
func (t *Tutor) History() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.history))
	copy(out, t.history)
	return out
}

// Ask appends the question, asks the model with a context built from state,
// appends and returns the reply. Blank questions are ignored and return "".
// Failures yield FallbackError; an empty reply yields FallbackEmpty.
func (t *Tutor) Ask(ctx context.Context, question string, state sim.State) string {
	if strings.TrimSpace(question) == "" {
		return ""
	}
	t.mu.Lock()
	t.history = append(t.history, Message{Role: RoleUser, Text: question})
	snapshot := make([]Message, len(t.history))
	copy(snapshot, t.history)
	t.mu.Unlock()

	reply, err := t.client.Reply(ctx, snapshot, FormatContext(state))
	switch {
	case err != nil:
		logrus.Warnf("assistant error: %v", err)
		reply = FallbackError
	case reply == "":
		reply = FallbackEmpty
	}

	t.mu.Lock()
	t.history = append(t.history, Message{Role: RoleModel, Text: reply})
	t.mu.Unlock()
	return reply
}
