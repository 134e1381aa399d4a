// Package assistant provides the lab tutor: chat history, the simulation
// context string handed to the model, and clients for the model service.
// Any failure of the service is absorbed into a fixed fallback reply; it never
// reaches the simulation core.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inference-sim/charge-lab/sim"
)

// Role tags a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the chat.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Fixed replies shown to the student.
const (
	Greeting = "Hello! I'm your lab assistant. I can help you understand how to calculate " +
		"resistance from the leakage rate. Charge the capacitor and let it discharge to start!"
	FallbackError = "Error communicating with the AI tutor."
	FallbackEmpty = "I'm having trouble connecting to the lab server right now."
)

// SystemInstruction frames every request to the model.
const SystemInstruction = `You are a friendly and knowledgeable physics laboratory instructor in a virtual classroom.
The student is performing the "Loss of Charge" method experiment to measure high resistance.

Experiment Context:
- A Capacitor (C) is charged to voltage V0.
- It discharges through a high resistance Resistor (R).
- The voltage V(t) decays exponentially: V(t) = V0 * exp(-t / (R*C)).
- The student needs to record Voltage vs Time, plot ln(V) vs t, and find the slope to calculate R.

Your Goal:
- Answer questions about the physics concepts.
- Help them with calculations if they are stuck, but don't give the answer immediately.
- If they ask about the simulation status, refer to the provided context.
- Keep responses concise (under 100 words) unless a detailed explanation is requested.`

// ErrUnavailable is returned by clients that are not configured.
var ErrUnavailable = errors.New("assistant not configured")

// Config configures an assistant client.
type Config struct {
	// Provider identifies the backend: "gemini" or "offline".
	Provider string `yaml:"provider"`

	// APIKey for the provider. Falls back to GEMINI_API_KEY, then API_KEY.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// Model is the model identifier to use for requests.
	Model string `yaml:"model,omitempty"`

	// Timeout is the maximum duration to wait for a reply.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DefaultConfig returns a Config targeting Gemini with a 30 s timeout.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Model:    defaultGeminiModel,
		Timeout:  30 * time.Second,
	}
}

// Client sends a chat to the model service.
type Client interface {
	// Reply returns the model's answer to the last turn of history, given a
	// freshly formatted simulation context.
	Reply(ctx context.Context, history []Message, simContext string) (string, error)

	// Available returns true if the client is configured and ready.
	Available() bool
}

// NewClient builds the client named by cfg.Provider. A Gemini client without
// credentials degrades to the offline client.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", "gemini":
		c := NewGeminiClient(cfg)
		if !c.Available() {
			return NewOfflineClient(), nil
		}
		return c, nil
	case "offline":
		return NewOfflineClient(), nil
	default:
		return nil, fmt.Errorf("unknown assistant provider %q (want gemini or offline)", cfg.Provider)
	}
}

// FormatContext renders the simulation state handed to the model. The true
// resistance is included for the tutor and marked hidden from the student.
func FormatContext(s sim.State) string {
	return fmt.Sprintf(`Current Sim State:
Voltage: %.2f V
Switch Position: %s
Capacitance: %g Farads
True Resistance (Hidden from student): %g Ohms`,
		s.Voltage, s.Switch, s.Params.Capacitance, s.Params.Resistance)
}

// OfflineClient is used when no model service is configured. Every call fails
// with ErrUnavailable, which the Tutor turns into the fallback reply.
type OfflineClient struct{}

// NewOfflineClient creates a new OfflineClient.
func NewOfflineClient() *OfflineClient {
	return &OfflineClient{}
}

// Reply always returns ErrUnavailable.
func (c *OfflineClient) Reply(ctx context.Context, history []Message, simContext string) (string, error) {
	return "", ErrUnavailable
}

// Available returns false.
func (c *OfflineClient) Available() bool {
	return false
}
