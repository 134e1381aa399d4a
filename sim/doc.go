// Package sim provides the simulation core for the loss-of-charge lab.
//
// # Reading Guide
//
// Start with these files to understand the core:
//   - state.go: State (the per-tick snapshot) and the switch positions
//   - integrator.go: Advance, the pure (state, dt) → state discharge step
//   - sampler.go: fixed-cadence gate deciding when a DataPoint is recorded
//   - session.go: Session, the single owner of state, series and recording flag
//
// # Architecture
//
// The core exposes no scheduling of its own. Advance and Toggle are pure functions
// over State values; Session sequences them and publishes a complete snapshot after
// every mutation. Whoever drives the session owns the loop:
//   - driver.go: a wall-clock tick loop that applies queued intents between ticks
//   - script.go: a fixed-step loop replaying a schedule of intents (headless runs)
//
// Collaborators live in sub-packages and only read snapshots or series:
//   - sim/export/: CSV table, ln(V) series, resistance fit, charts
//   - sim/assistant/: tutor chat client with fixed fallback replies
//   - sim/live/: WebSocket stream of snapshots and intake of intents
//   - sim/trace/: ordered record of switch toggles, resets and recording changes
package sim
