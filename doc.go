// Package teachbot provides teach-and-replay control for a 4-joint robot arm.
//
// An operator drives the arm with a game controller while the recorder
// captures a sequence of absolute poses, relative moves, and end-effector
// actions ("memory"); the same sequence can later be replayed autonomously.
//
// # Usage
//
// Start a recording session with the TUI dashboard:
//
//	teachbot record
//
// Replay a saved memory file:
//
//	teachbot replay -f memory.json
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/teachbot: CLI with record and replay commands
//   - pkg/memory: recorded-entry data model, persistence, move compaction
//   - pkg/robot: TCP link to the arm (motion, telemetry, alarm decoding)
//   - pkg/pad: game-controller link and input-command dispatch
//   - pkg/recorder: control loop, recording state machine, replay
package teachbot
