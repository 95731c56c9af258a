// Package pad owns the game-controller link: connecting to the physical
// device, polling it, and translating raw button/axis changes into a closed
// set of recorder commands.
package pad

// Kind enumerates every input event the controller can produce. The set is
// fixed: a recorder handler that switches over these kinds covers the whole
// input surface.
type Kind int

const (
	Save Kind = iota // cross edge: record the current pose
	ToggleMode
	Delete
	Replay
	CycleJoint     // shoulder button edge, Dir is +1 or -1
	Trigger        // trigger level change, Side and Level are set
	Stick          // joystick change, Side, X and Y are set
	DPad           // directional-pad edge, Pad is set
	ToggleEffector // stick-press edge: actuate the end effector
)

// Side distinguishes the left and right trigger/stick.
type Side int

const (
	Left Side = iota
	Right
)

// Direction is a directional-pad direction.
type Direction int

const (
	PadUp Direction = iota
	PadDown
	PadLeft
	PadRight
)

// Command is one dispatched input event. Only the fields relevant to Kind
// carry meaning.
type Command struct {
	Kind  Kind
	Dir   int     // CycleJoint
	Side  Side    // Trigger, Stick
	Level float64 // Trigger, in [0, 1]
	X, Y  float64 // Stick, in [-1, 1]
	Pad   Direction
}

// Handler consumes dispatched commands. It is invoked from the controller's
// poll goroutine, asynchronously to everything else.
type Handler func(Command)
