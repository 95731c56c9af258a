package pad

// State is one raw controller snapshot: a button bitmask and signed 16-bit
// axis values in joystick order.
type State struct {
	Buttons uint32
	Axes    []int
}

// Device is the raw controller handle. The production implementation wraps
// the kernel joystick interface; tests supply scripted fakes.
type Device interface {
	// Read returns the current state. An error means the device is gone.
	Read() (State, error)
	// Serial identifies the device in log lines.
	Serial() string
	// SetColor drives the RGB light; used to show the active joint.
	SetColor(r, g, b uint8)
	// SetLED drives the binary LED; used to show the recording mode.
	SetLED(on bool)
	Close() error
}

// Opener produces a fresh device handle; the link calls it on connect and on
// every reconnect.
type Opener func() (Device, error)

// Button indices and axis layout of a DualSense-class pad on the kernel
// joystick interface.
const (
	btnCross    = 0
	btnCircle   = 1
	btnTriangle = 2
	btnSquare   = 3
	btnL1       = 4
	btnR1       = 5
	btnR3       = 12

	axisLeftX  = 0
	axisLeftY  = 1
	axisL2     = 2
	axisRightX = 3
	axisRightY = 4
	axisR2     = 5
	axisHatX   = 6
	axisHatY   = 7
	axisMax    = 32767
)

func pressed(buttons uint32, idx int) bool {
	return buttons&(1<<uint(idx)) != 0
}

func axis(s State, idx int) int {
	if idx >= len(s.Axes) {
		return 0
	}
	return s.Axes[idx]
}
