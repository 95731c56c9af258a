package pad

import (
	"fmt"

	"github.com/0xcafed00d/joystick"
)

// joystickDevice adapts the kernel joystick interface to Device. The
// joystick API is input-only, so the RGB light and LED indicators are no-ops
// on this backend.
type joystickDevice struct {
	js   joystick.Joystick
	name string
}

// OpenJoystick returns an Opener for the numbered kernel joystick device.
func OpenJoystick(id int) Opener {
	return func() (Device, error) {
		js, err := joystick.Open(id)
		if err != nil {
			return nil, fmt.Errorf("open joystick %d: %w", id, err)
		}
		return &joystickDevice{js: js, name: fmt.Sprintf("%s#%d", js.Name(), id)}, nil
	}
}

func (d *joystickDevice) Read() (State, error) {
	s, err := d.js.Read()
	if err != nil {
		return State{}, fmt.Errorf("read joystick: %w", err)
	}
	return State{Buttons: s.Buttons, Axes: s.AxisData}, nil
}

func (d *joystickDevice) Serial() string { return d.name }

func (d *joystickDevice) SetColor(r, g, b uint8) {}

func (d *joystickDevice) SetLED(on bool) {}

func (d *joystickDevice) Close() error {
	d.js.Close()
	return nil
}
