package pad

// Input noise thresholds, matched to raw 8-bit controller readings: trigger
// values below 5/255 and stick deflections below 5/128 are treated as rest.
const (
	triggerDeadzone = 5.0 / 255.0
	stickDeadzone   = 5.0 / 128.0
)

// dispatcher turns consecutive raw states into commands. It keeps the
// previous snapshot so button presses and pad directions fire on the rising
// edge only, while trigger and stick commands fire on every level change.
type dispatcher struct {
	prev     State
	primed   bool
	triggers [2]float64
	sticks   [2][2]float64
}

func (d *dispatcher) step(s State) []Command {
	var cmds []Command

	if d.primed {
		cmds = d.buttonEdges(s, cmds)
		cmds = d.padEdges(s, cmds)
	}
	cmds = d.triggerChanges(s, cmds)
	cmds = d.stickChanges(s, cmds)

	d.prev = s
	d.primed = true
	return cmds
}

func (d *dispatcher) buttonEdges(s State, cmds []Command) []Command {
	edge := func(idx int) bool {
		return pressed(s.Buttons, idx) && !pressed(d.prev.Buttons, idx)
	}
	if edge(btnCross) {
		cmds = append(cmds, Command{Kind: Save})
	}
	if edge(btnSquare) {
		cmds = append(cmds, Command{Kind: ToggleMode})
	}
	if edge(btnTriangle) {
		cmds = append(cmds, Command{Kind: Delete})
	}
	if edge(btnCircle) {
		cmds = append(cmds, Command{Kind: Replay})
	}
	if edge(btnR1) {
		cmds = append(cmds, Command{Kind: CycleJoint, Dir: 1})
	}
	if edge(btnL1) {
		cmds = append(cmds, Command{Kind: CycleJoint, Dir: -1})
	}
	if edge(btnR3) {
		cmds = append(cmds, Command{Kind: ToggleEffector})
	}
	return cmds
}

func (d *dispatcher) padEdges(s State, cmds []Command) []Command {
	x, y := axis(s, axisHatX), axis(s, axisHatY)
	px, py := axis(d.prev, axisHatX), axis(d.prev, axisHatY)

	if y < 0 && py >= 0 {
		cmds = append(cmds, Command{Kind: DPad, Pad: PadUp})
	}
	if y > 0 && py <= 0 {
		cmds = append(cmds, Command{Kind: DPad, Pad: PadDown})
	}
	if x < 0 && px >= 0 {
		cmds = append(cmds, Command{Kind: DPad, Pad: PadLeft})
	}
	if x > 0 && px <= 0 {
		cmds = append(cmds, Command{Kind: DPad, Pad: PadRight})
	}
	return cmds
}

func (d *dispatcher) triggerChanges(s State, cmds []Command) []Command {
	for i, idx := range [...]int{axisL2, axisR2} {
		// Trigger axes rest at -max and saturate at +max.
		level := float64(axis(s, idx)+axisMax) / (2 * axisMax)
		if level < triggerDeadzone {
			level = 0
		}
		if level != d.triggers[i] {
			d.triggers[i] = level
			cmds = append(cmds, Command{Kind: Trigger, Side: Side(i), Level: level})
		}
	}
	return cmds
}

func (d *dispatcher) stickChanges(s State, cmds []Command) []Command {
	for i, pair := range [...][2]int{{axisLeftX, axisLeftY}, {axisRightX, axisRightY}} {
		x := float64(axis(s, pair[0])) / axisMax
		y := float64(axis(s, pair[1])) / axisMax
		if x > -stickDeadzone && x < stickDeadzone {
			x = 0
		}
		if y > -stickDeadzone && y < stickDeadzone {
			y = 0
		}
		if cur := [2]float64{x, y}; cur != d.sticks[i] {
			d.sticks[i] = cur
			cmds = append(cmds, Command{Kind: Stick, Side: Side(i), X: x, Y: y})
		}
	}
	return cmds
}
