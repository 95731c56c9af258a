// Package recorder implements the control core: a long-lived control loop
// that blends buffered controller input into bounded joint moves, a
// recording state machine appending taught steps to memory, replay of that
// memory, and reconnection of both device links.
package recorder

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gwillem/teachbot/pkg/memory"
	"github.com/gwillem/teachbot/pkg/pad"
)

const (
	// ticksPerRefresh motion ticks run between telemetry cache refreshes,
	// so several motion commands are issued per display refresh.
	ticksPerRefresh = 10
	// deadzone zeroes per-joint deltas too small to bother the arm with.
	deadzone = 0.5
	// idleDelay paces the loop when no input is active, and backs off a
	// tick whose telemetry read failed.
	idleDelay = 10 * time.Millisecond
	errDelay  = 100 * time.Millisecond
)

// Arm is the robot-side surface the recorder drives; *robot.Link implements
// it.
type Arm interface {
	Pose() ([]float64, error)
	Angles() ([]float64, error)
	MoveJoint(pose []float64) error
	MoveLinear(pose []float64) error
	MoveJointRel(delta []float64) error
	MoveLinearRel(delta []float64) error
	TryMove(move func() error) (bool, error)
	ErrorCodes() ([]string, error)
	ClearError() error
	SetDigitalOut(pin, level int) error
	SetJointSpeed(pct float64) error
	SetLinearSpeed(pct float64) error
	SetJointAccel(pct float64) error
	SetLinearAccel(pct float64) error
	Alive() bool
	Reconnect() error
	Close() error
}

// Controller is the input-side surface; *pad.Link implements it.
type Controller interface {
	Apply(pad.Handler)
	SetColor(r, g, b uint8)
	SetLED(on bool)
	Alive() bool
	Reconnect() error
	Close() error
}

// inputBuffer holds the last-known controller axis values. Callback threads
// replace fields wholesale; the control loop snapshots them once per tick.
type inputBuffer struct {
	mu         sync.Mutex
	jointPos   float64
	jointNeg   float64
	leftStick  float64
	rightStick float64
}

func (b *inputBuffer) setTrigger(side pad.Side, level float64) {
	b.mu.Lock()
	if side == pad.Right {
		b.jointPos = level
	} else {
		b.jointNeg = level
	}
	b.mu.Unlock()
}

func (b *inputBuffer) setStick(side pad.Side, x float64) {
	b.mu.Lock()
	if side == pad.Left {
		b.leftStick = x
	} else {
		b.rightStick = x
	}
	b.mu.Unlock()
}

func (b *inputBuffer) snapshot() (pos, neg, left, right float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jointPos, b.jointNeg, b.leftStick, b.rightStick
}

// Recorder composes the robot and controller links and owns the memory and
// feed logs. One control goroutine runs while the recorder is started;
// controller callbacks and dashboard commands mutate state synchronously on
// their own threads.
type Recorder struct {
	cfg      Config
	arm      Arm
	ctrl     Controller
	effector Effector

	input   inputBuffer
	running atomic.Bool
	wg      sync.WaitGroup

	mu          sync.Mutex
	mem         []memory.Entry
	feedLog     []memory.FeedEntry
	mode        memory.Category
	activeJoint int
	pose        []float64
	angles      []float64
}

// New composes a recorder from already-connected links.
func New(cfg Config, arm Arm, ctrl Controller) (*Recorder, error) {
	n := cfg.Robot.NumJoints
	if n == 0 {
		n = 4
	}
	if len(cfg.MaxSpeed) != n || len(cfg.JointBounds) != n {
		return nil, fmt.Errorf("config needs %d max_speed and joint_bounds entries", n)
	}
	if cfg.LeftStickJoint >= n || cfg.RightStickJoint >= n {
		return nil, errors.New("stick joint index out of range")
	}
	eff, err := NewEffector(cfg.Effector)
	if err != nil {
		return nil, err
	}
	cfg.Robot.NumJoints = n
	return &Recorder{
		cfg:         cfg,
		arm:         arm,
		ctrl:        ctrl,
		effector:    eff,
		mode:        memory.Absolute,
		activeJoint: n / 2,
		pose:        make([]float64, n),
		angles:      make([]float64, n),
	}, nil
}

// AddFeed appends one line to the operator feed log. It is the FeedFunc
// handed to both links.
func (r *Recorder) AddFeed(message, source string) {
	r.mu.Lock()
	r.feedLog = append(r.feedLog, memory.FeedEntry{
		Timestamp: time.Now(),
		Message:   message,
		Source:    source,
	})
	r.mu.Unlock()
}

func (r *Recorder) logf(format string, args ...any) {
	r.AddFeed(fmt.Sprintf(format, args...), "Recorder")
}

// Start installs the input handler and spawns the control loop.
func (r *Recorder) Start() error {
	if !r.running.CompareAndSwap(false, true) {
		return errors.New("already running")
	}
	if r.cfg.AutosaveStart {
		if pose, err := r.arm.Pose(); err == nil {
			r.append(memory.NewEntry(memory.Absolute, memory.Joint, pose))
		} else {
			r.logf("Start pose unavailable: %v", err)
		}
	}
	r.ctrl.Apply(r.handleCommand)
	r.indicateActiveJoint()
	r.indicateMode()
	r.logf("Started recording")
	r.wg.Add(1)
	go r.run()
	return nil
}

// Stop signals the control loop, waits for it to finish its tick, persists
// memory to the configured save path, and tears down both links.
func (r *Recorder) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	r.logf("Shutting down")
	r.wg.Wait()
	if err := r.SaveMemory(r.cfg.SavePath); err != nil {
		r.logf("Memory dump failed: %v", err)
	}
	r.arm.Close()
	r.ctrl.Close()
}

// Reconnect stops the control loop, re-establishes both links, and restarts
// the loop. Memory and feed logs survive.
func (r *Recorder) Reconnect() error {
	if r.running.CompareAndSwap(true, false) {
		r.wg.Wait()
	}
	if err := r.arm.Reconnect(); err != nil {
		return fmt.Errorf("reconnect robot: %w", err)
	}
	if err := r.ctrl.Reconnect(); err != nil {
		return fmt.Errorf("reconnect controller: %w", err)
	}
	r.indicateActiveJoint()
	r.indicateMode()
	r.running.Store(true)
	r.wg.Add(1)
	go r.run()
	return nil
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for r.running.Load() {
		for i := 0; i < ticksPerRefresh && r.running.Load(); i++ {
			r.step()
		}
		r.refreshTelemetry()
	}
}

// step is one control tick: snapshot input, blend it into a per-joint delta,
// clamp against the joint bounds, and issue the move. In RELATIVE mode a
// successful move records the intended (unclamped) delta.
func (r *Recorder) step() {
	pos, neg, left, right := r.input.snapshot()

	r.mu.Lock()
	active := r.activeJoint
	mode := r.mode
	r.mu.Unlock()

	intended := make([]float64, r.cfg.Robot.NumJoints)
	intended[active] = (pos - neg) * r.cfg.MaxSpeed[active]
	intended[r.cfg.LeftStickJoint] += left * r.cfg.MaxSpeed[r.cfg.LeftStickJoint]
	intended[r.cfg.RightStickJoint] += right * r.cfg.MaxSpeed[r.cfg.RightStickJoint]

	bounded, err := r.boundMovement(intended)
	if err != nil {
		r.logf("Skipping tick: %v", err)
		time.Sleep(errDelay)
		return
	}
	for i, d := range bounded {
		if math.Abs(d) < deadzone {
			bounded[i] = 0
		}
	}
	if !nonzero(bounded) {
		time.Sleep(idleDelay)
		return
	}

	if err := r.arm.MoveJointRel(bounded); err != nil {
		r.logf("Connection aborted")
		return
	}
	// A move whose components cancel (zero net displacement) is issued but
	// not recorded; replaying it would be a no-op.
	if mode == memory.Relative && sum(bounded) != 0 {
		r.append(memory.NewEntry(memory.Relative, memory.Joint, intended))
	}
}

// boundMovement clamps delta so the resulting absolute angles stay inside
// the configured joint bounds, returning the largest move still possible per
// joint. Unknown angles are an error, never treated as a zero reading.
func (r *Recorder) boundMovement(delta []float64) ([]float64, error) {
	angles, err := r.arm.Angles()
	if err != nil {
		return nil, fmt.Errorf("no angles available: %w", err)
	}
	out := make([]float64, len(delta))
	for i := range delta {
		target := angles[i] + delta[i]
		if lo := r.cfg.JointBounds[i][0]; target < lo {
			target = lo
		}
		if hi := r.cfg.JointBounds[i][1]; target > hi {
			target = hi
		}
		out[i] = target - angles[i]
	}
	return out, nil
}

func (r *Recorder) refreshTelemetry() {
	pose, poseErr := r.arm.Pose()
	angles, anglesErr := r.arm.Angles()
	r.mu.Lock()
	if poseErr == nil {
		r.pose = pose
	}
	if anglesErr == nil {
		r.angles = angles
	}
	r.mu.Unlock()
}

// handleCommand is the single consumer of controller input. It runs on the
// controller's poll goroutine, interleaving with control ticks at arbitrary
// granularity.
func (r *Recorder) handleCommand(cmd pad.Command) {
	switch cmd.Kind {
	case pad.Save:
		r.savePose()
	case pad.ToggleMode:
		r.toggleMode()
	case pad.Delete:
		r.deleteLast()
	case pad.Replay:
		r.Replay()
	case pad.CycleJoint:
		r.cycleJoint(cmd.Dir)
	case pad.Trigger:
		r.input.setTrigger(cmd.Side, cmd.Level)
	case pad.Stick:
		r.input.setStick(cmd.Side, cmd.X)
	case pad.DPad:
		r.linearStep(cmd.Pad)
	case pad.ToggleEffector:
		r.toggleEffector()
	}
}

func (r *Recorder) savePose() {
	pose, err := r.arm.Pose()
	if err != nil {
		r.logf("Cannot save pose: %v", err)
		return
	}
	r.append(memory.NewEntry(memory.Absolute, memory.Joint, pose))
}

func (r *Recorder) toggleMode() {
	r.mu.Lock()
	toRelative := r.mode == memory.Absolute
	if toRelative {
		r.mode = memory.Relative
	} else {
		r.mode = memory.Absolute
	}
	r.mu.Unlock()

	if toRelative {
		// Entering relative mode records the pose it starts from, so the
		// following relative steps replay from the right place.
		r.savePose()
	}
	r.indicateMode()
}

func (r *Recorder) deleteLast() {
	r.mu.Lock()
	if n := len(r.mem); n > 0 {
		r.mem = r.mem[:n-1]
	}
	r.mu.Unlock()
}

func (r *Recorder) cycleJoint(dir int) {
	n := r.cfg.Robot.NumJoints
	r.mu.Lock()
	r.activeJoint = ((r.activeJoint+dir)%n + n) % n
	r.mu.Unlock()
	r.indicateActiveJoint()
}

func (r *Recorder) linearStep(dir pad.Direction) {
	step := r.cfg.LinearStep
	delta := make([]float64, r.cfg.Robot.NumJoints)
	switch dir {
	case pad.PadUp:
		delta[0] = -step
	case pad.PadDown:
		delta[0] = step
	case pad.PadLeft:
		delta[1] = -step
	case pad.PadRight:
		delta[1] = step
	}

	ok, err := r.arm.TryMove(func() error { return r.arm.MoveLinearRel(delta) })
	if err != nil {
		r.logf("Connection aborted")
		return
	}
	r.mu.Lock()
	relative := r.mode == memory.Relative
	r.mu.Unlock()
	if ok && relative {
		r.append(memory.NewEntry(memory.Relative, memory.Linear, delta))
	}
}

func (r *Recorder) toggleEffector() {
	if r.effector == nil {
		return
	}
	writes := r.effector.Toggle()
	value := make([]float64, 0, 2*len(writes))
	for _, w := range writes {
		if err := r.arm.SetDigitalOut(w[0], w[1]); err != nil {
			r.logf("Effector action failed: %v", err)
			return
		}
		value = append(value, float64(w[0]), float64(w[1]))
	}
	r.append(memory.NewEntry(memory.EndEffector, r.effector.Motion(), value))
}

func (r *Recorder) append(e memory.Entry) {
	r.mu.Lock()
	r.mem = append(r.mem, e)
	r.mu.Unlock()
}

func (r *Recorder) indicateActiveJoint() {
	r.mu.Lock()
	active := r.activeJoint
	r.mu.Unlock()
	hue := 360 * float64(active) / float64(r.cfg.Robot.NumJoints)
	c := colorful.Hsv(hue, 1, 1)
	cr, cg, cb := c.RGB255()
	r.ctrl.SetColor(cr, cg, cb)
}

func (r *Recorder) indicateMode() {
	r.mu.Lock()
	relative := r.mode == memory.Relative
	r.mu.Unlock()
	r.ctrl.SetLED(relative)
}

func nonzero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return true
		}
	}
	return false
}

func sum(vec []float64) float64 {
	var s float64
	for _, v := range vec {
		s += v
	}
	return s
}
