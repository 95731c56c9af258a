package recorder

import (
	"github.com/gwillem/teachbot/pkg/memory"
)

// Dashboard-facing surface: read-only snapshots plus a small set of command
// entry points. Commands are safe to call repeatedly but the caller must not
// pipeline them concurrently on the same arm.

// CurrentPose returns the last cached cartesian pose [x, y, z, r].
func (r *Recorder) CurrentPose() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.pose...)
}

// CurrentAngles returns the last cached joint angles [j1..j4].
func (r *Recorder) CurrentAngles() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.angles...)
}

// Memory returns a snapshot of the recorded entries.
func (r *Recorder) Memory() []memory.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]memory.Entry, len(r.mem))
	for i, e := range r.mem {
		out[i] = memory.NewEntry(e.Category, e.Motion, e.Value)
		out[i].Valid = e.Valid
	}
	return out
}

// Feed returns a snapshot of the session log, oldest first.
func (r *Recorder) Feed() []memory.FeedEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]memory.FeedEntry(nil), r.feedLog...)
}

// Mode returns the current recording mode.
func (r *Recorder) Mode() memory.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// ActiveJoint returns the joint currently driven by the triggers.
func (r *Recorder) ActiveJoint() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeJoint
}

// Alive reports whether the control loop is running.
func (r *Recorder) Alive() bool { return r.running.Load() }

// RobotAlive probes the robot link.
func (r *Recorder) RobotAlive() bool { return r.arm.Alive() }

// ControllerAlive probes the controller link.
func (r *Recorder) ControllerAlive() bool { return r.ctrl.Alive() }

// ClearError clears the arm's alarm state and re-enables it.
func (r *Recorder) ClearError() error { return r.arm.ClearError() }

// SaveMemory persists the current memory to path as JSON.
func (r *Recorder) SaveMemory(path string) error {
	if path == "" {
		path = r.cfg.SavePath
	}
	entries := r.Memory()
	if err := memory.Save(path, entries); err != nil {
		r.logf("Memory dump failed: %v", err)
		return err
	}
	r.logf("Dumped memory to %s", path)
	return nil
}

// LoadMemory replaces the current memory with the contents of path. A
// missing or unreadable file reports false and leaves memory untouched.
func (r *Recorder) LoadMemory(path string) bool {
	if path == "" {
		path = r.cfg.SavePath
	}
	entries, err := memory.Load(path)
	if err != nil {
		r.logf("Cannot load memory: %v", err)
		return false
	}
	r.mu.Lock()
	r.mem = entries
	r.mu.Unlock()
	r.logf("Loaded memory from %s", path)
	return true
}

// Bundle compacts adjacent same-direction relative moves in place.
func (r *Recorder) Bundle() {
	r.mu.Lock()
	before := len(r.mem)
	r.mem = memory.Bundle(r.mem)
	after := len(r.mem)
	r.mu.Unlock()
	r.logf("Bundled memory (%d -> %d entries)", before, after)
}

// SetJointSpeed forwards a joint speed percentage (1..100) to the arm.
func (r *Recorder) SetJointSpeed(pct float64) error { return r.arm.SetJointSpeed(pct) }

// SetLinearSpeed forwards a linear speed percentage (1..100) to the arm.
func (r *Recorder) SetLinearSpeed(pct float64) error { return r.arm.SetLinearSpeed(pct) }

// SetJointAccel forwards a joint acceleration percentage (1..100) to the arm.
func (r *Recorder) SetJointAccel(pct float64) error { return r.arm.SetJointAccel(pct) }

// SetLinearAccel forwards a linear acceleration percentage (1..100) to the arm.
func (r *Recorder) SetLinearAccel(pct float64) error { return r.arm.SetLinearAccel(pct) }
