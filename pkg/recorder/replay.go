package recorder

import (
	"fmt"

	"github.com/gwillem/teachbot/pkg/memory"
)

// Replay plays the full current memory back through the arm. On the first
// entry the arm rejects, that entry and every remaining one are marked
// invalid and the replay aborts; nothing past the failure point reaches the
// arm.
func (r *Recorder) Replay() {
	r.mu.Lock()
	entries := append([]memory.Entry(nil), r.mem...)
	r.mu.Unlock()

	r.logf("Replaying")
	failed := Play(r.arm, entries, r.AddFeed)
	if failed >= 0 {
		r.mu.Lock()
		for i := failed; i < len(r.mem); i++ {
			r.mem[i].Valid = false
		}
		r.mu.Unlock()
	}
	r.logf("Done replaying")
}

// Play executes entries strictly in order, waiting for each motion to finish
// before issuing the next. It returns the index of the first entry the arm
// rejected (or that hit a transport failure), or -1 when every entry played.
func Play(arm Arm, entries []memory.Entry, feed memory.FeedFunc) int {
	if feed == nil {
		feed = func(string, string) {}
	}
	for i, e := range entries {
		move, err := primitive(arm, e)
		if err != nil {
			feed(fmt.Sprintf("Cannot replay entry %d: %v", i, err), "Recorder")
			return i
		}
		ok, err := arm.TryMove(move)
		if err != nil {
			feed(fmt.Sprintf("Replay aborted at entry %d: %v", i, err), "Recorder")
			return i
		}
		if !ok {
			feed(fmt.Sprintf("Error replaying entry %d to %v", i, e.Value), "Recorder")
			return i
		}
	}
	return -1
}

// primitive selects the motion matching an entry's (category, motion) pair.
func primitive(arm Arm, e memory.Entry) (func() error, error) {
	switch e.Category {
	case memory.Absolute:
		if e.Motion == memory.Linear {
			return func() error { return arm.MoveLinear(e.Value) }, nil
		}
		return func() error { return arm.MoveJoint(e.Value) }, nil
	case memory.Relative:
		if e.Motion == memory.Linear {
			return func() error { return arm.MoveLinearRel(e.Value) }, nil
		}
		return func() error { return arm.MoveJointRel(e.Value) }, nil
	case memory.EndEffector:
		return func() error {
			for _, w := range e.PinLevels() {
				if err := arm.SetDigitalOut(w[0], w[1]); err != nil {
					return err
				}
			}
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown entry category %q", e.Category)
	}
}
