package recorder

import (
	"fmt"

	"github.com/gwillem/teachbot/pkg/memory"
)

// Effector is an optional end-of-arm tool driven through digital output
// pins. Toggle flips the tool's state and returns the (pin, level) writes
// realizing the transition; the recorder issues the writes and records them,
// so replay can reproduce the action without re-deriving pin logic.
type Effector interface {
	Motion() memory.Motion
	Toggle() [][2]int
}

// EffectorConfig selects the end effector and its output pins.
type EffectorConfig struct {
	Kind      string `json:"kind"` // "none", "gripper" or "suction_cup"
	PowerPin  int    `json:"power_pin"`
	ActionPin int    `json:"action_pin"`
}

// NewEffector builds the configured effector; kind "none" (or empty) means
// the arm carries no tool and returns nil.
func NewEffector(cfg EffectorConfig) (Effector, error) {
	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "gripper":
		return &gripper{power: cfg.PowerPin, grip: cfg.ActionPin}, nil
	case "suction_cup":
		return &suctionCup{power: cfg.PowerPin, suck: cfg.ActionPin}, nil
	default:
		return nil, fmt.Errorf("unknown effector kind %q", cfg.Kind)
	}
}

type gripper struct {
	power, grip int
	closed      bool
}

func (g *gripper) Motion() memory.Motion { return memory.Gripper }

func (g *gripper) Toggle() [][2]int {
	g.closed = !g.closed
	level := 0
	if g.closed {
		level = 1
	}
	return [][2]int{{g.power, 1}, {g.grip, level}}
}

type suctionCup struct {
	power, suck int
	on          bool
}

func (s *suctionCup) Motion() memory.Motion { return memory.SuctionCup }

func (s *suctionCup) Toggle() [][2]int {
	s.on = !s.on
	level := 0
	if s.on {
		level = 1
	}
	return [][2]int{{s.power, 1}, {s.suck, level}}
}
