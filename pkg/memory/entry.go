// Package memory defines the recorded-entry data model: the taught steps an
// operator records during a session, the operator-facing feed log, their JSON
// round trip, and the move-compaction pass ("bundle").
package memory

import "encoding/json"

// Category classifies what a recorded entry represents.
type Category string

const (
	Absolute    Category = "ABSOLUTE"
	Relative    Category = "RELATIVE"
	EndEffector Category = "END_EFFECTOR"
)

// Motion selects which primitive reproduces an entry during replay.
type Motion string

const (
	Joint      Motion = "JOINT"
	Linear     Motion = "LINEAR"
	Gripper    Motion = "GRIPPER"
	SuctionCup Motion = "SUCTION_CUP"
)

// Entry is one recorded step.
//
// Value holds [x, y, z, r] or [j1..j4] for ABSOLUTE/RELATIVE entries
// (cartesian vs joint interpretation follows Motion), and flattened
// (pin, level) pairs for END_EFFECTOR entries. Valid starts true and is
// cleared by replay when the arm rejects the entry or any earlier one.
type Entry struct {
	Category Category  `json:"Type"`
	Motion   Motion    `json:"Motion Type"`
	Value    []float64 `json:"Value"`
	Valid    bool      `json:"Valid"`
}

// NewEntry returns a valid entry holding a copy of value.
func NewEntry(cat Category, motion Motion, value []float64) Entry {
	v := make([]float64, len(value))
	copy(v, value)
	return Entry{Category: cat, Motion: motion, Value: v, Valid: true}
}

// UnmarshalJSON decodes an entry, defaulting Valid to true when absent.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	aux := struct {
		Valid *bool `json:"Valid"`
		*alias
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Valid = aux.Valid == nil || *aux.Valid
	return nil
}

// PinLevels interprets an END_EFFECTOR value as (pin, level) pairs.
// A trailing unpaired number is dropped.
func (e Entry) PinLevels() [][2]int {
	pairs := make([][2]int, 0, len(e.Value)/2)
	for i := 0; i+1 < len(e.Value); i += 2 {
		pairs = append(pairs, [2]int{int(e.Value[i]), int(e.Value[i+1])})
	}
	return pairs
}
