package memory

// Bundle merges runs of adjacent RELATIVE entries that share a motion kind
// and move every axis in the same direction, summing their values. Long
// sequences of small stick-driven increments collapse into a few large moves
// with the same net displacement. The pass is a single left-to-right sweep
// and is idempotent; input entries are not mutated.
func Bundle(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.Value = append([]float64(nil), e.Value...) // never mutate the input
		if n := len(out); n > 0 && mergeable(out[n-1], e) {
			prev := &out[n-1]
			for i := range prev.Value {
				prev.Value[i] += e.Value[i]
			}
			prev.Valid = prev.Valid && e.Valid
			continue
		}
		out = append(out, e)
	}
	return out
}

func mergeable(a, b Entry) bool {
	if a.Category != Relative || b.Category != Relative {
		return false
	}
	if a.Motion != b.Motion || len(a.Value) != len(b.Value) {
		return false
	}
	for i := range a.Value {
		if sign(a.Value[i]) != sign(b.Value[i]) {
			return false
		}
	}
	return true
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
