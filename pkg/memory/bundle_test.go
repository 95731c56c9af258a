package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rel(motion Motion, value ...float64) Entry {
	return NewEntry(Relative, motion, value)
}

func TestBundle_MergesSameDirection(t *testing.T) {
	entries := []Entry{
		rel(Joint, 1, 0, 0, 0),
		rel(Joint, 2, 0, 0, 0),
	}

	out := Bundle(entries)

	require.Len(t, out, 1)
	assert.Equal(t, []float64{3, 0, 0, 0}, out[0].Value)
	assert.True(t, out[0].Valid)
}

func TestBundle_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantLen int
	}{
		{
			name: "opposite signs never merge",
			entries: []Entry{
				rel(Joint, 1, 0, 0, 0),
				rel(Joint, -1, 0, 0, 0),
			},
			wantLen: 2,
		},
		{
			name: "different motion kinds never merge",
			entries: []Entry{
				rel(Joint, 1, 0, 0, 0),
				rel(Linear, 1, 0, 0, 0),
			},
			wantLen: 2,
		},
		{
			name: "absolute entries break a run",
			entries: []Entry{
				rel(Joint, 1, 0, 0, 0),
				NewEntry(Absolute, Joint, []float64{10, 20, 30, 40}),
				rel(Joint, 1, 0, 0, 0),
			},
			wantLen: 3,
		},
		{
			name: "zero components must match on both sides",
			entries: []Entry{
				rel(Joint, 1, 0, 0, 0),
				rel(Joint, 0, 1, 0, 0),
			},
			wantLen: 2,
		},
		{
			name: "long run collapses",
			entries: []Entry{
				rel(Joint, 0.5, 0.5, 0, 0),
				rel(Joint, 0.5, 0.5, 0, 0),
				rel(Joint, 0.5, 0.5, 0, 0),
				rel(Joint, 0.5, 0.5, 0, 0),
			},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Bundle(tt.entries)
			assert.Len(t, out, tt.wantLen)
		})
	}
}

func TestBundle_Idempotent(t *testing.T) {
	entries := []Entry{
		rel(Joint, 1, 0, 0, 0),
		rel(Joint, 2, 0, 0, 0),
		rel(Linear, 0, 5, 0, 0),
		rel(Linear, 0, 1, 0, 0),
		rel(Joint, -1, 0, 0, 0),
	}

	once := Bundle(entries)
	twice := Bundle(once)

	assert.Equal(t, once, twice)
}

func TestBundle_PropagatesInvalid(t *testing.T) {
	bad := rel(Joint, 1, 0, 0, 0)
	bad.Valid = false
	entries := []Entry{rel(Joint, 1, 0, 0, 0), bad}

	out := Bundle(entries)

	require.Len(t, out, 1)
	assert.False(t, out[0].Valid)
}

func TestBundle_DoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		rel(Joint, 1, 0, 0, 0),
		rel(Joint, 2, 0, 0, 0),
	}

	Bundle(entries)

	assert.Equal(t, []float64{1, 0, 0, 0}, entries[0].Value)
	assert.Equal(t, []float64{2, 0, 0, 0}, entries[1].Value)
}
