package robot

import (
	"errors"
	"math"
	"testing"
)

func TestParseVector(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected []float64
		fails    bool
	}{
		{
			name:     "pose reply",
			reply:    "0,{250.5,-10.0,120.0,15.25},GetPose();",
			expected: []float64{250.5, -10.0, 120.0, 15.25},
		},
		{
			name:     "extra trailing fields are ignored",
			reply:    "0,{1,2,3,4,5,6},GetAngle();",
			expected: []float64{1, 2, 3, 4},
		},
		{
			name:  "empty body",
			reply: "0,{},GetAngle();",
			fails: true,
		},
		{
			name:  "too few numbers",
			reply: "0,{1,2},GetAngle();",
			fails: true,
		},
		{
			name:  "garbage body",
			reply: "0,{a,b,c,d},GetAngle();",
			fails: true,
		},
		{
			name:  "no braces",
			reply: "0,GetAngle();",
			fails: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, err := parseVector(tt.reply, 4)
			if tt.fails {
				if err == nil {
					t.Fatalf("parseVector(%q) succeeded, want error", tt.reply)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVector(%q): %v", tt.reply, err)
			}
			for i := range tt.expected {
				if math.Abs(vec[i]-tt.expected[i]) > 1e-9 {
					t.Errorf("component %d = %f, want %f", i, vec[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParseVector_EmptyBodyIsNoReading(t *testing.T) {
	_, err := parseVector("0,{},GetAngle();", 4)
	if !errors.Is(err, ErrNoReading) {
		t.Fatalf("err = %v, want ErrNoReading", err)
	}
}

func TestParseAlarmIDs(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected []int
	}{
		{"no alarms", "0,{[[],[],[],[],[]]},GetErrorID();", nil},
		{"single alarm", "0,{[[24],[],[],[],[]]},GetErrorID();", []int{24}},
		{"multiple subsystems", "0,{[[24],[36,37],[],[],[]]},GetErrorID();", []int{24, 36, 37}},
		{"non-positive codes dropped", "0,{[[0,-1],[22]]},GetErrorID();", []int{22}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := parseAlarmIDs(tt.reply)
			if err != nil {
				t.Fatalf("parseAlarmIDs(%q): %v", tt.reply, err)
			}
			if len(ids) != len(tt.expected) {
				t.Fatalf("got %v, want %v", ids, tt.expected)
			}
			for i := range ids {
				if ids[i] != tt.expected[i] {
					t.Errorf("got %v, want %v", ids, tt.expected)
				}
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	table := map[int]string{22: "Inverse kinematics error"}

	msgs := translate(table, []int{22, 99})
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0] != "Inverse kinematics error" {
		t.Errorf("msgs[0] = %q", msgs[0])
	}
	if msgs[1] != "Unknown error 99" {
		t.Errorf("msgs[1] = %q", msgs[1])
	}

	if translate(table, nil) != nil {
		t.Error("translate(nil ids) should return nil")
	}
}

func TestFormatArgs(t *testing.T) {
	got := formatArgs([]float64{1, -2.5, 0, 10.25})
	if got != "1,-2.5,0,10.25" {
		t.Errorf("formatArgs = %q", got)
	}
}

func TestDefaultAlarms(t *testing.T) {
	table := DefaultAlarms()
	if len(table) == 0 {
		t.Fatal("embedded alarm table is empty")
	}
	if _, ok := table[20]; !ok {
		t.Error("emergency stop code missing from default table")
	}
}
