package main

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/teachbot/pkg/pad"
	"github.com/gwillem/teachbot/pkg/recorder"
)

type stubArm struct {
	speedErr error
}

func (s *stubArm) Pose() ([]float64, error)        { return []float64{250, 0, 120, 15}, nil }
func (s *stubArm) Angles() ([]float64, error)      { return []float64{0, 0, 100, 0}, nil }
func (s *stubArm) MoveJoint([]float64) error       { return nil }
func (s *stubArm) MoveLinear([]float64) error      { return nil }
func (s *stubArm) MoveJointRel([]float64) error    { return nil }
func (s *stubArm) MoveLinearRel([]float64) error   { return nil }
func (s *stubArm) ErrorCodes() ([]string, error)   { return nil, nil }
func (s *stubArm) ClearError() error               { return nil }
func (s *stubArm) SetDigitalOut(int, int) error    { return nil }
func (s *stubArm) SetJointSpeed(float64) error     { return s.speedErr }
func (s *stubArm) SetLinearSpeed(float64) error    { return nil }
func (s *stubArm) SetJointAccel(float64) error     { return nil }
func (s *stubArm) SetLinearAccel(float64) error    { return nil }
func (s *stubArm) Alive() bool                     { return true }
func (s *stubArm) Reconnect() error                { return nil }
func (s *stubArm) Close() error                    { return nil }

func (s *stubArm) TryMove(move func() error) (bool, error) {
	return true, move()
}

type stubCtrl struct{}

func (s *stubCtrl) Apply(pad.Handler)        {}
func (s *stubCtrl) SetColor(r, g, b uint8)   {}
func (s *stubCtrl) SetLED(on bool)           {}
func (s *stubCtrl) Alive() bool              { return true }
func (s *stubCtrl) Reconnect() error         { return nil }
func (s *stubCtrl) Close() error             { return nil }

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestDashboard_SpeedKeyFailureLandsInFeed(t *testing.T) {
	arm := &stubArm{speedErr: errors.New("connection reset")}
	rec, err := recorder.New(recorder.DefaultConfig(), arm, &stubCtrl{})
	require.NoError(t, err)

	m := newDashboardModel(rec, "memory.json")
	m.handleKey(keyMsg('-'))

	feed := rec.Feed()
	require.NotEmpty(t, feed)
	assert.Contains(t, feed[len(feed)-1].Message, "Set speed failed")
	assert.Equal(t, "Dashboard", feed[len(feed)-1].Source)
}

func TestDashboard_SpeedKeysClamp(t *testing.T) {
	rec, err := recorder.New(recorder.DefaultConfig(), &stubArm{}, &stubCtrl{})
	require.NoError(t, err)

	m := newDashboardModel(rec, "memory.json")
	model, _ := m.handleKey(keyMsg('+'))
	assert.Equal(t, 100, model.(dashboardModel).jointSpeed, "speed tops out at 100")

	model, _ = m.handleKey(keyMsg('-'))
	assert.Equal(t, 90, model.(dashboardModel).jointSpeed)
}
