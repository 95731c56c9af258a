package robot

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeArm is a scripted TCP arm: it answers dashboard queries with canned
// telemetry and acknowledges everything else, recording every command it
// receives. Reconnects are served by accepting fresh connections.
type fakeArm struct {
	t        *testing.T
	dashLn   net.Listener
	motionLn net.Listener

	mu        sync.Mutex
	alarmBody string
	received  []string
	mute      bool
}

func newFakeArm(t *testing.T) *fakeArm {
	t.Helper()
	dashLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	motionLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeArm{t: t, dashLn: dashLn, motionLn: motionLn, alarmBody: "[[],[]]"}
	go f.acceptLoop(dashLn)
	go f.acceptLoop(motionLn)
	t.Cleanup(func() {
		dashLn.Close()
		motionLn.Close()
	})
	return f
}

func (f *fakeArm) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go f.serve(conn)
	}
}

func (f *fakeArm) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		cmd, err := r.ReadString(')')
		if err != nil {
			return
		}
		f.mu.Lock()
		f.received = append(f.received, cmd)
		alarms := f.alarmBody
		mute := f.mute
		f.mu.Unlock()

		if mute {
			continue
		}

		var reply string
		switch {
		case cmd == "GetPose()":
			reply = "0,{250.5,0,120,15.25},GetPose();"
		case cmd == "GetAngle()":
			reply = "0,{10,20,100,0},GetAngle();"
		case cmd == "GetErrorID()":
			reply = fmt.Sprintf("0,{%s},GetErrorID();", alarms)
		default:
			name := cmd[:strings.IndexByte(cmd, '(')]
			reply = fmt.Sprintf("0,{},%s();", name)
		}
		if _, err := conn.Write([]byte(reply)); err != nil {
			return
		}
	}
}

func (f *fakeArm) setAlarms(body string) {
	f.mu.Lock()
	f.alarmBody = body
	f.mu.Unlock()
}

func (f *fakeArm) setMute(mute bool) {
	f.mu.Lock()
	f.mute = mute
	f.mu.Unlock()
}

func (f *fakeArm) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.received...)
}

func (f *fakeArm) config() Config {
	return Config{
		Addr:          "127.0.0.1",
		DashboardPort: f.dashLn.Addr().(*net.TCPAddr).Port,
		MotionPort:    f.motionLn.Addr().(*net.TCPAddr).Port,
		NumJoints:     4,
	}
}

func dialFake(t *testing.T, f *fakeArm) *Link {
	t.Helper()
	l, err := Dial(f.config(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestDial_RunsEnableSequence(t *testing.T) {
	f := newFakeArm(t)
	dialFake(t, f)

	cmds := f.commands()
	assert.Contains(t, cmds, "ClearError()")
	assert.Contains(t, cmds, "EnableRobot()")
	assert.Contains(t, cmds, "SpeedJ(100)")
}

func TestTelemetry(t *testing.T) {
	f := newFakeArm(t)
	l := dialFake(t, f)

	pose, err := l.Pose()
	require.NoError(t, err)
	assert.Equal(t, []float64{250.5, 0, 120, 15.25}, pose)

	angles, err := l.Angles()
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 100, 0}, angles)
}

func TestErrorCodes(t *testing.T) {
	f := newFakeArm(t)
	l := dialFake(t, f)

	msgs, err := l.ErrorCodes()
	require.NoError(t, err)
	assert.Empty(t, msgs)

	f.setAlarms("[[24],[99]]")
	msgs, err = l.ErrorCodes()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Planning alarm: joint 1 exceeds positive limit", msgs[0])
	assert.Equal(t, "Unknown error 99", msgs[1])
}

func TestMoveJoint_CommandThenSync(t *testing.T) {
	f := newFakeArm(t)
	l := dialFake(t, f)

	require.NoError(t, l.MoveJointRel([]float64{1, -2.5, 0, 4}))

	cmds := f.commands()
	var idx int
	for i, cmd := range cmds {
		if cmd == "RelMovJ(1,-2.5,0,4)" {
			idx = i
		}
	}
	require.NotZero(t, idx, "motion command not received")
	assert.Equal(t, "Sync()", cmds[idx+1], "sync must directly follow the motion command")
}

func TestTryMove(t *testing.T) {
	f := newFakeArm(t)
	l := dialFake(t, f)

	ok, err := l.TryMove(func() error { return l.MoveJointRel([]float64{1, 0, 0, 0}) })
	require.NoError(t, err)
	assert.True(t, ok)

	// Arm rejects the next move: TryMove clears the alarm and reports false.
	f.setAlarms("[[49]]")
	before := len(f.commands())
	ok, err = l.TryMove(func() error { return l.MoveJointRel([]float64{500, 0, 0, 0}) })
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, f.commands()[before:], "ClearError()")
}

func TestSpeedSetters_TruncateToInt(t *testing.T) {
	f := newFakeArm(t)
	l := dialFake(t, f)

	require.NoError(t, l.SetJointSpeed(42.9))
	require.NoError(t, l.SetLinearSpeed(7.2))
	require.NoError(t, l.SetJointAccel(99.99))
	require.NoError(t, l.SetLinearAccel(1))

	cmds := f.commands()
	assert.Contains(t, cmds, "SpeedJ(42)")
	assert.Contains(t, cmds, "SpeedL(7)")
	assert.Contains(t, cmds, "AccJ(99)")
	assert.Contains(t, cmds, "AccL(1)")
}

func TestReconnect(t *testing.T) {
	f := newFakeArm(t)
	l := dialFake(t, f)

	require.NoError(t, l.Reconnect())

	// The reconnected channels work and the enable sequence ran again.
	pose, err := l.Pose()
	require.NoError(t, err)
	assert.Len(t, pose, 4)

	var enables int
	for _, cmd := range f.commands() {
		if cmd == "EnableRobot()" {
			enables++
		}
	}
	assert.GreaterOrEqual(t, enables, 2)
}

func TestAlive(t *testing.T) {
	f := newFakeArm(t)
	l := dialFake(t, f)

	assert.True(t, l.Alive())
	require.NoError(t, l.Close())
	assert.False(t, l.Alive())
}

func TestAlive_TimeoutDropsChannel(t *testing.T) {
	oldTimeout := aliveTimeout
	aliveTimeout = 50 * time.Millisecond
	defer func() { aliveTimeout = oldTimeout }()

	f := newFakeArm(t)
	l := dialFake(t, f)

	f.setMute(true)
	assert.False(t, l.Alive())

	// The stale probe reply must never be read as the answer to a later
	// query: the channel is gone until a reconnect.
	f.setMute(false)
	_, err := l.Pose()
	assert.Error(t, err)

	require.NoError(t, l.Reconnect())
	pose, err := l.Pose()
	require.NoError(t, err)
	assert.Equal(t, []float64{250.5, 0, 120, 15.25}, pose)
}
