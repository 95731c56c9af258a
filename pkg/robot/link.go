// Package robot owns the TCP link to the arm: the command/telemetry channel,
// the motion channel, motion primitives, alarm decoding, and reconnection.
//
// The arm speaks a line-oriented text protocol. Queries on the command
// channel return strings of the form "<code>,{<csv>},<Method>();"; the
// motion channel accepts one command at a time and exposes an explicit
// Sync() call that blocks until the queued motion has finished.
package robot

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gwillem/teachbot/pkg/memory"
)

const (
	dialTimeout = 3 * time.Second
	settleDelay = 500 * time.Millisecond
)

var aliveTimeout = 2 * time.Second

// Config holds the connection settings for one arm.
type Config struct {
	Addr          string    `json:"addr"`
	DashboardPort int       `json:"dashboard_port"`
	MotionPort    int       `json:"motion_port"`
	NumJoints     int       `json:"num_joints"`
	StartPose     []float64 `json:"start_pose,omitempty"`

	// Alarms translates arm alarm codes to messages. Nil selects the
	// embedded default table.
	Alarms map[int]string `json:"-"`
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.DashboardPort == 0 {
		cfg.DashboardPort = 29999
	}
	if cfg.MotionPort == 0 {
		cfg.MotionPort = 30003
	}
	if cfg.NumJoints == 0 {
		cfg.NumJoints = 4
	}
	if cfg.Alarms == nil {
		cfg.Alarms = DefaultAlarms()
	}
	return cfg
}

// Link is a serialized handle on the arm's two channels. Every call into the
// transport holds one lock, so a telemetry poll can never interleave with an
// in-flight motion command or another poll.
type Link struct {
	mu sync.Mutex

	cfg  Config
	feed memory.FeedFunc
	id   string

	dash    net.Conn
	dashR   *bufio.Reader
	motion  net.Conn
	motionR *bufio.Reader
}

// Dial opens both channels and runs the enable sequence (clear error, settle,
// enable, full joint speed, optional move to the configured start pose).
func Dial(cfg Config, feed memory.FeedFunc) (*Link, error) {
	if feed == nil {
		feed = func(string, string) {}
	}
	cfg = cfg.withDefaults()

	id := cfg.Addr
	if parts := strings.Split(cfg.Addr, "."); len(parts) == 4 {
		id = parts[1]
	}

	l := &Link{cfg: cfg, feed: feed, id: id}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.connect(); err != nil {
		return nil, err
	}
	if err := l.enable(); err != nil {
		l.disconnect()
		return nil, err
	}
	return l, nil
}

func (l *Link) log(msg string) {
	l.feed(msg, "Robot "+l.id)
}

// connect opens both TCP channels. Callers hold l.mu.
func (l *Link) connect() error {
	l.log("Connecting")

	dash, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", l.cfg.Addr, l.cfg.DashboardPort), dialTimeout)
	if err != nil {
		l.log("Connection failure")
		return fmt.Errorf("dial dashboard channel: %w", err)
	}
	motion, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", l.cfg.Addr, l.cfg.MotionPort), dialTimeout)
	if err != nil {
		dash.Close()
		l.log("Connection failure")
		return fmt.Errorf("dial motion channel: %w", err)
	}

	l.dash, l.dashR = dash, bufio.NewReader(dash)
	l.motion, l.motionR = motion, bufio.NewReader(motion)
	l.log("Connection successful")
	return nil
}

// enable runs the arm's enable sequence. Callers hold l.mu.
func (l *Link) enable() error {
	if _, err := l.request(l.dash, l.dashR, "ClearError()"); err != nil {
		return err
	}
	time.Sleep(settleDelay)
	if _, err := l.request(l.dash, l.dashR, "EnableRobot()"); err != nil {
		return err
	}
	if _, err := l.request(l.dash, l.dashR, "SpeedJ(100)"); err != nil {
		return err
	}
	if len(l.cfg.StartPose) > 0 {
		if err := l.moveSync("MovJ", l.cfg.StartPose); err != nil {
			return err
		}
	}
	return nil
}

func (l *Link) disconnect() {
	if l.dash != nil {
		l.dash.Close()
	}
	if l.motion != nil {
		l.motion.Close()
	}
	l.dash, l.dashR, l.motion, l.motionR = nil, nil, nil, nil
}

// request writes one command and reads its ';'-terminated reply. Callers
// hold l.mu.
func (l *Link) request(conn net.Conn, r *bufio.Reader, cmd string) (string, error) {
	if conn == nil {
		return "", fmt.Errorf("send %s: link closed", cmd)
	}
	if _, err := conn.Write([]byte(cmd)); err != nil {
		return "", fmt.Errorf("send %s: %w", cmd, err)
	}
	reply, err := r.ReadString(';')
	if err != nil {
		return "", fmt.Errorf("reply to %s: %w", cmd, err)
	}
	return reply, nil
}

func (l *Link) dashboard(format string, args ...any) (string, error) {
	return l.request(l.dash, l.dashR, fmt.Sprintf(format, args...))
}

// moveSync sends one motion command and blocks on Sync() until the arm
// reports completion. Callers hold l.mu, so nothing interleaves between the
// command and its sync.
func (l *Link) moveSync(primitive string, values []float64) error {
	if _, err := l.request(l.motion, l.motionR, fmt.Sprintf("%s(%s)", primitive, formatArgs(values))); err != nil {
		return err
	}
	_, err := l.request(l.motion, l.motionR, "Sync()")
	return err
}

// MoveJoint moves to an absolute pose using joint interpolation.
func (l *Link) MoveJoint(pose []float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveSync("MovJ", pose)
}

// MoveLinear moves to an absolute pose along a straight line.
func (l *Link) MoveLinear(pose []float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveSync("MovL", pose)
}

// MoveJointRel offsets the current joint angles by delta.
func (l *Link) MoveJointRel(delta []float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveSync("RelMovJ", delta)
}

// MoveLinearRel offsets the current pose by delta along a straight line.
func (l *Link) MoveLinearRel(delta []float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveSync("RelMovL", delta)
}

// Pose returns the current cartesian pose [x, y, z, r]. A parse or transport
// failure is an error; there is no zero-vector sentinel.
func (l *Link) Pose() ([]float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	reply, err := l.dashboard("GetPose()")
	if err != nil {
		return nil, err
	}
	return parseVector(reply, l.cfg.NumJoints)
}

// Angles returns the current joint angles [j1..j4].
func (l *Link) Angles() ([]float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	reply, err := l.dashboard("GetAngle()")
	if err != nil {
		return nil, err
	}
	return parseVector(reply, l.cfg.NumJoints)
}

// ErrorCodes polls the arm's alarm register and returns the active alarms as
// human-readable messages, or nil when none are active.
func (l *Link) ErrorCodes() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCodes()
}

func (l *Link) errorCodes() ([]string, error) {
	reply, err := l.dashboard("GetErrorID()")
	if err != nil {
		return nil, err
	}
	ids, err := parseAlarmIDs(reply)
	if err != nil {
		return nil, err
	}
	return translate(l.cfg.Alarms, ids), nil
}

// ClearError clears the arm's alarm state and re-enables it.
func (l *Link) ClearError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clearError()
}

func (l *Link) clearError() error {
	if msgs, err := l.errorCodes(); err == nil && len(msgs) > 0 {
		l.log("Clearing error (" + strings.Join(msgs, "; ") + ")")
	} else {
		l.log("Clearing error")
	}
	if _, err := l.dashboard("ClearError()"); err != nil {
		return err
	}
	time.Sleep(settleDelay)
	_, err := l.dashboard("EnableRobot()")
	return err
}

// TryMove runs one motion primitive and immediately polls the alarm
// register. An arm-side rejection is not an error: the alarm is cleared, the
// arm is re-enabled, and TryMove reports false. This is the canonical "did
// this move actually succeed" contract. Transport failures propagate.
func (l *Link) TryMove(move func() error) (bool, error) {
	if err := move(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs, err := l.errorCodes()
	if err != nil {
		return false, err
	}
	if len(msgs) > 0 {
		l.log("Invalid movement [" + strings.Join(msgs, "; ") + "]")
		if err := l.clearError(); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// SetDigitalOut drives one digital output pin; end effectors hang off these.
func (l *Link) SetDigitalOut(pin, level int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.dashboard("DO(%d,%d)", pin, level)
	return err
}

// SetJointSpeed forwards a joint speed percentage. The value is truncated to
// an integer; the arm rejects out-of-range values itself.
func (l *Link) SetJointSpeed(pct float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.dashboard("SpeedJ(%d)", int(pct))
	return err
}

// SetLinearSpeed forwards a linear speed percentage.
func (l *Link) SetLinearSpeed(pct float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.dashboard("SpeedL(%d)", int(pct))
	return err
}

// SetJointAccel forwards a joint acceleration percentage.
func (l *Link) SetJointAccel(pct float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.dashboard("AccJ(%d)", int(pct))
	return err
}

// SetLinearAccel forwards a linear acceleration percentage.
func (l *Link) SetLinearAccel(pct float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.dashboard("AccL(%d)", int(pct))
	return err
}

// Alive probes the dashboard channel with a cheap query. A probe that times
// out drops both channels: its reply could still arrive later and would be
// read as the answer to the next query, desyncing the stream. Callers see
// clean "link closed" errors until Reconnect.
func (l *Link) Alive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dash == nil {
		return false
	}
	l.dash.SetReadDeadline(time.Now().Add(aliveTimeout))
	if _, err := l.dashboard("RobotMode()"); err != nil {
		l.disconnect()
		return false
	}
	l.dash.SetReadDeadline(time.Time{})
	return true
}

// Reconnect closes both channels, waits a settle interval, reopens them, and
// re-runs the enable sequence. It fails only when the transport itself
// cannot be opened.
func (l *Link) Reconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log("Connection lost")
	l.log("Trying to reconnect")
	l.disconnect()
	time.Sleep(settleDelay)
	if err := l.connect(); err != nil {
		return err
	}
	return l.enable()
}

// Close releases both channels. Safe to call more than once.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disconnect()
	return nil
}
