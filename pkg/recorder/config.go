package recorder

import (
	"encoding/json"
	"os"

	"github.com/gwillem/teachbot/pkg/robot"
)

const DefaultConfigFile = "teachbot.json"

// Config holds the full recorder configuration.
type Config struct {
	Robot robot.Config `json:"robot"`

	JoystickID int `json:"joystick_id"`
	PollHz     int `json:"poll_hz,omitempty"`

	// MaxSpeed is the per-joint delta (degrees) applied at full trigger or
	// stick deflection, per tick.
	MaxSpeed []float64 `json:"max_speed"`
	// LinearStep is the cartesian step (mm) for one directional-pad press.
	LinearStep float64 `json:"linear_step"`
	// JointBounds are the per-joint [min, max] angle limits enforced by
	// bounded movement.
	JointBounds [][2]float64 `json:"joint_bounds"`

	LeftStickJoint  int `json:"left_stick_joint"`
	RightStickJoint int `json:"right_stick_joint"`

	SavePath      string         `json:"save_path"`
	AutosaveStart bool           `json:"autosave_start"`
	Effector      EffectorConfig `json:"effector"`
}

// DefaultConfig returns the stock configuration for a 4-joint arm.
func DefaultConfig() Config {
	return Config{
		Robot: robot.Config{
			Addr:          "192.168.1.6",
			DashboardPort: 29999,
			MotionPort:    30003,
			NumJoints:     4,
			StartPose:     []float64{0, 0, 220, 0},
		},
		MaxSpeed:        []float64{5, 5, 5, 15},
		LinearStep:      5,
		JointBounds:     [][2]float64{{-80, 80}, {-125, 125}, {85, 245}, {-355, 355}},
		LeftStickJoint:  0,
		RightStickJoint: 1,
		SavePath:        "memory.json",
		AutosaveStart:   true,
	}
}

// LoadConfig loads configuration from the default config file.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file.
func LoadConfigFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to a specific file.
func (c Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists.
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
