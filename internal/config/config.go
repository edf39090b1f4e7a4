// Package config provides configuration for go-edgebot commands.
//
// Values come from hardcoded defaults (edge.DefaultParams), then an
// optional YAML file, then EDGEBOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-edgebot/pkg/edge"
)

// Config holds the complete go-edgebot configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Robot    RobotConfig    `koanf:"robot"`
	Hardware HardwareConfig `koanf:"hardware"`
	Sim      SimConfig      `koanf:"sim"`
	Web      WebConfig      `koanf:"web"`
}

// LogConfig selects log level and handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text or json
}

// RobotConfig holds the follower behaviour. Speeds are PWM units.
type RobotConfig struct {
	BaseLeftSpeed  int `koanf:"base_left_speed"`
	BaseRightSpeed int `koanf:"base_right_speed"`
	MaxSpeed       int `koanf:"max_speed"`

	// Numerators over 4; a side is white above baseline*n/4.
	LeftSensitivity  float64 `koanf:"left_sensitivity"`
	RightSensitivity float64 `koanf:"right_sensitivity"`

	StepLength time.Duration `koanf:"step_length"`
	SmallTurn  time.Duration `koanf:"small_turn"`
	BigTurn    time.Duration `koanf:"big_turn"`
	MemTime    time.Duration `koanf:"mem_time"`

	TickInterval       time.Duration `koanf:"tick_interval"`
	StrobeSettle       time.Duration `koanf:"strobe_settle"`
	SamplesPerRead     int           `koanf:"samples_per_read"`
	CalibrationSamples int           `koanf:"calibration_samples"`
	StartupBlinks      int           `koanf:"startup_blinks"`
	ConfirmBlinks      int           `koanf:"confirm_blinks"`
}

// HardwareConfig describes a firmata board wiring.
type HardwareConfig struct {
	Port           string `koanf:"port"`
	LeftMotorPin   string `koanf:"left_motor_pin"`
	RightMotorPin  string `koanf:"right_motor_pin"`
	LeftSensorPin  string `koanf:"left_sensor_pin"`
	RightSensorPin string `koanf:"right_sensor_pin"`
	LEDPin         string `koanf:"led_pin"`
	LEDActiveLow   bool   `koanf:"led_active_low"`
}

// SimConfig describes the simulated arena and robot body. Lengths in meters.
type SimConfig struct {
	Field         string        `koanf:"field"` // disc or half_plane
	Radius        float64       `koanf:"radius"`
	Light         float64       `koanf:"light"` // reflectance 0..1
	Dark          float64       `koanf:"dark"`
	Noise         float64       `koanf:"noise"` // std dev, reflectance units
	ADCMax        int           `koanf:"adc_max"`
	WheelBase     float64       `koanf:"wheel_base"`
	SensorForward float64       `koanf:"sensor_forward"`
	SensorOffset  float64       `koanf:"sensor_offset"` // lateral, each side
	SpeedScale    float64       `koanf:"speed_scale"`   // m/s per PWM unit
	StartX        float64       `koanf:"start_x"`
	StartY        float64       `koanf:"start_y"`
	StartHeading  float64       `koanf:"start_heading"` // radians
	SubStep       time.Duration `koanf:"sub_step"`
	Duration      time.Duration `koanf:"duration"`
	Seed          uint64        `koanf:"seed"`
	Realtime      bool          `koanf:"realtime"`
}

// WebConfig controls the telemetry dashboard.
type WebConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Addr        string  `koanf:"addr"`
	TelemetryHz float64 `koanf:"telemetry_hz"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	p := edge.DefaultParams()
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Robot: RobotConfig{
			BaseLeftSpeed:      int(p.BaseLeftSpeed),
			BaseRightSpeed:     int(p.BaseRightSpeed),
			MaxSpeed:           int(p.MaxSpeed),
			LeftSensitivity:    float64(p.LeftSensitivity),
			RightSensitivity:   float64(p.RightSensitivity),
			StepLength:         p.StepLength,
			SmallTurn:          p.SmallTurn,
			BigTurn:            p.BigTurn,
			MemTime:            p.MemTime,
			TickInterval:       p.TickInterval,
			StrobeSettle:       p.StrobeSettle,
			SamplesPerRead:     p.SamplesPerRead,
			CalibrationSamples: p.CalibrationSamples,
			StartupBlinks:      p.StartupBlinks,
			ConfirmBlinks:      p.ConfirmBlinks,
		},
		Hardware: HardwareConfig{
			Port:           "/dev/ttyACM0",
			LeftMotorPin:   "5",
			RightMotorPin:  "6",
			LeftSensorPin:  "0",
			RightSensorPin: "1",
			LEDPin:         "13",
		},
		Sim: SimConfig{
			Field:         "disc",
			Radius:        0.5,
			Light:         0.85,
			Dark:          0.15,
			Noise:         0.02,
			ADCMax:        1023,
			WheelBase:     0.08,
			SensorForward: 0.04,
			SensorOffset:  0.012,
			SpeedScale:    0.006,
			StartX:        -0.56,
			StartY:        0,
			StartHeading:  0,
			SubStep:       2 * time.Millisecond,
			Duration:      60 * time.Second,
			Seed:          42,
		},
		Web: WebConfig{
			Addr:        ":8080",
			TelemetryHz: 10,
		},
	}
}

// RobotParams converts the robot section into engine parameters.
// Call Validate first; out-of-range speeds are truncated here.
func (c *Config) RobotParams() edge.Params {
	r := c.Robot
	return edge.Params{
		BaseLeftSpeed:      uint8(r.BaseLeftSpeed),
		BaseRightSpeed:     uint8(r.BaseRightSpeed),
		MaxSpeed:           uint8(r.MaxSpeed),
		LeftSensitivity:    edge.Sensitivity(r.LeftSensitivity),
		RightSensitivity:   edge.Sensitivity(r.RightSensitivity),
		StepLength:         r.StepLength,
		SmallTurn:          r.SmallTurn,
		BigTurn:            r.BigTurn,
		MemTime:            r.MemTime,
		TickInterval:       r.TickInterval,
		StrobeSettle:       r.StrobeSettle,
		SamplesPerRead:     r.SamplesPerRead,
		CalibrationSamples: r.CalibrationSamples,
		StartupBlinks:      r.StartupBlinks,
		ConfirmBlinks:      r.ConfirmBlinks,
	}
}

// Validate checks the configuration for startup errors.
func (c *Config) Validate() error {
	r := c.Robot
	if r.MaxSpeed < 1 || r.MaxSpeed > 255 {
		return fmt.Errorf("robot.max_speed %d not in [1, 255]: %w", r.MaxSpeed, edge.ErrSpeedRange)
	}
	if r.BaseLeftSpeed < 1 || r.BaseLeftSpeed > r.MaxSpeed {
		return fmt.Errorf("robot.base_left_speed %d not in [1, %d]: %w", r.BaseLeftSpeed, r.MaxSpeed, edge.ErrSpeedRange)
	}
	if r.BaseRightSpeed < 1 || r.BaseRightSpeed > r.MaxSpeed {
		return fmt.Errorf("robot.base_right_speed %d not in [1, %d]: %w", r.BaseRightSpeed, r.MaxSpeed, edge.ErrSpeedRange)
	}
	if err := c.RobotParams().Validate(); err != nil {
		return fmt.Errorf("robot: %w", err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}

	s := c.Sim
	switch s.Field {
	case "disc", "half_plane":
	default:
		return fmt.Errorf("sim.field %q must be disc or half_plane", s.Field)
	}
	if s.Field == "disc" && s.Radius <= 0 {
		return errors.New("sim.radius must be positive")
	}
	if s.Light <= s.Dark || s.Dark < 0 || s.Light > 1 {
		return fmt.Errorf("sim reflectance must satisfy 0 <= dark < light <= 1 (got %v, %v)", s.Dark, s.Light)
	}
	if s.ADCMax < 1 || s.ADCMax > 65535 {
		return fmt.Errorf("sim.adc_max %d not in [1, 65535]", s.ADCMax)
	}
	if s.WheelBase <= 0 || s.SpeedScale <= 0 || s.SubStep <= 0 {
		return errors.New("sim.wheel_base, sim.speed_scale and sim.sub_step must be positive")
	}
	if s.Duration <= 0 {
		return fmt.Errorf("sim.duration %v must be positive", s.Duration)
	}

	if c.Web.Enabled && c.Web.Addr == "" {
		return errors.New("web.addr required when web is enabled")
	}
	if c.Web.TelemetryHz <= 0 {
		return errors.New("web.telemetry_hz must be positive")
	}
	return nil
}
