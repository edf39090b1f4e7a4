package config

import (
	"github.com/knadh/koanf/parsers/yaml"
)

// Dump renders the configuration as YAML that Load accepts.
func (c *Config) Dump() ([]byte, error) {
	return yaml.Parser().Marshal(c.toMap())
}

func (c *Config) toMap() map[string]any {
	r, h, s, w := c.Robot, c.Hardware, c.Sim, c.Web
	return map[string]any{
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"robot": map[string]any{
			"base_left_speed":     r.BaseLeftSpeed,
			"base_right_speed":    r.BaseRightSpeed,
			"max_speed":           r.MaxSpeed,
			"left_sensitivity":    r.LeftSensitivity,
			"right_sensitivity":   r.RightSensitivity,
			"step_length":         r.StepLength.String(),
			"small_turn":          r.SmallTurn.String(),
			"big_turn":            r.BigTurn.String(),
			"mem_time":            r.MemTime.String(),
			"tick_interval":       r.TickInterval.String(),
			"strobe_settle":       r.StrobeSettle.String(),
			"samples_per_read":    r.SamplesPerRead,
			"calibration_samples": r.CalibrationSamples,
			"startup_blinks":      r.StartupBlinks,
			"confirm_blinks":      r.ConfirmBlinks,
		},
		"hardware": map[string]any{
			"port":             h.Port,
			"left_motor_pin":   h.LeftMotorPin,
			"right_motor_pin":  h.RightMotorPin,
			"left_sensor_pin":  h.LeftSensorPin,
			"right_sensor_pin": h.RightSensorPin,
			"led_pin":          h.LEDPin,
			"led_active_low":   h.LEDActiveLow,
		},
		"sim": map[string]any{
			"field":          s.Field,
			"radius":         s.Radius,
			"light":          s.Light,
			"dark":           s.Dark,
			"noise":          s.Noise,
			"adc_max":        s.ADCMax,
			"wheel_base":     s.WheelBase,
			"sensor_forward": s.SensorForward,
			"sensor_offset":  s.SensorOffset,
			"speed_scale":    s.SpeedScale,
			"start_x":        s.StartX,
			"start_y":        s.StartY,
			"start_heading":  s.StartHeading,
			"sub_step":       s.SubStep.String(),
			"duration":       s.Duration.String(),
			"seed":           s.Seed,
			"realtime":       s.Realtime,
		},
		"web": map[string]any{
			"enabled":      w.Enabled,
			"addr":         w.Addr,
			"telemetry_hz": w.TelemetryHz,
		},
	}
}
