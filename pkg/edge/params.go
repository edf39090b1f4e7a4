package edge

import (
	"errors"
	"fmt"
	"time"
)

// Configuration errors surfaced at startup.
var (
	ErrInvalidSensitivity = errors.New("sensitivity must satisfy 0 < n <= 4")
	ErrSpeedRange         = errors.New("speed outside actuator range")
	ErrInvalidTiming      = errors.New("durations must be positive")
	ErrDegenerateBaseline = errors.New("calibration produced a zero baseline")
	ErrNotCalibrated      = errors.New("runner is not calibrated")
	ErrSensorRead         = errors.New("sensor read failed")
	ErrActuation          = errors.New("actuation failed")
)

// Params are the behavioural constants of the follower.
type Params struct {
	BaseLeftSpeed  uint8
	BaseRightSpeed uint8
	MaxSpeed       uint8

	LeftSensitivity  Sensitivity
	RightSensitivity Sensitivity

	StepLength time.Duration // straight segment
	SmallTurn  time.Duration // directed or random turn
	BigTurn    time.Duration // turn with no edge information yet
	MemTime    time.Duration // how long an edge stays remembered

	TickInterval       time.Duration // sensing cadence including strobe settle
	StrobeSettle       time.Duration // indicator on before reading
	SamplesPerRead     int
	CalibrationSamples int

	StartupBlinks int
	ConfirmBlinks int
}

// DefaultParams returns the tuned defaults for a small two-motor robot.
func DefaultParams() Params {
	return Params{
		BaseLeftSpeed:      17,
		BaseRightSpeed:     17,
		MaxSpeed:           255,
		LeftSensitivity:    3,
		RightSensitivity:   3,
		StepLength:         300 * time.Millisecond,
		SmallTurn:          200 * time.Millisecond,
		BigTurn:            500 * time.Millisecond,
		MemTime:            1000 * time.Millisecond,
		TickInterval:       20 * time.Millisecond,
		StrobeSettle:       1 * time.Millisecond,
		SamplesPerRead:     4,
		CalibrationSamples: 16,
		StartupBlinks:      6,
		ConfirmBlinks:      4,
	}
}

// Validate checks the parameters against the classifier and actuator limits.
func (p Params) Validate() error {
	if !p.LeftSensitivity.Valid() {
		return fmt.Errorf("left sensitivity %v: %w", float64(p.LeftSensitivity), ErrInvalidSensitivity)
	}
	if !p.RightSensitivity.Valid() {
		return fmt.Errorf("right sensitivity %v: %w", float64(p.RightSensitivity), ErrInvalidSensitivity)
	}
	if p.MaxSpeed == 0 {
		return fmt.Errorf("max speed 0: %w", ErrSpeedRange)
	}
	if p.BaseLeftSpeed == 0 || p.BaseLeftSpeed > p.MaxSpeed {
		return fmt.Errorf("base left speed %d not in [1, %d]: %w", p.BaseLeftSpeed, p.MaxSpeed, ErrSpeedRange)
	}
	if p.BaseRightSpeed == 0 || p.BaseRightSpeed > p.MaxSpeed {
		return fmt.Errorf("base right speed %d not in [1, %d]: %w", p.BaseRightSpeed, p.MaxSpeed, ErrSpeedRange)
	}
	for _, t := range []struct {
		name string
		d    time.Duration
	}{
		{"step_length", p.StepLength},
		{"small_turn", p.SmallTurn},
		{"big_turn", p.BigTurn},
		{"mem_time", p.MemTime},
		{"tick_interval", p.TickInterval},
	} {
		if t.d <= 0 {
			return fmt.Errorf("%s %v: %w", t.name, t.d, ErrInvalidTiming)
		}
	}
	if p.StrobeSettle < 0 || p.StrobeSettle >= p.TickInterval {
		return fmt.Errorf("strobe_settle %v must be in [0, tick_interval): %w", p.StrobeSettle, ErrInvalidTiming)
	}
	if p.SamplesPerRead < 1 || p.CalibrationSamples < 1 {
		return fmt.Errorf("sample counts must be at least 1: %w", ErrInvalidTiming)
	}
	if p.StartupBlinks < 0 || p.ConfirmBlinks < 0 {
		return fmt.Errorf("blink counts must not be negative: %w", ErrInvalidTiming)
	}
	return nil
}
