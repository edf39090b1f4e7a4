// Package edge implements the edge-following control core of a two-wheeled
// robot: sensor classification, edge memory, the random-walk bit pool and the
// per-tick decision engine.
//
// Hardware is reached only through the small interfaces below, so the same
// engine drives a gobot board (pkg/hw) or the simulator (pkg/sim).
package edge

import "time"

// Actuator drives the two wheels. Levels are PWM duty values.
type Actuator interface {
	SetDrive(left, right uint8) error
	Stop() error
}

// Sensor reads one raw reflectance value. Higher means more reflective.
type Sensor interface {
	ReadRaw(side Side) (uint16, error)
}

// Indicator is the single status light.
type Indicator interface {
	On() error
	Off() error
}

// Clock is a monotonic timeline with a blocking sleep.
// Now returns the elapsed time since the clock's epoch.
type Clock interface {
	Now() time.Duration
	Sleep(d time.Duration)
}

// Hardware bundles the collaborators a Runner needs.
type Hardware struct {
	Drive     Actuator
	Sensors   Sensor
	Indicator Indicator
	Clock     Clock
}
