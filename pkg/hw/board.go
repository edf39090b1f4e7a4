// Package hw binds the edge follower to a physical board through gobot
// drivers: PWM motor pins, analog reflectance sensors and a status LED.
package hw

import (
	"fmt"
	"time"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/aio"
	"gobot.io/x/gobot/drivers/gpio"

	"github.com/teslashibe/go-edgebot/pkg/edge"
)

// Board is what the follower needs from a gobot adaptor, e.g. firmata.
type Board interface {
	gobot.Connection
	gpio.DigitalWriter
	gpio.PwmWriter
	aio.AnalogReader
}

// Pins maps the follower wiring onto board pin names.
type Pins struct {
	LeftMotor    string
	RightMotor   string
	LeftSensor   string
	RightSensor  string
	LED          string
	LEDActiveLow bool
}

// Robot drives the wheels, reads the sensors and toggles the LED.
type Robot struct {
	leftMotor   *gpio.DirectPinDriver
	rightMotor  *gpio.DirectPinDriver
	led         *gpio.DirectPinDriver
	leftSensor  *aio.AnalogSensorDriver
	rightSensor *aio.AnalogSensorDriver

	ledActiveLow bool
}

var (
	_ edge.Actuator  = (*Robot)(nil)
	_ edge.Sensor    = (*Robot)(nil)
	_ edge.Indicator = (*Robot)(nil)
)

// New creates drivers for every pin on board.
func New(board Board, pins Pins) *Robot {
	return &Robot{
		leftMotor:    gpio.NewDirectPinDriver(board, pins.LeftMotor),
		rightMotor:   gpio.NewDirectPinDriver(board, pins.RightMotor),
		led:          gpio.NewDirectPinDriver(board, pins.LED),
		leftSensor:   aio.NewAnalogSensorDriver(board, pins.LeftSensor),
		rightSensor:  aio.NewAnalogSensorDriver(board, pins.RightSensor),
		ledActiveLow: pins.LEDActiveLow,
	}
}

// Devices returns the output drivers for gobot.NewRobot. The analog drivers
// are read on demand and stay out of gobot's polling loop.
func (r *Robot) Devices() []gobot.Device {
	return []gobot.Device{r.leftMotor, r.rightMotor, r.led}
}

// Hardware bundles the robot with a clock.
func (r *Robot) Hardware(clock edge.Clock) edge.Hardware {
	return edge.Hardware{Drive: r, Sensors: r, Indicator: r, Clock: clock}
}

// SetDrive writes the PWM level of both motors.
func (r *Robot) SetDrive(left, right uint8) error {
	if err := r.leftMotor.PwmWrite(left); err != nil {
		return fmt.Errorf("left motor: %w", err)
	}
	if err := r.rightMotor.PwmWrite(right); err != nil {
		return fmt.Errorf("right motor: %w", err)
	}
	return nil
}

// Stop sets both motors to zero.
func (r *Robot) Stop() error {
	return r.SetDrive(0, 0)
}

// ReadRaw reads one analog sensor.
func (r *Robot) ReadRaw(side edge.Side) (uint16, error) {
	d := r.leftSensor
	if side == edge.Right {
		d = r.rightSensor
	}
	v, err := d.Read()
	if err != nil {
		return 0, fmt.Errorf("%s sensor: %w", side, err)
	}
	switch {
	case v < 0:
		return 0, nil
	case v > 0xffff:
		return 0xffff, nil
	}
	return uint16(v), nil
}

// On lights the LED.
func (r *Robot) On() error {
	return r.led.DigitalWrite(r.level(true))
}

// Off darkens the LED.
func (r *Robot) Off() error {
	return r.led.DigitalWrite(r.level(false))
}

func (r *Robot) level(on bool) byte {
	if on != r.ledActiveLow {
		return 1
	}
	return 0
}

// SystemClock is the wall-clock timeline of a physical robot.
type SystemClock struct {
	start time.Time
}

// NewSystemClock starts a clock at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the monotonic time since the clock started.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// Sleep blocks for d.
func (c *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
