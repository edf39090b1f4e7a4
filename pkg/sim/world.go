package sim

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/teslashibe/go-edgebot/pkg/edge"
)

// Config describes the robot body and its surroundings. Lengths are meters.
type Config struct {
	Field         Field
	Noise         float64 // std dev of read noise, reflectance units
	ADCMax        uint16  // full-scale raw reading
	WheelBase     float64
	SensorForward float64 // sensor distance ahead of the axle
	SensorOffset  float64 // lateral sensor distance from the centre line
	SpeedScale    float64 // m/s per drive level
	Start         Pose
	SubStep       time.Duration // kinematics integration step
	Seed          uint64
	Realtime      bool // also sleep on the wall clock
}

// Pose is the robot position and heading (radians, CCW from +x).
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// World is a simulated robot in an arena.
type World struct {
	cfg Config
	rng *rand.Rand

	mu       sync.Mutex
	now      time.Duration
	pose     Pose
	left     uint8
	right    uint8
	ledOn    bool
	flashes  int
	odometer float64
}

var (
	_ edge.Actuator  = (*World)(nil)
	_ edge.Sensor    = (*World)(nil)
	_ edge.Indicator = (*World)(nil)
	_ edge.Clock     = (*World)(nil)
)

// New creates a world with the robot stopped at cfg.Start.
func New(cfg Config) *World {
	if cfg.SubStep <= 0 {
		cfg.SubStep = 2 * time.Millisecond
	}
	if cfg.ADCMax == 0 {
		cfg.ADCMax = 1023
	}
	return &World{
		cfg:  cfg,
		rng:  rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5deece66d)),
		pose: cfg.Start,
	}
}

// Hardware returns the world as the follower's hardware bundle.
func (w *World) Hardware() edge.Hardware {
	return edge.Hardware{Drive: w, Sensors: w, Indicator: w, Clock: w}
}

// SetDrive sets both wheel levels.
func (w *World) SetDrive(left, right uint8) error {
	w.mu.Lock()
	w.left, w.right = left, right
	w.mu.Unlock()
	return nil
}

// Stop halts both wheels.
func (w *World) Stop() error {
	return w.SetDrive(0, 0)
}

// Drive returns the current wheel levels.
func (w *World) Drive() edge.Command {
	w.mu.Lock()
	defer w.mu.Unlock()
	return edge.Command{Left: w.left, Right: w.right}
}

// ReadRaw samples the reflectance under one sensor.
func (w *World) ReadRaw(side edge.Side) (uint16, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	x, y := w.sensorPos(side)
	r := w.cfg.Field.Reflectance(x, y)
	if w.cfg.Noise > 0 {
		r += w.rng.NormFloat64() * w.cfg.Noise
	}
	r = math.Max(0, math.Min(1, r))
	return uint16(math.Round(r * float64(w.cfg.ADCMax))), nil
}

// On lights the indicator.
func (w *World) On() error {
	w.mu.Lock()
	if !w.ledOn {
		w.flashes++
	}
	w.ledOn = true
	w.mu.Unlock()
	return nil
}

// Off darkens the indicator.
func (w *World) Off() error {
	w.mu.Lock()
	w.ledOn = false
	w.mu.Unlock()
	return nil
}

// Flashes counts off-to-on transitions of the indicator.
func (w *World) Flashes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flashes
}

// Now returns simulated time since the world was created.
func (w *World) Now() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.now
}

// Sleep advances simulated time by d, moving the robot as it goes.
func (w *World) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if w.cfg.Realtime {
		time.Sleep(d)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for d > 0 {
		step := w.cfg.SubStep
		if d < step {
			step = d
		}
		w.integrate(step.Seconds())
		w.now += step
		d -= step
	}
}

// Pose returns the robot ground truth.
func (w *World) Pose() Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pose
}

// Odometer returns the distance travelled by the robot centre.
func (w *World) Odometer() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.odometer
}

// EdgeDistance is the signed distance from the midpoint between the sensors
// to the boundary, positive on dark.
func (w *World) EdgeDistance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.pose
	x := p.X + w.cfg.SensorForward*math.Cos(p.Heading)
	y := p.Y + w.cfg.SensorForward*math.Sin(p.Heading)
	return w.cfg.Field.Distance(x, y)
}

// integrate advances differential-drive kinematics by dt seconds.
func (w *World) integrate(dt float64) {
	vl := float64(w.left) * w.cfg.SpeedScale
	vr := float64(w.right) * w.cfg.SpeedScale
	v := (vl + vr) / 2
	omega := (vr - vl) / w.cfg.WheelBase

	mid := w.pose.Heading + omega*dt/2
	w.pose.X += v * math.Cos(mid) * dt
	w.pose.Y += v * math.Sin(mid) * dt
	w.pose.Heading = normalizeAngle(w.pose.Heading + omega*dt)
	w.odometer += math.Abs(v) * dt
}

func (w *World) sensorPos(side edge.Side) (float64, float64) {
	p := w.pose
	sin, cos := math.Sincos(p.Heading)
	lat := w.cfg.SensorOffset
	if side == edge.Right {
		lat = -lat
	}
	x := p.X + w.cfg.SensorForward*cos - lat*sin
	y := p.Y + w.cfg.SensorForward*sin + lat*cos
	return x, y
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
