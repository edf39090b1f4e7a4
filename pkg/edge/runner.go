package edge

import (
	"context"
	"fmt"
	"time"

	"github.com/teslashibe/go-edgebot/internal/log"
)

// Blink timings of the startup signal.
const (
	flashOn          = 200 * time.Millisecond
	flashGap         = 500 * time.Millisecond
	startupBlinkGap  = 989 * time.Millisecond
	confirmPause     = 500 * time.Millisecond
	calibrationGapLR = 1 * time.Millisecond
	calibrationGapRL = 9 * time.Millisecond

	// errorLogInterval throttles repeated I/O error lines.
	errorLogInterval = 5 * time.Second
)

// Report describes one completed tick.
type Report struct {
	Seq      uint64
	At       time.Duration
	Sample   Sample
	Reading  Reading
	Decision Decision
	Memory   Memory
	Err      error // sensor or actuator error, the tick held its command
}

// Observer receives every tick report. It runs on the loop goroutine and
// must not block.
type Observer func(Report)

// Runner paces sense, classify, decide and act against real or simulated
// hardware.
type Runner struct {
	params   Params
	hw       Hardware
	engine   *Engine
	observer Observer

	baseline   Baseline
	calibrated bool
	seq        uint64

	issued      Command
	driveSynced bool

	errorCount   uint64
	lastErrorLog time.Duration
	loggedError  bool

	ledErrors  uint64
	lastLEDLog time.Duration
}

// NewRunner validates p and builds a runner with an engine seeded from the
// hardware clock. Pass a non-nil pool to override the seed.
func NewRunner(p Params, hw Hardware, pool *RandomPool) (*Runner, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if hw.Drive == nil || hw.Sensors == nil || hw.Indicator == nil || hw.Clock == nil {
		return nil, fmt.Errorf("hardware is incomplete")
	}
	if pool == nil {
		pool = NewRandomPool(ClockSeed(hw.Clock))
	}
	return &Runner{
		params: p,
		hw:     hw,
		engine: NewEngine(p, pool),
	}, nil
}

// SetObserver installs the per-tick callback.
func (r *Runner) SetObserver(o Observer) {
	r.observer = o
}

// Engine exposes the decision engine for inspection.
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Baseline returns the calibrated white values.
func (r *Runner) Baseline() (Baseline, bool) {
	return r.baseline, r.calibrated
}

// ErrorCount returns the number of I/O errors seen by the loop.
func (r *Runner) ErrorCount() uint64 {
	return r.errorCount
}

// IndicatorErrors returns the number of failed LED writes.
func (r *Runner) IndicatorErrors() uint64 {
	return r.ledErrors
}

// Startup stops the wheels, blinks the operator signal, then calibrates.
func (r *Runner) Startup(ctx context.Context) error {
	if err := r.hw.Drive.Stop(); err != nil {
		return fmt.Errorf("stop drive: %w", err)
	}
	r.led(false)

	log.Info("startup: place robot on white", "blinks", r.params.StartupBlinks)
	for i := 0; i < r.params.StartupBlinks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.flash(1)
		r.hw.Clock.Sleep(startupBlinkGap)
	}
	r.flash(r.params.ConfirmBlinks)
	r.hw.Clock.Sleep(confirmPause)

	b, err := r.Calibrate()
	if err != nil {
		return err
	}
	log.Info("calibrated", "left_white", b.Left, "right_white", b.Right)
	return nil
}

// Calibrate averages CalibrationSamples reads per side on a white surface.
// It may be called only once.
func (r *Runner) Calibrate() (Baseline, error) {
	if r.calibrated {
		return r.baseline, nil
	}
	n := r.params.CalibrationSamples
	var left, right uint64

	r.led(true)
	r.hw.Clock.Sleep(r.params.StrobeSettle)
	for i := 0; i < n; i++ {
		l, err := r.hw.Sensors.ReadRaw(Left)
		if err != nil {
			r.led(false)
			return Baseline{}, fmt.Errorf("calibration read left: %w", err)
		}
		r.hw.Clock.Sleep(calibrationGapLR)
		rr, err := r.hw.Sensors.ReadRaw(Right)
		if err != nil {
			r.led(false)
			return Baseline{}, fmt.Errorf("calibration read right: %w", err)
		}
		r.hw.Clock.Sleep(calibrationGapRL)
		left += uint64(l)
		right += uint64(rr)
	}
	r.led(false)

	b := Baseline{Left: uint16(left / uint64(n)), Right: uint16(right / uint64(n))}
	if b.Left == 0 || b.Right == 0 {
		return Baseline{}, fmt.Errorf("baseline %d/%d: %w", b.Left, b.Right, ErrDegenerateBaseline)
	}
	r.baseline = b
	r.calibrated = true
	return b, nil
}

// UseBaseline installs a baseline captured elsewhere, e.g. a replayed run.
func (r *Runner) UseBaseline(b Baseline) error {
	if r.calibrated {
		return nil
	}
	if b.Left == 0 || b.Right == 0 {
		return fmt.Errorf("baseline %d/%d: %w", b.Left, b.Right, ErrDegenerateBaseline)
	}
	r.baseline = b
	r.calibrated = true
	return nil
}

// Run loops until ctx is done, then stops the wheels.
func (r *Runner) Run(ctx context.Context) error {
	if !r.calibrated {
		return ErrNotCalibrated
	}
	log.Info("following edge", "tick", r.params.TickInterval)
	for {
		if err := ctx.Err(); err != nil {
			if err := r.hw.Drive.Stop(); err != nil {
				log.Warn("failed to stop drive", "error", err)
			}
			r.driveSynced = false
			log.Info("follower stopped", "ticks", r.seq, "errors", r.errorCount)
			return err
		}
		if _, err := r.Tick(); err != nil {
			return err
		}
	}
}

// Tick performs one paced cycle and returns its report.
func (r *Runner) Tick() (Report, error) {
	if !r.calibrated {
		return Report{}, ErrNotCalibrated
	}
	r.hw.Clock.Sleep(r.params.TickInterval - r.params.StrobeSettle)

	sample, err := r.sense()
	now := r.hw.Clock.Now()
	r.seq++
	rep := Report{Seq: r.seq, At: now, Sample: sample}

	if err != nil {
		rep.Err = fmt.Errorf("%w: %w", ErrSensorRead, err)
		r.noteError(now, rep.Err)
		rep.Decision = Decision{Command: r.engine.command, Kind: r.engine.lastMove, Reason: ReasonHold}
		rep.Memory = r.engine.memory
		r.emit(rep)
		return rep, nil
	}

	rep.Reading = Classify(sample, r.baseline, r.params.LeftSensitivity, r.params.RightSensitivity)
	rep.Decision = r.engine.Step(now, rep.Reading)
	rep.Memory = r.engine.memory

	if cmd := rep.Decision.Command; !r.driveSynced || cmd != r.issued {
		if err := r.hw.Drive.SetDrive(cmd.Left, cmd.Right); err != nil {
			rep.Err = fmt.Errorf("%w: %w", ErrActuation, err)
			r.noteError(now, rep.Err)
			r.driveSynced = false
		} else {
			r.issued = cmd
			r.driveSynced = true
		}
	}
	r.emit(rep)
	return rep, nil
}

// sense strobes the indicator and sums SamplesPerRead reads per side.
func (r *Runner) sense() (Sample, error) {
	r.led(true)
	defer r.led(false)
	r.hw.Clock.Sleep(r.params.StrobeSettle)

	s := Sample{Reads: r.params.SamplesPerRead}
	for i := 0; i < r.params.SamplesPerRead; i++ {
		l, err := r.hw.Sensors.ReadRaw(Left)
		if err != nil {
			return s, fmt.Errorf("read left: %w", err)
		}
		rr, err := r.hw.Sensors.ReadRaw(Right)
		if err != nil {
			return s, fmt.Errorf("read right: %w", err)
		}
		s.Left += uint32(l)
		s.Right += uint32(rr)
	}
	return s, nil
}

func (r *Runner) flash(n int) {
	for n > 0 {
		n--
		r.led(true)
		r.hw.Clock.Sleep(flashOn)
		r.led(false)
		if n > 0 {
			r.hw.Clock.Sleep(flashGap)
		}
	}
}

// led switches the indicator. Failures do not hold the tick; they are
// counted and logged at most once per errorLogInterval.
func (r *Runner) led(on bool) {
	set := r.hw.Indicator.Off
	if on {
		set = r.hw.Indicator.On
	}
	err := set()
	if err == nil {
		return
	}
	r.ledErrors++
	now := r.hw.Clock.Now()
	if r.ledErrors == 1 || now-r.lastLEDLog > errorLogInterval {
		log.Warn("indicator write failed", "error", err, "total_errors", r.ledErrors)
		r.lastLEDLog = now
	}
}

func (r *Runner) noteError(now time.Duration, err error) {
	r.errorCount++
	if !r.loggedError || now-r.lastErrorLog > errorLogInterval {
		log.Warn("tick held", "error", err, "total_errors", r.errorCount)
		r.lastErrorLog = now
		r.loggedError = true
	}
}

func (r *Runner) emit(rep Report) {
	if r.observer != nil {
		r.observer(rep)
	}
}
