package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-edgebot/internal/log"
	"github.com/teslashibe/go-edgebot/pkg/edge"
)

// Sink receives published frames, e.g. a websocket hub.
type Sink func(Frame) error

// Options configures a Publisher.
type Options struct {
	RunID string      // generated when empty
	Rate  float64     // frames per second; <= 0 disables throttling
	Sink  Sink        // optional
	Pose  func() Pose // optional ground truth source
	Now   func() time.Time
}

// Publisher observes runner reports, keeps metrics current and forwards
// frames to a sink at a bounded rate. Edge and error frames always pass.
type Publisher struct {
	runID   string
	metrics *Metrics
	limiter *rate.Limiter
	sink    Sink
	pose    func() Pose
	now     func() time.Time

	mu        sync.RWMutex
	latest    Frame
	hasLatest bool
	sent      uint64
	throttled uint64
}

// NewPublisher creates a publisher. m may be nil.
func NewPublisher(m *Metrics, opts Options) *Publisher {
	p := &Publisher{
		runID:   opts.RunID,
		metrics: m,
		sink:    opts.Sink,
		pose:    opts.Pose,
		now:     opts.Now,
	}
	if p.runID == "" {
		p.runID = uuid.New().String()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if opts.Rate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	return p
}

// RunID identifies this run in every frame.
func (p *Publisher) RunID() string {
	return p.runID
}

// Observe handles one report. It has the signature of edge.Observer.
func (p *Publisher) Observe(rep edge.Report) {
	if p.metrics != nil {
		p.metrics.Observe(rep)
	}

	f := NewFrame(p.runID, rep)
	if p.pose != nil {
		pose := p.pose()
		f.Pose = &pose
	}

	p.mu.Lock()
	p.latest = f
	p.hasLatest = true
	p.mu.Unlock()

	if p.sink == nil {
		return
	}
	if !p.allow(f) {
		p.count(false)
		return
	}
	if err := p.sink(f); err != nil {
		log.Debug("telemetry sink failed", "seq", f.Seq, "error", err)
		return
	}
	p.count(true)
}

// Latest returns the most recent frame.
func (p *Publisher) Latest() (Frame, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.hasLatest
}

// Counts returns how many frames were sent and throttled.
func (p *Publisher) Counts() (sent, throttled uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sent, p.throttled
}

func (p *Publisher) allow(f Frame) bool {
	if p.limiter == nil || f.StateName() == edge.Edge.String() || f.Error != "" {
		return true
	}
	return p.limiter.AllowN(p.now(), 1)
}

func (p *Publisher) count(sent bool) {
	p.mu.Lock()
	if sent {
		p.sent++
	} else {
		p.throttled++
	}
	p.mu.Unlock()

	if p.metrics == nil {
		return
	}
	if sent {
		p.metrics.Frames.WithLabelValues("sent").Inc()
	} else {
		p.metrics.Frames.WithLabelValues("throttled").Inc()
	}
}
