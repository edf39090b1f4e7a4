package main

import (
	"context"
	"errors"

	"github.com/teslashibe/go-edgebot/internal/config"
	"github.com/teslashibe/go-edgebot/internal/log"
	"github.com/teslashibe/go-edgebot/pkg/edge"
	"github.com/teslashibe/go-edgebot/pkg/telemetry"
	"github.com/teslashibe/go-edgebot/pkg/web"
)

// session wires a runner to telemetry and the optional dashboard.
type session struct {
	cfg     *config.Config
	mode    string
	runner  *edge.Runner
	pub     *telemetry.Publisher
	server  *web.Server
	observe edge.Observer
}

func newSession(c *config.Config, mode string, hw edge.Hardware, pose func() telemetry.Pose) (*session, error) {
	params := c.RobotParams()
	runner, err := edge.NewRunner(params, hw, nil)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetrics()
	opts := telemetry.Options{Rate: c.Web.TelemetryHz, Pose: pose}

	s := &session{cfg: c, mode: mode, runner: runner}
	if c.Web.Enabled {
		s.server = web.NewServer(web.Options{
			Addr:    c.Web.Addr,
			Mode:    mode,
			Params:  params,
			Metrics: metrics,
		})
		opts.Sink = s.server.Publish
	}
	s.pub = telemetry.NewPublisher(metrics, opts)
	if s.server != nil {
		s.server.Attach(s.pub)
	}

	runner.SetObserver(func(rep edge.Report) {
		s.pub.Observe(rep)
		if s.observe != nil {
			s.observe(rep)
		}
	})
	return s, nil
}

// follow serves the dashboard, runs startup and then the control loop until
// ctx is done.
func (s *session) follow(ctx context.Context) error {
	if s.server != nil {
		go func() {
			if err := s.server.Start(ctx); err != nil {
				log.Error("web server stopped", "error", err)
			}
		}()
	}

	log.Info("starting", "mode", s.mode, "run_id", s.pub.RunID())
	if err := s.runner.Startup(ctx); err != nil {
		if isDone(err) {
			return nil
		}
		return err
	}

	if b, ok := s.runner.Baseline(); ok && s.server != nil {
		s.server.SetBaseline(b)
	}

	err := s.runner.Run(ctx)
	sent, throttled := s.pub.Counts()
	log.Info("stopped", "io_errors", s.runner.ErrorCount(), "frames_sent", sent, "frames_throttled", throttled)
	if isDone(err) {
		return nil
	}
	return err
}

func isDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
