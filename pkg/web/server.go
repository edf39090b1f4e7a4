// Package web serves the live telemetry dashboard API for a running follower
package web

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-edgebot/internal/log"
	"github.com/teslashibe/go-edgebot/pkg/edge"
	"github.com/teslashibe/go-edgebot/pkg/hub"
	"github.com/teslashibe/go-edgebot/pkg/telemetry"
)

// Source supplies the latest frame and publish counters, e.g. a
// telemetry.Publisher
type Source interface {
	RunID() string
	Latest() (telemetry.Frame, bool)
	Counts() (sent, throttled uint64)
}

// Options configures a Server
type Options struct {
	Addr    string
	Mode    string // hardware or sim
	Params  edge.Params
	Metrics *telemetry.Metrics // optional, enables /metrics
}

// Server is the dashboard API server
type Server struct {
	app     *fiber.App
	addr    string
	mode    string
	params  edge.Params
	hub     *hub.Hub
	started time.Time

	mu       sync.RWMutex
	source   Source
	baseline *edge.Baseline
}

// NewServer creates the server and its routes
func NewServer(opts Options) *Server {
	s := &Server{
		addr:    opts.Addr,
		mode:    opts.Mode,
		params:  opts.Params,
		hub:     hub.New("telemetry"),
		started: time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "edgebot",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/healthz", s.handleHealth)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)

	if opts.Metrics != nil {
		h := promhttp.HandlerFor(opts.Metrics.Registry(), promhttp.HandlerOpts{})
		app.Get("/metrics", adaptor.HTTPHandler(h))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(s.handleTelemetryWS))

	s.app = app
	return s
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the telemetry broadcast hub
func (s *Server) Hub() *hub.Hub {
	return s.hub
}

// Attach sets where status frames come from
func (s *Server) Attach(src Source) {
	s.mu.Lock()
	s.source = src
	s.mu.Unlock()
}

// SetBaseline records the calibration result for /api/status
func (s *Server) SetBaseline(b edge.Baseline) {
	s.mu.Lock()
	s.baseline = &b
	s.mu.Unlock()
}

// Publish broadcasts a frame to websocket clients. It satisfies
// telemetry.Sink.
func (s *Server) Publish(f telemetry.Frame) error {
	return s.hub.BroadcastJSON(f)
}

// Start listens on the configured address until ctx is done
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			log.Warn("web shutdown", "error", err)
		}
	}()
	log.Info("web dashboard listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}
