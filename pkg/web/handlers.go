package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-edgebot/internal/log"
	"github.com/teslashibe/go-edgebot/pkg/hub"
	"github.com/teslashibe/go-edgebot/pkg/telemetry"
)

// Status is the /api/status body
type Status struct {
	Mode       string           `json:"mode"`
	RunID      string           `json:"run_id,omitempty"`
	UptimeS    float64          `json:"uptime_s"`
	Calibrated bool             `json:"calibrated"`
	Baseline   *BaselineView    `json:"baseline,omitempty"`
	Frame      *telemetry.Frame `json:"frame,omitempty"`
	Sent       uint64           `json:"frames_sent"`
	Throttled  uint64           `json:"frames_throttled"`
	Hub        hub.Stats        `json:"hub"`
}

// BaselineView is the calibrated white level per side
type BaselineView struct {
	Left  uint16 `json:"left"`
	Right uint16 `json:"right"`
}

// ParamsView is the /api/config body; durations are milliseconds
type ParamsView struct {
	BaseLeftSpeed      uint8   `json:"base_left_speed"`
	BaseRightSpeed     uint8   `json:"base_right_speed"`
	MaxSpeed           uint8   `json:"max_speed"`
	LeftSensitivity    float64 `json:"left_sensitivity"`
	RightSensitivity   float64 `json:"right_sensitivity"`
	StepLengthMS       int64   `json:"step_length_ms"`
	SmallTurnMS        int64   `json:"small_turn_ms"`
	BigTurnMS          int64   `json:"big_turn_ms"`
	MemTimeMS          int64   `json:"mem_time_ms"`
	TickIntervalMS     int64   `json:"tick_interval_ms"`
	StrobeSettleMS     float64 `json:"strobe_settle_ms"`
	SamplesPerRead     int     `json:"samples_per_read"`
	CalibrationSamples int     `json:"calibration_samples"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// handleStatus returns the run state and the latest frame
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := Status{
		Mode:    s.mode,
		UptimeS: time.Since(s.started).Seconds(),
		Hub:     s.hub.Stats(),
	}

	s.mu.RLock()
	src := s.source
	if s.baseline != nil {
		st.Calibrated = true
		st.Baseline = &BaselineView{Left: s.baseline.Left, Right: s.baseline.Right}
	}
	s.mu.RUnlock()

	if src != nil {
		st.RunID = src.RunID()
		if f, ok := src.Latest(); ok {
			st.Frame = &f
		}
		st.Sent, st.Throttled = src.Counts()
	}
	return c.JSON(st)
}

// handleConfig returns the active follower parameters
func (s *Server) handleConfig(c *fiber.Ctx) error {
	p := s.params
	return c.JSON(ParamsView{
		BaseLeftSpeed:      p.BaseLeftSpeed,
		BaseRightSpeed:     p.BaseRightSpeed,
		MaxSpeed:           p.MaxSpeed,
		LeftSensitivity:    float64(p.LeftSensitivity),
		RightSensitivity:   float64(p.RightSensitivity),
		StepLengthMS:       p.StepLength.Milliseconds(),
		SmallTurnMS:        p.SmallTurn.Milliseconds(),
		BigTurnMS:          p.BigTurn.Milliseconds(),
		MemTimeMS:          p.MemTime.Milliseconds(),
		TickIntervalMS:     p.TickInterval.Milliseconds(),
		StrobeSettleMS:     float64(p.StrobeSettle) / float64(time.Millisecond),
		SamplesPerRead:     p.SamplesPerRead,
		CalibrationSamples: p.CalibrationSamples,
	})
}

// handleTelemetryWS streams frames, starting with the latest one
func (s *Server) handleTelemetryWS(c *websocket.Conn) {
	var greeting []hub.Message

	s.mu.RLock()
	src := s.source
	s.mu.RUnlock()
	if src != nil {
		if f, ok := src.Latest(); ok {
			if msg, err := hub.EncodeJSON(f); err == nil {
				greeting = append(greeting, msg)
			}
		}
	}

	client := hub.NewClient(s.hub, c, greeting...)
	if client == nil {
		log.Debug("telemetry hub stopped, refusing client")
		return
	}
	client.Run()
}
