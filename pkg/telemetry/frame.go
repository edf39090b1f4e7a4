// Package telemetry turns runner tick reports into JSON frames and
// prometheus metrics for dashboards and watchers.
package telemetry

import (
	"errors"
	"time"

	"github.com/teslashibe/go-edgebot/pkg/edge"
)

// Frame is the JSON snapshot of one tick.
type Frame struct {
	RunID     string        `json:"run_id"`
	Seq       uint64        `json:"seq"`
	TimeMS    int64         `json:"t_ms"`
	Sample    SampleFrame   `json:"sample"`
	State     *edge.State   `json:"state,omitempty"` // nil when the read failed
	BlackSide *edge.Side    `json:"black_side,omitempty"`
	Reason    edge.Reason   `json:"reason"`
	Kind      edge.MoveKind `json:"kind"`
	Command   CommandFrame  `json:"command"`
	Memory    MemoryFrame   `json:"memory"`
	Error     string        `json:"error,omitempty"`
	Pose      *Pose         `json:"pose,omitempty"`
}

// SampleFrame carries the summed raw reads of a tick.
type SampleFrame struct {
	Left  uint32 `json:"left"`
	Right uint32 `json:"right"`
	Reads int    `json:"reads"`
}

// CommandFrame is the drive command in effect after the tick.
type CommandFrame struct {
	Left  uint8 `json:"left"`
	Right uint8 `json:"right"`
}

// MemoryFrame is the edge memory after the tick.
type MemoryFrame struct {
	DeadlineMS int64          `json:"deadline_ms"`
	Direction  edge.Direction `json:"direction"`
	Active     bool           `json:"active"`
}

// Pose is simulator ground truth, absent on hardware.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// NewFrame converts a report into a frame.
func NewFrame(runID string, rep edge.Report) Frame {
	f := Frame{
		RunID:  runID,
		Seq:    rep.Seq,
		TimeMS: ms(rep.At),
		Sample: SampleFrame{
			Left:  rep.Sample.Left,
			Right: rep.Sample.Right,
			Reads: rep.Sample.Reads,
		},
		Reason: rep.Decision.Reason,
		Kind:   rep.Decision.Kind,
		Command: CommandFrame{
			Left:  rep.Decision.Command.Left,
			Right: rep.Decision.Command.Right,
		},
		Memory: MemoryFrame{
			DeadlineMS: ms(rep.Memory.Deadline),
			Direction:  rep.Memory.Direction,
			Active:     rep.Memory.Active(rep.At),
		},
	}
	if !errors.Is(rep.Err, edge.ErrSensorRead) {
		st := rep.Reading.State
		f.State = &st
		if st == edge.Edge {
			side := rep.Reading.BlackSide
			f.BlackSide = &side
		}
	}
	if rep.Err != nil {
		f.Error = rep.Err.Error()
	}
	return f
}

// StateName is the classification, or "unread" for a failed read.
func (f Frame) StateName() string {
	if f.State == nil {
		return "unread"
	}
	return f.State.String()
}

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}
