package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-edgebot/internal/config"
	"github.com/teslashibe/go-edgebot/pkg/edge"
	"github.com/teslashibe/go-edgebot/pkg/sim"
	"github.com/teslashibe/go-edgebot/pkg/telemetry"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Follow an edge in a simulated arena",
	Long: `Run the follower against a simulated robot for sim.duration of simulated
time after startup, then print a summary. With sim.realtime the simulation is
paced on the wall clock, which suits the web dashboard.

Examples:
  edgebot sim
  EDGEBOT_SIM_FIELD=half_plane EDGEBOT_SIM_DURATION=2m edgebot sim
  EDGEBOT_SIM_REALTIME=true EDGEBOT_WEB_ENABLED=true edgebot sim`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := runSim(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		sum.print(cmd.OutOrStdout())
		return nil
	},
}

// simSummary aggregates a simulated run.
type simSummary struct {
	Ticks      int
	States     map[edge.State]int
	Reasons    map[edge.Reason]int
	NearEdge   int // ticks with the sensor midpoint within one sensor offset of the edge
	Distance   float64
	Final      sim.Pose
	SimTime    time.Duration
	FirstEdge  time.Duration // -1 when the edge was never found
	IOErrors   uint64
	FramesSent uint64
}

func runSim(ctx context.Context, c *config.Config) (*simSummary, error) {
	world := sim.New(c.WorldConfig())
	pose := func() telemetry.Pose {
		p := world.Pose()
		return telemetry.Pose{X: p.X, Y: p.Y, Heading: p.Heading}
	}

	s, err := newSession(c, "sim", world.Hardware(), pose)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sum := &simSummary{
		States:    make(map[edge.State]int),
		Reasons:   make(map[edge.Reason]int),
		FirstEdge: -1,
	}
	var deadline time.Duration
	near := c.Sim.SensorOffset
	s.observe = func(rep edge.Report) {
		if deadline == 0 {
			deadline = rep.At + c.Sim.Duration
		}
		sum.Ticks++
		classified := !errors.Is(rep.Err, edge.ErrSensorRead)
		if classified {
			sum.States[rep.Reading.State]++
		}
		sum.Reasons[rep.Decision.Reason]++
		if classified && rep.Reading.State == edge.Edge && sum.FirstEdge < 0 {
			sum.FirstEdge = rep.At
		}
		if math.Abs(world.EdgeDistance()) <= near {
			sum.NearEdge++
		}
		if rep.At >= deadline {
			cancel()
		}
	}

	if err := s.follow(ctx); err != nil {
		return nil, err
	}

	sum.Distance = world.Odometer()
	sum.Final = world.Pose()
	sum.SimTime = world.Now()
	sum.IOErrors = s.runner.ErrorCount()
	sum.FramesSent, _ = s.pub.Counts()
	return sum, nil
}

func (s *simSummary) print(w io.Writer) {
	fmt.Fprintf(w, "simulated %v, %d ticks, %.2f m travelled\n", s.SimTime.Round(time.Millisecond), s.Ticks, s.Distance)
	if s.FirstEdge >= 0 {
		fmt.Fprintf(w, "first edge at %v\n", s.FirstEdge.Round(time.Millisecond))
	} else {
		fmt.Fprintln(w, "edge never found")
	}
	for _, st := range []edge.State{edge.BothWhite, edge.Edge, edge.BothBlack} {
		fmt.Fprintf(w, "  %-12s %6d  %5.1f%%\n", st, s.States[st], s.pct(s.States[st]))
	}
	fmt.Fprintf(w, "  %-12s %6d  %5.1f%%\n", "near_edge", s.NearEdge, s.pct(s.NearEdge))
	for r := edge.ReasonEdge; r <= edge.ReasonWalkTurn; r++ {
		if n := s.Reasons[r]; n > 0 {
			fmt.Fprintf(w, "  reason %-13s %6d\n", r, n)
		}
	}
	fmt.Fprintf(w, "final pose x=%.3f y=%.3f heading=%.2f\n", s.Final.X, s.Final.Y, s.Final.Heading)
	if s.IOErrors > 0 {
		fmt.Fprintf(w, "io errors: %d\n", s.IOErrors)
	}
	if s.FramesSent > 0 {
		fmt.Fprintf(w, "telemetry frames sent: %d\n", s.FramesSent)
	}
}

func (s *simSummary) pct(n int) float64 {
	if s.Ticks == 0 {
		return 0
	}
	return 100 * float64(n) / float64(s.Ticks)
}
