package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-edgebot/pkg/edge"
)

func testConfig(start Pose) Config {
	return Config{
		Field:         HalfPlane{Light: 0.85, Dark: 0.15},
		ADCMax:        1023,
		WheelBase:     0.08,
		SensorForward: 0.04,
		SensorOffset:  0.012,
		SpeedScale:    0.006,
		Start:         start,
		SubStep:       2 * time.Millisecond,
		Seed:          1,
	}
}

func TestBlend(t *testing.T) {
	assert.Equal(t, 0.8, blend(0.8, 0.2, -1))
	assert.Equal(t, 0.2, blend(0.8, 0.2, 1))
	assert.InDelta(t, 0.5, blend(0.8, 0.2, 0), 1e-9)
}

func TestDisc_Distance(t *testing.T) {
	d := Disc{Radius: 0.5, Light: 0.9, Dark: 0.1}
	assert.InDelta(t, 0.5, d.Distance(0, 0), 1e-9)
	assert.InDelta(t, -0.5, d.Distance(1, 0), 1e-9)
	assert.Equal(t, 0.1, d.Reflectance(0, 0))
	assert.Equal(t, 0.9, d.Reflectance(0, 2))
}

func TestWorld_Straight(t *testing.T) {
	w := New(testConfig(Pose{X: -1}))
	require.NoError(t, w.SetDrive(17, 17))

	w.Sleep(time.Second)

	p := w.Pose()
	assert.InDelta(t, -1+0.102, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 0, p.Heading, 1e-9)
	assert.InDelta(t, 0.102, w.Odometer(), 1e-9)
	assert.Equal(t, time.Second, w.Now())
}

func TestWorld_TurnDirections(t *testing.T) {
	w := New(testConfig(Pose{X: -1}))
	w.SetDrive(0, 17) // left wheel stopped: turn left
	w.Sleep(100 * time.Millisecond)
	assert.InDelta(t, 0.1275, w.Pose().Heading, 1e-6)

	w = New(testConfig(Pose{X: -1}))
	w.SetDrive(17, 0)
	w.Sleep(100 * time.Millisecond)
	assert.InDelta(t, -0.1275, w.Pose().Heading, 1e-6)
}

func TestWorld_Stop(t *testing.T) {
	w := New(testConfig(Pose{X: -1}))
	w.SetDrive(17, 17)
	require.NoError(t, w.Stop())
	w.Sleep(time.Second)
	assert.Equal(t, -1.0, w.Pose().X)
	assert.Equal(t, edge.Command{}, w.Drive())
}

func TestWorld_ReadRaw(t *testing.T) {
	w := New(testConfig(Pose{X: -0.5}))
	l, err := w.ReadRaw(edge.Left)
	require.NoError(t, err)
	assert.Equal(t, uint16(870), l)

	w = New(testConfig(Pose{X: 0.5}))
	r, _ := w.ReadRaw(edge.Right)
	assert.Equal(t, uint16(153), r)

	// Facing north on the boundary: left sensor over light, right over dark.
	w = New(testConfig(Pose{X: 0, Heading: math.Pi / 2}))
	l, _ = w.ReadRaw(edge.Left)
	r, _ = w.ReadRaw(edge.Right)
	assert.Equal(t, uint16(870), l)
	assert.Equal(t, uint16(153), r)
}

func TestWorld_NoiseIsSeeded(t *testing.T) {
	cfg := testConfig(Pose{X: -0.5})
	cfg.Noise = 0.05
	a, b := New(cfg), New(cfg)
	for i := 0; i < 50; i++ {
		va, _ := a.ReadRaw(edge.Left)
		vb, _ := b.ReadRaw(edge.Left)
		require.Equal(t, va, vb, "read %d", i)
	}
}

func TestWorld_Indicator(t *testing.T) {
	w := New(testConfig(Pose{}))
	w.On()
	w.On()
	w.Off()
	w.On()
	assert.Equal(t, 2, w.Flashes())
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, -math.Pi/2, normalizeAngle(3*math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi/2, normalizeAngle(-3*math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi, normalizeAngle(math.Pi), 1e-9)
}

// runFollower starts a follower heading north-east toward the dark half.
func runFollower(t *testing.T, ticks int) ([]edge.Report, *World) {
	t.Helper()
	cfg := testConfig(Pose{X: -0.04, Heading: math.Pi / 4})
	cfg.Noise = 0.01
	w := New(cfg)

	p := edge.DefaultParams()
	runner, err := edge.NewRunner(p, w.Hardware(), nil)
	require.NoError(t, err)
	require.NoError(t, runner.Startup(context.Background()))

	reports := make([]edge.Report, 0, ticks)
	for i := 0; i < ticks; i++ {
		rep, err := runner.Tick()
		require.NoError(t, err)
		reports = append(reports, rep)
	}
	return reports, w
}

func TestFollower_FindsEdge(t *testing.T) {
	reports, w := runFollower(t, 1500)

	// 6 + 4 startup flashes, one calibration strobe, one strobe per tick
	assert.Equal(t, 11+1500, w.Flashes())

	first := -1
	edges := 0
	p := edge.DefaultParams()
	for i, rep := range reports {
		if rep.Reading.State != edge.Edge {
			continue
		}
		edges++
		if first < 0 {
			first = i
		}
		// Every edge rewrites memory with its own deadline and side.
		assert.Equal(t, rep.At+p.MemTime, rep.Memory.Deadline, "tick %d", rep.Seq)
		want := edge.DirLeft
		if rep.Reading.BlackSide == edge.Right {
			want = edge.DirRight
		}
		assert.Equal(t, want, rep.Memory.Direction, "tick %d", rep.Seq)
		assert.Equal(t, edge.Straight, rep.Decision.Kind)
	}

	require.GreaterOrEqual(t, first, 0, "edge never found")
	assert.Less(t, first, 10)
	assert.Equal(t, edge.Right, reports[first].Reading.BlackSide)
	assert.GreaterOrEqual(t, edges, 5)
}

func TestFollower_Deterministic(t *testing.T) {
	a, _ := runFollower(t, 500)
	b, _ := runFollower(t, 500)
	require.Len(t, b, len(a))
	for i := range a {
		require.Equal(t, a[i].Sample, b[i].Sample, "tick %d", i)
		require.Equal(t, a[i].Decision, b[i].Decision, "tick %d", i)
	}
}
