package edge

import (
	"testing"
	"time"
)

const ms = time.Millisecond

var (
	white      = Reading{State: BothWhite}
	black      = Reading{State: BothBlack}
	rightBlack = Reading{State: Edge, BlackSide: Right}
	leftBlack  = Reading{State: Edge, BlackSide: Left}
)

func newTestEngine(seed uint64) *Engine {
	return NewEngine(DefaultParams(), NewRandomPool(FixedSeed(seed)))
}

func TestEngine_EdgeGoesStraightAndRemembers(t *testing.T) {
	e := newTestEngine(1)

	d := e.Step(1000*ms, rightBlack)
	if d.Kind != Straight || d.Reason != ReasonEdge {
		t.Errorf("decision = %+v, want straight edge", d)
	}
	if d.Command != (Command{Left: 17, Right: 17}) {
		t.Errorf("Command = %+v, want {17 17}", d.Command)
	}
	if d.Duration != 300*ms {
		t.Errorf("Duration = %v, want 300ms", d.Duration)
	}

	s := e.Snapshot()
	if s.Memory.Deadline != 2000*ms || s.Memory.Direction != DirRight {
		t.Errorf("Memory = %+v, want {2s right}", s.Memory)
	}
	if s.MoveEnd != 1300*ms || s.LastMove != Straight || s.LastSense != Edge {
		t.Errorf("Snapshot = %+v", s)
	}
}

func TestEngine_EdgeOverwritesMemory(t *testing.T) {
	e := newTestEngine(1)
	e.Step(1000*ms, rightBlack)
	e.Step(1200*ms, leftBlack)

	m := e.Snapshot().Memory
	if m.Deadline != 2200*ms || m.Direction != DirLeft {
		t.Errorf("Memory = %+v, want {2.2s left}", m)
	}
}

func TestEngine_WhiteTurnsTowardRememberedBlack(t *testing.T) {
	tests := []struct {
		name string
		edge Reading
		want MoveKind
		cmd  Command
	}{
		{"right black", rightBlack, TurnRight, Command{Left: 17, Right: 0}},
		{"left black", leftBlack, TurnLeft, Command{Left: 0, Right: 17}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(1)
			e.Step(1000*ms, tt.edge)

			d := e.Step(1500*ms, white)
			if d.Kind != tt.want || d.Reason != ReasonMemory {
				t.Errorf("decision = %+v, want %v memory turn", d, tt.want)
			}
			if d.Duration != 200*ms {
				t.Errorf("Duration = %v, want smallturn 200ms", d.Duration)
			}
			if d.Command != tt.cmd {
				t.Errorf("Command = %+v, want %+v", d.Command, tt.cmd)
			}
		})
	}
}

func TestEngine_BlackTurnsTowardRememberedWhite(t *testing.T) {
	e := newTestEngine(1)
	e.Step(1000*ms, rightBlack)

	d := e.Step(1500*ms, black)
	if d.Kind != TurnLeft || d.Reason != ReasonMemory || d.Duration != 200*ms {
		t.Errorf("decision = %+v, want small left turn", d)
	}

	e = newTestEngine(1)
	e.Step(1000*ms, leftBlack)
	d = e.Step(1500*ms, black)
	if d.Kind != TurnRight || d.Reason != ReasonMemory {
		t.Errorf("decision = %+v, want small right turn", d)
	}
}

func TestEngine_MemoryKeepsTurningUntilDeadline(t *testing.T) {
	e := newTestEngine(1)
	e.Step(1000*ms, rightBlack)
	e.Step(1020*ms, white)

	// Still white, lastSense is white, memory active: keep recalling.
	for now := 1040 * ms; now < 2000*ms; now += 20 * ms {
		d := e.Step(now, white)
		if d.Reason != ReasonMemory {
			t.Fatalf("at %v reason = %v, want memory", now, d.Reason)
		}
	}

	// Memory expired: random walk takes over.
	d := e.Step(2000*ms, white)
	if d.Reason == ReasonMemory || d.Reason == ReasonFallback {
		t.Errorf("after deadline reason = %v, want random walk", d.Reason)
	}
}

func TestEngine_ColorFlipUsesMemoryEvenWhenStale(t *testing.T) {
	e := newTestEngine(1)
	e.Step(1000*ms, rightBlack)
	e.Step(5000*ms, white) // stale, random walk
	d := e.Step(5020*ms, black)

	// lastSense was white, so black turns toward remembered white.
	if d.Reason != ReasonMemory || d.Kind != TurnLeft {
		t.Errorf("decision = %+v, want memory left turn", d)
	}

	d = e.Step(5040*ms, white)
	if d.Reason != ReasonMemory || d.Kind != TurnRight {
		t.Errorf("decision = %+v, want memory right turn", d)
	}
}

func TestEngine_BigTurnBeforeFirstEdge(t *testing.T) {
	e := newTestEngine(1)

	// Power-on lastSense is white, so black recalls with unset memory.
	d := e.Step(0, black)
	if d.Reason != ReasonFallback || d.Kind != TurnRight || d.Duration != 500*ms {
		t.Errorf("decision = %+v, want big right turn", d)
	}

	d = e.Step(20*ms, white)
	if d.Reason != ReasonFallback || d.Kind != TurnLeft || d.Duration != 500*ms {
		t.Errorf("decision = %+v, want big left turn", d)
	}

	// Once an edge is seen the big turn is gone for good.
	e.Step(40*ms, leftBlack)
	for now := 60 * ms; now < 10*time.Second; now += 20 * ms {
		r := white
		if (now/(20*ms))%7 == 0 {
			r = black
		}
		if d := e.Step(now, r); d.Reason == ReasonFallback {
			t.Fatalf("at %v big turn after first edge", now)
		}
		if e.Snapshot().Memory.Direction == Unset {
			t.Fatalf("at %v memory reverted to unset", now)
		}
	}
}

func TestEngine_RandomWalk(t *testing.T) {
	// seed 0b10: first bit 0 (right), second bit 1 (left)
	e := newTestEngine(0b10)

	d := e.Step(0, white)
	if d.Reason != ReasonWalkStraight || d.Kind != Straight {
		t.Fatalf("first decision = %+v, want walk straight", d)
	}

	d = e.Step(100*ms, white)
	if d.Reason != ReasonHold || d.Command != (Command{Left: 17, Right: 17}) || d.Changed {
		t.Errorf("decision = %+v, want unchanged hold", d)
	}

	d = e.Step(300*ms, white)
	if d.Reason != ReasonWalkTurn || d.Kind != TurnRight {
		t.Errorf("decision = %+v, want random right turn", d)
	}

	d = e.Step(500*ms, white)
	if d.Reason != ReasonWalkStraight {
		t.Errorf("decision = %+v, want forced straight after turn", d)
	}

	d = e.Step(800*ms, white)
	if d.Reason != ReasonWalkTurn || d.Kind != TurnLeft {
		t.Errorf("decision = %+v, want random left turn", d)
	}
}

func TestEngine_RandomWalkNeverTurnsTwice(t *testing.T) {
	p := DefaultParams()
	e := NewEngine(p, NewRandomPool(FixedSeed(0x5a5a_1234_f0f0_0001)))

	var lastTurn bool
	var straightSince time.Duration = -1
	for now := time.Duration(0); now < 60*time.Second; now += 20 * ms {
		d := e.Step(now, white)
		switch d.Reason {
		case ReasonHold:
			continue
		case ReasonWalkStraight:
			if !lastTurn && straightSince >= 0 {
				t.Fatalf("at %v straight followed straight", now)
			}
			lastTurn = false
			straightSince = now
		case ReasonWalkTurn:
			if lastTurn {
				t.Fatalf("at %v turn followed turn", now)
			}
			if straightSince >= 0 && now-straightSince < p.StepLength {
				t.Fatalf("at %v straight lasted %v, want >= %v", now, now-straightSince, p.StepLength)
			}
			lastTurn = true
		default:
			t.Fatalf("at %v unexpected reason %v", now, d.Reason)
		}
	}
}

func TestEngine_ChangedFlag(t *testing.T) {
	e := newTestEngine(1)

	if d := e.Step(0, rightBlack); !d.Changed {
		t.Error("first command should be a change")
	}
	if d := e.Step(20*ms, rightBlack); d.Changed {
		t.Error("repeated straight should not be a change")
	}
	if d := e.Step(40*ms, white); !d.Changed {
		t.Error("turn after straight should be a change")
	}
}
