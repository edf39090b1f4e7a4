package edge

import "time"

// MoveKind records which wheel is active.
type MoveKind int

const (
	Straight MoveKind = iota
	TurnLeft
	TurnRight
)

func (k MoveKind) String() string {
	switch k {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	default:
		return "straight"
	}
}

// Command is a pair of wheel drive levels.
type Command struct {
	Left  uint8 `json:"left"`
	Right uint8 `json:"right"`
}

// Reason explains which branch produced a decision.
type Reason int

const (
	ReasonEdge         Reason = iota // on the edge, drive straight
	ReasonMemory                     // turn toward the remembered side
	ReasonFallback                   // no edge seen yet, big turn
	ReasonHold                       // random walk, current move still running
	ReasonWalkStraight               // random walk, forced straight after a turn
	ReasonWalkTurn                   // random walk, coin-flip turn
)

var reasonNames = [...]string{"edge", "memory", "fallback", "hold", "walk_straight", "walk_turn"}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Decision is the outcome of one Engine step.
type Decision struct {
	Command  Command
	Kind     MoveKind
	Duration time.Duration // zero on hold
	Reason   Reason
	Changed  bool // Command differs from the previously issued one
}

// Snapshot is a copy of the engine state for telemetry and tests.
type Snapshot struct {
	LastMove  MoveKind
	MoveEnd   time.Duration
	LastSense State
	Memory    Memory
	Command   Command
}

// Engine is the per-tick decision state machine. It is not safe for
// concurrent use; one Runner goroutine owns it.
type Engine struct {
	params Params
	pool   *RandomPool

	lastMove  MoveKind
	moveEnd   time.Duration
	lastSense State
	memory    Memory
	command   Command
}

// NewEngine creates an engine in the power-on state: memory unset, the last
// move a turn (so the first random step is straight) and the last sense white.
func NewEngine(p Params, pool *RandomPool) *Engine {
	if pool == nil {
		pool = NewRandomPool(nil)
	}
	return &Engine{
		params:    p,
		pool:      pool,
		lastMove:  TurnLeft,
		lastSense: BothWhite,
	}
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		LastMove:  e.lastMove,
		MoveEnd:   e.moveEnd,
		LastSense: e.lastSense,
		Memory:    e.memory,
		Command:   e.command,
	}
}

// Step decides the movement for a reading taken at now.
func (e *Engine) Step(now time.Duration, r Reading) Decision {
	var d Decision
	switch r.State {
	case Edge:
		d = e.start(now, Straight, e.params.StepLength, ReasonEdge)
		e.memory.Record(now, e.params.MemTime, r.BlackSide)
	case BothWhite:
		// Turn toward the remembered black side.
		if e.lastSense == BothBlack || e.memory.Active(now) {
			d = e.recall(now, TurnLeft, TurnRight, TurnLeft)
		} else {
			d = e.walk(now)
		}
	default:
		// Turn toward the remembered white side.
		if e.lastSense == BothWhite || e.memory.Active(now) {
			d = e.recall(now, TurnRight, TurnLeft, TurnRight)
		} else {
			d = e.walk(now)
		}
	}
	e.lastSense = r.State
	return d
}

// recall turns according to memory: onLeft when the last black side was
// left, onRight when it was right, and a big unset turn before any edge.
func (e *Engine) recall(now time.Duration, onLeft, onRight, unset MoveKind) Decision {
	switch e.memory.Direction {
	case DirLeft:
		return e.start(now, onLeft, e.params.SmallTurn, ReasonMemory)
	case DirRight:
		return e.start(now, onRight, e.params.SmallTurn, ReasonMemory)
	default:
		return e.start(now, unset, e.params.BigTurn, ReasonFallback)
	}
}

func (e *Engine) walk(now time.Duration) Decision {
	if now < e.moveEnd {
		return Decision{Command: e.command, Kind: e.lastMove, Reason: ReasonHold}
	}
	if e.lastMove != Straight {
		return e.start(now, Straight, e.params.StepLength, ReasonWalkStraight)
	}
	kind := TurnRight
	if e.pool.Bit() {
		kind = TurnLeft
	}
	return e.start(now, kind, e.params.SmallTurn, ReasonWalkTurn)
}

func (e *Engine) start(now time.Duration, kind MoveKind, dur time.Duration, reason Reason) Decision {
	cmd := e.commandFor(kind)
	changed := cmd != e.command
	e.command = cmd
	e.lastMove = kind
	e.moveEnd = now + dur
	return Decision{Command: cmd, Kind: kind, Duration: dur, Reason: reason, Changed: changed}
}

func (e *Engine) commandFor(kind MoveKind) Command {
	switch kind {
	case TurnLeft:
		return Command{Left: 0, Right: e.params.BaseRightSpeed}
	case TurnRight:
		return Command{Left: e.params.BaseLeftSpeed, Right: 0}
	default:
		return Command{Left: e.params.BaseLeftSpeed, Right: e.params.BaseRightSpeed}
	}
}
