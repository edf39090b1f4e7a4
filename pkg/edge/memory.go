package edge

import "time"

// Direction is the remembered black side of the last edge.
type Direction int

const (
	Unset Direction = iota
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unset"
	}
}

func directionOf(s Side) Direction {
	if s == Right {
		return DirRight
	}
	return DirLeft
}

// Memory is a single-slot record of the most recent edge.
// It goes stale once now reaches Deadline; nothing expires it actively.
type Memory struct {
	Deadline  time.Duration `json:"deadline"`
	Direction Direction     `json:"direction"`
}

// Record overwrites the slot with an edge seen at now.
func (m *Memory) Record(now, memTime time.Duration, black Side) {
	m.Deadline = now + memTime
	m.Direction = directionOf(black)
}

// Active reports whether the memory is still fresh at now.
func (m Memory) Active(now time.Duration) bool {
	return now < m.Deadline
}
