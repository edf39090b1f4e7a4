package edge

// SensitivityScale is the fixed denominator of a sensitivity factor.
const SensitivityScale = 4

// Side names one of the two sensors or wheels.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// State is the surface classification of one tick.
type State int

const (
	BothWhite State = iota
	Edge
	BothBlack
)

func (s State) String() string {
	switch s {
	case Edge:
		return "edge"
	case BothBlack:
		return "both_black"
	default:
		return "both_white"
	}
}

// Baseline is the calibrated white value per side.
type Baseline struct {
	Left  uint16 `json:"left"`
	Right uint16 `json:"right"`
}

// Sample holds the raw values of one tick. Left and Right are sums of Reads
// consecutive reads; the baseline is scaled by Reads before comparing.
type Sample struct {
	Left  uint32 `json:"left"`
	Right uint32 `json:"right"`
	Reads int    `json:"reads"`
}

// Sensitivity is the numerator n of the factor n/4 applied to the baseline.
// Fractions are allowed; valid values satisfy 0 < n <= 4.
type Sensitivity float64

// Valid reports whether s lies within the classifier's scale.
func (s Sensitivity) Valid() bool {
	return s > 0 && s <= SensitivityScale
}

// Threshold returns the per-read white threshold for a baseline value.
func (s Sensitivity) Threshold(white uint16) float64 {
	return float64(white) * float64(s) / SensitivityScale
}

// Reading is the classifier output. BlackSide is meaningful only on Edge.
type Reading struct {
	State     State `json:"state"`
	BlackSide Side  `json:"black_side"`
}

// Classify thresholds each side independently against its baseline.
func Classify(s Sample, b Baseline, leftSens, rightSens Sensitivity) Reading {
	reads := s.Reads
	if reads < 1 {
		reads = 1
	}
	leftWhite := float64(s.Left) > leftSens.Threshold(b.Left)*float64(reads)
	rightWhite := float64(s.Right) > rightSens.Threshold(b.Right)*float64(reads)

	switch {
	case leftWhite && rightWhite:
		return Reading{State: BothWhite}
	case !leftWhite && !rightWhite:
		return Reading{State: BothBlack}
	case leftWhite:
		return Reading{State: Edge, BlackSide: Right}
	default:
		return Reading{State: Edge, BlackSide: Left}
	}
}
