package edge

import "testing"

func TestClassify(t *testing.T) {
	base := Baseline{Left: 500, Right: 500}

	tests := []struct {
		name      string
		sample    Sample
		wantState State
		wantBlack Side
	}{
		{"both white", Sample{Left: 600, Right: 600, Reads: 1}, BothWhite, Left},
		{"right black", Sample{Left: 600, Right: 200, Reads: 1}, Edge, Right},
		{"left black", Sample{Left: 200, Right: 600, Reads: 1}, Edge, Left},
		{"both black", Sample{Left: 200, Right: 200, Reads: 1}, BothBlack, Left},
		{"at threshold is black", Sample{Left: 375, Right: 376, Reads: 1}, Edge, Left},
		{"zero reads treated as one", Sample{Left: 600, Right: 600}, BothWhite, Left},
		{"summed reads scale baseline", Sample{Left: 4 * 600, Right: 4 * 200, Reads: 4}, Edge, Right},
		{"summed reads stay black", Sample{Left: 1400, Right: 1400, Reads: 4}, BothBlack, Left},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.sample, base, 3, 3)
			if got.State != tt.wantState {
				t.Errorf("State = %v, want %v", got.State, tt.wantState)
			}
			if got.State == Edge && got.BlackSide != tt.wantBlack {
				t.Errorf("BlackSide = %v, want %v", got.BlackSide, tt.wantBlack)
			}
		})
	}
}

func TestClassify_PerSideSensitivity(t *testing.T) {
	base := Baseline{Left: 400, Right: 800}
	s := Sample{Left: 350, Right: 350, Reads: 1}

	// left threshold 400*4/4 = 400, right threshold 800*1/4 = 200
	got := Classify(s, base, 4, 1)
	if got.State != Edge || got.BlackSide != Left {
		t.Errorf("got %+v, want edge with left black", got)
	}

	// fractional numerator: 400*3.5/4 = 350, not strictly above
	got = Classify(s, base, 3.5, 1)
	if got.State != Edge || got.BlackSide != Left {
		t.Errorf("fractional: got %+v, want edge with left black", got)
	}
}

func TestClassify_Pure(t *testing.T) {
	base := Baseline{Left: 512, Right: 498}
	s := Sample{Left: 420, Right: 300, Reads: 1}

	first := Classify(s, base, 3, 3)
	for i := 0; i < 100; i++ {
		if got := Classify(s, base, 3, 3); got != first {
			t.Fatalf("call %d: got %+v, want %+v", i, got, first)
		}
	}
	if base != (Baseline{Left: 512, Right: 498}) {
		t.Error("baseline mutated")
	}
}

func TestSensitivity_Valid(t *testing.T) {
	tests := []struct {
		n    Sensitivity
		want bool
	}{
		{0, false},
		{-1, false},
		{0.5, true},
		{3, true},
		{4, true},
		{4.01, false},
	}
	for _, tt := range tests {
		if got := tt.n.Valid(); got != tt.want {
			t.Errorf("Sensitivity(%v).Valid() = %v, want %v", float64(tt.n), got, tt.want)
		}
	}
}

func TestSensitivity_Threshold(t *testing.T) {
	if got := Sensitivity(3).Threshold(500); got != 375 {
		t.Errorf("Threshold = %v, want 375", got)
	}
}

func TestTextRoundTrip(t *testing.T) {
	var st State
	if err := st.UnmarshalText([]byte("both_black")); err != nil || st != BothBlack {
		t.Errorf("State = %v, %v; want both_black", st, err)
	}
	var side Side
	if err := side.UnmarshalText([]byte("right")); err != nil || side != Right {
		t.Errorf("Side = %v, %v; want right", side, err)
	}
	var r Reason
	if err := r.UnmarshalText([]byte("walk_turn")); err != nil || r != ReasonWalkTurn {
		t.Errorf("Reason = %v, %v; want walk_turn", r, err)
	}
	var d Direction
	if err := d.UnmarshalText([]byte("unset")); err != nil || d != Unset {
		t.Errorf("Direction = %v, %v; want unset", d, err)
	}
	var k MoveKind
	if err := k.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown move kind")
	}
}
