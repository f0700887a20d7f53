package geometry

import "testing"

var usable = Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func TestTargetFrame_KnownValues(t *testing.T) {
	current := Rect{X: 100, Y: 100, Width: 800, Height: 600}

	tests := []struct {
		action Action
		want   Rect
	}{
		{ActionLeftHalf, Rect{0, 0, 960, 1080}},
		{ActionRightHalf, Rect{960, 0, 960, 1080}},
		{ActionTopHalf, Rect{0, 0, 1920, 540}},
		{ActionBottomHalf, Rect{0, 540, 1920, 540}},
		{ActionCenterThird, Rect{640, 0, 640, 1080}},
		{ActionFirstTwoThirds, Rect{0, 0, 1280, 1080}},
		{ActionLastTwoThirds, Rect{640, 0, 1280, 1080}},
		{ActionFirstThreeQuarters, Rect{0, 0, 1440, 1080}},
		{ActionLastThreeQuarters, Rect{480, 0, 1440, 1080}},
		{ActionSecondQuarter, Rect{480, 0, 480, 1080}},
		{ActionMaximize, usable},
		{ActionFullscreen, usable},
		{ActionCenter, Rect{560, 240, 800, 600}},
	}

	for _, tt := range tests {
		got, err := TargetFrame(tt.action, current, usable)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.action, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.action, got, tt.want)
		}
	}
}

func TestTargetFrame_RejectsCycleAndDisplayMove(t *testing.T) {
	for _, a := range []Action{ActionCycleThirds, ActionCycleQuarters, ActionNextDisplay, ActionPreviousDisplay} {
		if _, err := TargetFrame(a, Rect{}, usable); err == nil {
			t.Errorf("%s: expected error", a)
		}
	}
}

func TestHalves_PartitionUsableFrame(t *testing.T) {
	left, _ := TargetFrame(ActionLeftHalf, Rect{}, usable)
	right, _ := TargetFrame(ActionRightHalf, Rect{}, usable)

	if left.MaxX() != right.X {
		t.Errorf("left/right halves gap or overlap: left ends at %v, right starts at %v", left.MaxX(), right.X)
	}
	if left.Width+right.Width != usable.Width {
		t.Errorf("left+right widths %v != usable width %v", left.Width+right.Width, usable.Width)
	}

	top, _ := TargetFrame(ActionTopHalf, Rect{}, usable)
	bottom, _ := TargetFrame(ActionBottomHalf, Rect{}, usable)

	if top.MaxY() != bottom.Y {
		t.Errorf("top/bottom halves gap or overlap: top ends at %v, bottom starts at %v", top.MaxY(), bottom.Y)
	}
	if top.Height+bottom.Height != usable.Height {
		t.Errorf("top+bottom heights %v != usable height %v", top.Height+bottom.Height, usable.Height)
	}
}

func TestTargetFrame_Idempotent(t *testing.T) {
	start := Rect{X: 33, Y: 47, Width: 700, Height: 500}
	once, _ := TargetFrame(ActionLeftHalf, start, usable)
	twice, _ := TargetFrame(ActionLeftHalf, once, usable)
	if once != twice {
		t.Errorf("left-half not idempotent: %+v then %+v", once, twice)
	}
}

func TestCurrentSnapPosition_RoundTrip(t *testing.T) {
	current := Rect{X: 10, Y: 20, Width: 300, Height: 200}
	for _, a := range []Action{ActionMaximize, ActionLeftHalf, ActionRightHalf, ActionTopHalf, ActionBottomHalf} {
		frame, _ := TargetFrame(a, current, usable)
		got, ok := CurrentSnapPosition(frame, usable)
		if !ok {
			t.Fatalf("%s: snap position not detected", a)
		}
		// Fullscreen shares the maximize frame, so only maximize round-trips.
		if got != a {
			t.Errorf("%s: detected as %s", a, got)
		}
	}
}

func TestCurrentSnapPosition_MaximizeWinsOverHalves(t *testing.T) {
	got, ok := CurrentSnapPosition(usable, usable)
	if !ok || got != ActionMaximize {
		t.Fatalf("got %v %v, want maximize", got, ok)
	}
}

func TestCurrentSnapPosition_ToleratesSmallDrift(t *testing.T) {
	frame := LeftHalfFrame(usable)
	frame.X += 4
	frame.Height -= 3
	if got, ok := CurrentSnapPosition(frame, usable); !ok || got != ActionLeftHalf {
		t.Fatalf("drifted left half not detected: got %v %v", got, ok)
	}

	frame.X += 10
	if _, ok := CurrentSnapPosition(frame, usable); ok {
		t.Fatal("frame 14px off should not be detected")
	}
}

func TestCurrentThirdPosition(t *testing.T) {
	for pos := 1; pos <= 3; pos++ {
		if got := CurrentThirdPosition(ThirdFrame(pos, usable), usable); got != pos {
			t.Errorf("third %d detected as %d", pos, got)
		}
	}
	if got := CurrentThirdPosition(Rect{X: 100, Y: 100, Width: 500, Height: 500}, usable); got != 0 {
		t.Errorf("unrelated frame detected as third %d", got)
	}
}

func TestCurrentQuarterPosition_LooseTolerance(t *testing.T) {
	frame := QuarterFrame(3, usable)
	frame.Width -= 20
	frame.X += 12
	if got := CurrentQuarterPosition(frame, usable); got != 3 {
		t.Errorf("quarter with 20px host adjustment detected as %d, want 3", got)
	}

	frame.X += 30
	if got := CurrentQuarterPosition(frame, usable); got != 0 {
		t.Errorf("quarter 42px off detected as %d, want 0", got)
	}
}

func TestCurrentTwoThirdsAndThreeQuarters(t *testing.T) {
	for pos := 1; pos <= 2; pos++ {
		if got := CurrentTwoThirdsPosition(TwoThirdsFrame(pos, usable), usable); got != pos {
			t.Errorf("two-thirds %d detected as %d", pos, got)
		}
		if got := CurrentThreeQuartersPosition(ThreeQuartersFrame(pos, usable), usable); got != pos {
			t.Errorf("three-quarters %d detected as %d", pos, got)
		}
	}
}

func TestParseAction(t *testing.T) {
	if _, err := ParseAction("left-half"); err != nil {
		t.Fatalf("left-half should parse: %v", err)
	}
	if _, err := ParseAction("diagonal-half"); err == nil {
		t.Fatal("expected error for unknown action")
	}
	for _, a := range Actions() {
		if _, err := ParseAction(string(a)); err != nil {
			t.Errorf("%s does not round-trip through ParseAction: %v", a, err)
		}
	}
}
