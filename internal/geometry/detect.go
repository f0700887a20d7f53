package geometry

// CurrentThirdPosition matches frame against each full-height third of the
// usable frame. Returns the 1-based position, or 0 when no third matches.
func CurrentThirdPosition(frame, usable Rect) int {
	for pos := 1; pos <= 3; pos++ {
		if Within(frame, ThirdFrame(pos, usable), PositionTolerance) {
			return pos
		}
	}
	return 0
}

// CurrentTwoThirdsPosition matches frame against the two-thirds spans.
// Returns the 1-based position, or 0 when neither matches.
func CurrentTwoThirdsPosition(frame, usable Rect) int {
	for pos := 1; pos <= 2; pos++ {
		if Within(frame, TwoThirdsFrame(pos, usable), PositionTolerance) {
			return pos
		}
	}
	return 0
}

// CurrentThreeQuartersPosition matches frame against the three-quarters
// spans. Returns the 1-based position, or 0 when neither matches.
func CurrentThreeQuartersPosition(frame, usable Rect) int {
	for pos := 1; pos <= 2; pos++ {
		if Within(frame, ThreeQuartersFrame(pos, usable), PositionTolerance) {
			return pos
		}
	}
	return 0
}

// CurrentQuarterPosition matches frame against the four quarter columns with
// the looser quarter tolerance. Returns the 1-based position, or 0 when no
// quarter matches.
func CurrentQuarterPosition(frame, usable Rect) int {
	for pos := 1; pos <= 4; pos++ {
		if Within(frame, QuarterFrame(pos, usable), QuarterTolerance) {
			return pos
		}
	}
	return 0
}

// CurrentSnapPosition recognizes the basic snap positions: maximize first,
// then the four halves. First match wins.
func CurrentSnapPosition(frame, usable Rect) (Action, bool) {
	candidates := []struct {
		action Action
		target Rect
	}{
		{ActionMaximize, usable},
		{ActionLeftHalf, LeftHalfFrame(usable)},
		{ActionRightHalf, RightHalfFrame(usable)},
		{ActionTopHalf, TopHalfFrame(usable)},
		{ActionBottomHalf, BottomHalfFrame(usable)},
	}
	for _, c := range candidates {
		if Within(frame, c.target, PositionTolerance) {
			return c.action, true
		}
	}
	return "", false
}
