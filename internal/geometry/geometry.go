package geometry

// Rect describes a window or screen rectangle in screen coordinates.
// Fields are real-valued because window systems report fractional frames
// on scaled displays.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// ContainsPoint reports whether (x, y) lies inside the rectangle.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Tolerances for position detection. Quarter detection is looser because
// some hosts adjust quarter-width windows by a few rows/columns after the
// fact and the detector must still recognize them.
const (
	PositionTolerance = 5.0
	QuarterTolerance  = 25.0
)

func approx(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// Within reports whether every field of frame is within tol of target.
func Within(frame, target Rect, tol float64) bool {
	return approx(frame.X, target.X, tol) &&
		approx(frame.Y, target.Y, tol) &&
		approx(frame.Width, target.Width, tol) &&
		approx(frame.Height, target.Height, tol)
}

// LeftHalfFrame returns the left half of the usable frame.
func LeftHalfFrame(usable Rect) Rect {
	return Rect{X: usable.X, Y: usable.Y, Width: usable.Width / 2, Height: usable.Height}
}

// RightHalfFrame returns the right half of the usable frame.
func RightHalfFrame(usable Rect) Rect {
	return Rect{X: usable.X + usable.Width/2, Y: usable.Y, Width: usable.Width / 2, Height: usable.Height}
}

// TopHalfFrame returns the top half of the usable frame.
func TopHalfFrame(usable Rect) Rect {
	return Rect{X: usable.X, Y: usable.Y, Width: usable.Width, Height: usable.Height / 2}
}

// BottomHalfFrame returns the bottom half of the usable frame.
func BottomHalfFrame(usable Rect) Rect {
	return Rect{X: usable.X, Y: usable.Y + usable.Height/2, Width: usable.Width, Height: usable.Height / 2}
}

// ThirdFrame returns the pos-th (1..3) full-height third of the usable frame.
func ThirdFrame(pos int, usable Rect) Rect {
	w := usable.Width / 3
	return Rect{X: usable.X + w*float64(pos-1), Y: usable.Y, Width: w, Height: usable.Height}
}

// TwoThirdsFrame returns the pos-th (1..2) full-height two-thirds span.
func TwoThirdsFrame(pos int, usable Rect) Rect {
	third := usable.Width / 3
	x := usable.X
	if pos == 2 {
		x += third
	}
	return Rect{X: x, Y: usable.Y, Width: 2 * third, Height: usable.Height}
}

// ThreeQuartersFrame returns the pos-th (1..2) full-height three-quarters span.
func ThreeQuartersFrame(pos int, usable Rect) Rect {
	quarter := usable.Width / 4
	x := usable.X
	if pos == 2 {
		x += quarter
	}
	return Rect{X: x, Y: usable.Y, Width: 3 * quarter, Height: usable.Height}
}

// QuarterFrame returns the pos-th (1..4) quarter of the usable frame.
// Quarters split the width into four full-height columns; this is not a
// 2x2 corner grid.
func QuarterFrame(pos int, usable Rect) Rect {
	w := usable.Width / 4
	return Rect{X: usable.X + w*float64(pos-1), Y: usable.Y, Width: w, Height: usable.Height}
}

// CenterFrame keeps the current size and centers it in the usable frame.
func CenterFrame(current, usable Rect) Rect {
	return Rect{
		X:      usable.X + (usable.Width-current.Width)/2,
		Y:      usable.Y + (usable.Height-current.Height)/2,
		Width:  current.Width,
		Height: current.Height,
	}
}
