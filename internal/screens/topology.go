package screens

import (
	"math"

	"github.com/samber/lo"

	"github.com/tachyon-app/tachyon/internal/geometry"
)

// Screen describes a physical display. Frame is the full display rectangle,
// Usable the portion available for windows (panels and docks excluded).
type Screen struct {
	ID     int
	Name   string
	Frame  geometry.Rect
	Usable geometry.Rect
}

// Direction is a cardinal direction in screen space.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
)

// Orientation describes how the displays are arranged.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Topology answers adjacency and arrangement questions over an ordered
// snapshot of the connected screens.
type Topology struct {
	screens []Screen
}

// NewTopology builds a topology over the given screens. Order is preserved;
// callers index scenes by it.
func NewTopology(screens []Screen) *Topology {
	return &Topology{screens: screens}
}

// Screens returns the screens in enumeration order.
func (t *Topology) Screens() []Screen { return t.screens }

// Count returns the number of screens.
func (t *Topology) Count() int { return len(t.screens) }

// ScreenFor resolves the screen owning a window frame: the screen containing
// the frame's origin, or the one with the nearest origin when none contains
// it (a window may be dragged partly off-screen).
func (t *Topology) ScreenFor(frame geometry.Rect) (Screen, bool) {
	if len(t.screens) == 0 {
		return Screen{}, false
	}
	for _, s := range t.screens {
		if s.Frame.ContainsPoint(frame.X, frame.Y) {
			return s, true
		}
	}
	nearest := lo.MinBy(t.screens, func(a, b Screen) bool {
		return originDistance(a.Frame, frame) < originDistance(b.Frame, frame)
	})
	return nearest, true
}

// ArrangementOrientation infers whether the displays are laid out
// side-by-side or stacked by comparing origin deltas across all screen
// pairs. Horizontal wins ties; it only serves as the default direction for
// next/previous-display moves.
func (t *Topology) ArrangementOrientation() Orientation {
	horizontal, vertical := 0, 0
	for i := 0; i < len(t.screens); i++ {
		for j := i + 1; j < len(t.screens); j++ {
			dx := math.Abs(t.screens[i].Frame.X - t.screens[j].Frame.X)
			dy := math.Abs(t.screens[i].Frame.Y - t.screens[j].Frame.Y)
			if dx >= dy {
				horizontal++
			} else {
				vertical++
			}
		}
	}
	if vertical > horizontal {
		return Vertical
	}
	return Horizontal
}

// NextScreen returns the nearest screen whose origin lies across from's
// boundary in the given direction, or false when there is none.
func (t *Topology) NextScreen(from Screen, dir Direction) (Screen, bool) {
	candidates := lo.Filter(t.screens, func(s Screen, _ int) bool {
		if s.ID == from.ID {
			return false
		}
		switch dir {
		case DirLeft:
			return s.Frame.X < from.Frame.X
		case DirRight:
			return s.Frame.X >= from.Frame.MaxX()
		case DirUp:
			return s.Frame.Y < from.Frame.Y
		case DirDown:
			return s.Frame.Y >= from.Frame.MaxY()
		}
		return false
	})
	if len(candidates) == 0 {
		return Screen{}, false
	}
	nearest := lo.MinBy(candidates, func(a, b Screen) bool {
		return originDistance(a.Frame, from.Frame) < originDistance(b.Frame, from.Frame)
	})
	return nearest, true
}

func originDistance(a, b geometry.Rect) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
