package screens

import (
	"testing"

	"github.com/tachyon-app/tachyon/internal/geometry"
)

func sideBySide() []Screen {
	return []Screen{
		{ID: 0, Name: "DP-1", Frame: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, Usable: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Name: "DP-2", Frame: geometry.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}, Usable: geometry.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}},
	}
}

func stacked() []Screen {
	return []Screen{
		{ID: 0, Frame: geometry.Rect{X: 0, Y: 0, Width: 2560, Height: 1440}, Usable: geometry.Rect{X: 0, Y: 0, Width: 2560, Height: 1440}},
		{ID: 1, Frame: geometry.Rect{X: 0, Y: 1440, Width: 2560, Height: 1440}, Usable: geometry.Rect{X: 0, Y: 1440, Width: 2560, Height: 1440}},
	}
}

func TestArrangementOrientation(t *testing.T) {
	if got := NewTopology(sideBySide()).ArrangementOrientation(); got != Horizontal {
		t.Errorf("side-by-side arrangement detected as %s", got)
	}
	if got := NewTopology(stacked()).ArrangementOrientation(); got != Vertical {
		t.Errorf("stacked arrangement detected as %s", got)
	}
	// A single screen has no pairs; horizontal is the default.
	if got := NewTopology(sideBySide()[:1]).ArrangementOrientation(); got != Horizontal {
		t.Errorf("single screen detected as %s", got)
	}
}

func TestNextScreen(t *testing.T) {
	topo := NewTopology(sideBySide())
	first, second := topo.Screens()[0], topo.Screens()[1]

	if next, ok := topo.NextScreen(first, DirRight); !ok || next.ID != second.ID {
		t.Errorf("right of first: got %+v %v, want screen 1", next, ok)
	}
	if next, ok := topo.NextScreen(second, DirLeft); !ok || next.ID != first.ID {
		t.Errorf("left of second: got %+v %v, want screen 0", next, ok)
	}
	if _, ok := topo.NextScreen(second, DirRight); ok {
		t.Error("no screen right of the last screen")
	}
	if _, ok := topo.NextScreen(first, DirUp); ok {
		t.Error("no screen above in a horizontal arrangement")
	}
}

func TestNextScreen_PicksNearest(t *testing.T) {
	three := append(sideBySide(), Screen{
		ID:    2,
		Frame: geometry.Rect{X: 3840, Y: 0, Width: 1920, Height: 1080},
	})
	topo := NewTopology(three)

	next, ok := topo.NextScreen(topo.Screens()[0], DirRight)
	if !ok || next.ID != 1 {
		t.Errorf("got screen %d, want adjacent screen 1", next.ID)
	}
}

func TestScreenFor(t *testing.T) {
	topo := NewTopology(sideBySide())

	s, ok := topo.ScreenFor(geometry.Rect{X: 2000, Y: 100, Width: 400, Height: 300})
	if !ok || s.ID != 1 {
		t.Errorf("frame on second screen resolved to %d", s.ID)
	}

	// Origin dragged off-screen to the left: nearest origin wins.
	s, ok = topo.ScreenFor(geometry.Rect{X: -50, Y: 10, Width: 400, Height: 300})
	if !ok || s.ID != 0 {
		t.Errorf("off-screen frame resolved to %d, want 0", s.ID)
	}

	if _, ok := NewTopology(nil).ScreenFor(geometry.Rect{}); ok {
		t.Error("empty topology should not resolve a screen")
	}
}
