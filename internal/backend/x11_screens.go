package backend

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/tachyon-app/tachyon/internal/geometry"
	"github.com/tachyon-app/tachyon/internal/screens"
)

// Screens enumerates active displays via RandR, in CRTC order. The usable
// frame excludes dock struts; when no dock advertises struts the EWMH work
// area is intersected instead.
func (x *X11) Screens() ([]screens.Screen, error) {
	if err := randr.Init(x.xu.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(x.xu.Conn(), x.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var out []screens.Screen
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(x.xu.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Screen%d", i)
		if outputInfo, err := randr.GetOutputInfo(x.xu.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		frame := geometry.Rect{
			X:      float64(info.X),
			Y:      float64(info.Y),
			Width:  float64(info.Width),
			Height: float64(info.Height),
		}
		out = append(out, screens.Screen{
			ID:     len(out),
			Name:   name,
			Frame:  frame,
			Usable: x.usableFrame(frame),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no active screens found")
	}
	return out, nil
}

func (x *X11) usableFrame(frame geometry.Rect) geometry.Rect {
	if usable, ok := x.subtractStruts(frame); ok {
		return usable
	}
	if usable, ok := x.intersectWorkArea(frame); ok {
		return usable
	}
	return frame
}

// subtractStruts shrinks the frame by every dock strut that intersects it.
func (x *X11) subtractStruts(frame geometry.Rect) (geometry.Rect, bool) {
	rootGeom, err := xproto.GetGeometry(x.xu.Conn(), xproto.Drawable(x.root)).Reply()
	if err != nil {
		return frame, false
	}
	rootW := float64(rootGeom.Width)
	rootH := float64(rootGeom.Height)

	clients, err := ewmh.ClientListGet(x.xu)
	if err != nil {
		return frame, false
	}

	var left, right, top, bottom float64
	for _, win := range clients {
		if !x.isDockWindow(win) {
			continue
		}
		sp, err := ewmh.WmStrutPartialGet(x.xu, win)
		if err != nil {
			// Some docks only set _NET_WM_STRUT (no partial ranges).
			s, err := ewmh.WmStrutGet(x.xu, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftStartY: 0, LeftEndY: uint(rootH - 1),
				RightStartY: 0, RightEndY: uint(rootH - 1),
				TopStartX: 0, TopEndX: uint(rootW - 1),
				BottomStartX: 0, BottomEndX: uint(rootW - 1),
			}
		}

		if sp.Top > 0 {
			band := geometry.Rect{X: float64(sp.TopStartX), Y: 0,
				Width: float64(sp.TopEndX) - float64(sp.TopStartX) + 1, Height: float64(sp.Top)}
			if h := intersectionHeight(frame, band); h > top {
				top = h
			}
		}
		if sp.Bottom > 0 {
			band := geometry.Rect{X: float64(sp.BottomStartX), Y: rootH - float64(sp.Bottom),
				Width: float64(sp.BottomEndX) - float64(sp.BottomStartX) + 1, Height: float64(sp.Bottom)}
			if h := intersectionHeight(frame, band); h > bottom {
				bottom = h
			}
		}
		if sp.Left > 0 {
			band := geometry.Rect{X: 0, Y: float64(sp.LeftStartY),
				Width: float64(sp.Left), Height: float64(sp.LeftEndY) - float64(sp.LeftStartY) + 1}
			if w := intersectionWidth(frame, band); w > left {
				left = w
			}
		}
		if sp.Right > 0 {
			band := geometry.Rect{X: rootW - float64(sp.Right), Y: float64(sp.RightStartY),
				Width: float64(sp.Right), Height: float64(sp.RightEndY) - float64(sp.RightStartY) + 1}
			if w := intersectionWidth(frame, band); w > right {
				right = w
			}
		}
	}

	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return frame, false
	}

	usable := geometry.Rect{
		X:      frame.X + left,
		Y:      frame.Y + top,
		Width:  frame.Width - left - right,
		Height: frame.Height - top - bottom,
	}
	if usable.Width < 1 {
		usable.Width = 1
	}
	if usable.Height < 1 {
		usable.Height = 1
	}
	return usable, true
}

func (x *X11) intersectWorkArea(frame geometry.Rect) (geometry.Rect, bool) {
	workArea, err := ewmh.WorkareaGet(x.xu)
	if err != nil || len(workArea) == 0 {
		return frame, false
	}
	idx := 0
	if current, err := ewmh.CurrentDesktopGet(x.xu); err == nil && int(current) < len(workArea) {
		idx = int(current)
	}
	wa := workArea[idx]

	x1 := maxf(frame.X, float64(wa.X))
	y1 := maxf(frame.Y, float64(wa.Y))
	x2 := minf(frame.MaxX(), float64(wa.X)+float64(wa.Width))
	y2 := minf(frame.MaxY(), float64(wa.Y)+float64(wa.Height))
	if x2 <= x1 || y2 <= y1 {
		return frame, false
	}
	return geometry.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

func (x *X11) isDockWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(x.xu, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func intersectionHeight(a, b geometry.Rect) float64 {
	_, h := intersectionSize(a, b)
	return h
}

func intersectionWidth(a, b geometry.Rect) float64 {
	w, _ := intersectionSize(a, b)
	return w
}

func intersectionSize(a, b geometry.Rect) (w, h float64) {
	x1 := maxf(a.X, b.X)
	y1 := maxf(a.Y, b.Y)
	x2 := minf(a.MaxX(), b.MaxX())
	y2 := minf(a.MaxY(), b.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return 0, 0
	}
	return x2 - x1, y2 - y1
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
