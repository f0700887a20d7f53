package backend

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/tachyon-app/tachyon/internal/geometry"
)

// X11 implements Backend and ScreenSource over an X connection.
type X11 struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

// NewX11 connects to the X server and initializes the keybind module used
// for hotkey registration and keyboard injection.
func NewX11() (*X11, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	keybind.Initialize(xu)

	return &X11{xu: xu, root: xu.RootWin()}, nil
}

// XUtil exposes the underlying connection for hotkey registration.
func (x *X11) XUtil() *xgbutil.XUtil { return x.xu }

// RootWindow returns the root window of the default screen.
func (x *X11) RootWindow() xproto.Window { return x.root }

// EventLoop runs the X event loop (blocking).
func (x *X11) EventLoop() { xevent.Main(x.xu) }

// Close disconnects from the X server.
func (x *X11) Close() { x.xu.Conn().Close() }

// CheckPermission reports whether the connection can query the root window.
// X11 has no accessibility prompt; a dead or rejected connection is the
// equivalent failure mode.
func (x *X11) CheckPermission() bool {
	_, err := xproto.GetGeometry(x.xu.Conn(), xproto.Drawable(x.root)).Reply()
	return err == nil
}

// FrontmostWindow returns the EWMH active window.
func (x *X11) FrontmostWindow() (Handle, error) {
	win, err := ewmh.ActiveWindowGet(x.xu)
	if err != nil || win == 0 {
		return 0, fmt.Errorf("%w: _NET_ACTIVE_WINDOW unset", ErrNoFrontmostWindow)
	}
	return Handle(win), nil
}

// Frame returns a window's frame translated into root coordinates.
func (x *X11) Frame(h Handle) (geometry.Rect, error) {
	win := xproto.Window(h)

	geom, err := xproto.GetGeometry(x.xu.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("%w: %v", ErrCannotReadFrame, err)
	}
	translate, err := xproto.TranslateCoordinates(x.xu.Conn(), win, x.root, 0, 0).Reply()
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("%w: %v", ErrCannotReadFrame, err)
	}

	return geometry.Rect{
		X:      float64(translate.DstX),
		Y:      float64(translate.DstY),
		Width:  float64(geom.Width),
		Height: float64(geom.Height),
	}, nil
}

// SetFrame moves and resizes a window. Maximized state is removed first;
// window managers ignore moveresize requests for maximized windows.
func (x *X11) SetFrame(h Handle, frame geometry.Rect) error {
	win := xproto.Window(h)
	x.unmaximize(win)

	err := ewmh.MoveresizeWindow(x.xu, win,
		int(frame.X), int(frame.Y), int(frame.Width), int(frame.Height))
	if err != nil {
		// Fallback to direct configure for WMs without _NET_MOVERESIZE_WINDOW.
		mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
			xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
		values := []uint32{
			uint32(int32(frame.X)), uint32(int32(frame.Y)),
			uint32(frame.Width), uint32(frame.Height),
		}
		if err := xproto.ConfigureWindowChecked(x.xu.Conn(), win, mask, values).Check(); err != nil {
			return fmt.Errorf("%w: %v", ErrCannotSetFrame, err)
		}
	}
	return nil
}

func (x *X11) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(x.xu, win)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(x.xu, win, 0, state)
		}
	}
}

// WindowsForApp returns the app's normal top-level windows in client-list
// order. The identifier matches either half of WM_CLASS, case-insensitively.
func (x *X11) WindowsForApp(appID string) ([]Handle, error) {
	clients, err := ewmh.ClientListGet(x.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	var out []Handle
	for _, win := range clients {
		class, err := icccm.WmClassGet(x.xu, win)
		if err != nil {
			continue
		}
		if !strings.EqualFold(class.Class, appID) && !strings.EqualFold(class.Instance, appID) {
			continue
		}
		if !x.isNormalWindow(win) {
			continue
		}
		out = append(out, Handle(win))
	}
	return out, nil
}

// FocusWindow activates and raises a window via _NET_ACTIVE_WINDOW.
func (x *X11) FocusWindow(h Handle) error {
	atomReply, err := xproto.InternAtom(x.xu.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(h),
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		x.xu.Conn(),
		false,
		x.root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

func (x *X11) isNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(x.xu, win)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}
