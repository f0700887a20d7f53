package backend

import (
	"errors"

	"github.com/tachyon-app/tachyon/internal/geometry"
	"github.com/tachyon-app/tachyon/internal/screens"
)

// Handle is an opaque window identifier. Callers never interpret it; each
// platform backend maps it onto its own window primitive.
type Handle uint32

// Failure taxonomy. Wrapped with context by the backend; callers match with
// errors.Is.
var (
	ErrPermissionDenied  = errors.New("window control permission denied")
	ErrNoFrontmostWindow = errors.New("no frontmost window")
	ErrCannotReadFrame   = errors.New("cannot read window frame")
	ErrCannotSetFrame    = errors.New("cannot set window frame")
)

// Backend is the narrow window-control capability surface the engines build
// on. Writes are not guaranteed atomic or immediately observable; callers
// own verification.
type Backend interface {
	// CheckPermission reports whether window control is currently possible.
	CheckPermission() bool

	// FrontmostWindow returns the focused top-level window.
	FrontmostWindow() (Handle, error)

	// Frame returns the current frame of a window in screen coordinates.
	Frame(h Handle) (geometry.Rect, error)

	// SetFrame moves and resizes a window. Best effort; re-read to verify.
	SetFrame(h Handle, frame geometry.Rect) error

	// WindowsForApp returns the app's top-level windows in enumeration
	// order (the window system's client list order).
	WindowsForApp(appID string) ([]Handle, error)
}

// ScreenSource enumerates the connected screens in stable order.
type ScreenSource interface {
	Screens() ([]screens.Screen, error)
}

// Launcher requests a new window from an application. Best effort with no
// return guarantee; callers re-poll window enumeration afterward.
type Launcher interface {
	SpawnNewWindow(appID, appPath string) error
}
