// Package scene stores and restores named multi-window layouts. A scene
// owns a set of windows described by app identity and fractional geometry;
// activating a scene claims or spawns windows for each entry and places
// them on the current screens.
package scene

import "fmt"

// Shortcut is a global key binding stored as raw key code and modifier
// flags, independent of any keyboard layout string syntax.
type Shortcut struct {
	KeyCode   uint32 `yaml:"key_code"`
	Modifiers uint32 `yaml:"modifiers"`
}

// Scene is a named window layout.
type Scene struct {
	ID           int64
	Name         string
	Enabled      bool
	DisplayCount int
	Shortcut     *Shortcut
}

// Window is one saved window of a scene. Geometry is stored as fractions
// of the target screen's usable frame so layouts survive resolution
// changes.
type Window struct {
	ID           int64
	SceneID      int64
	AppID        string
	AppPath      string
	DisplayIndex int
	X            float64
	Y            float64
	Width        float64
	Height       float64
}

// Validate rejects windows whose fractional geometry cannot be mapped to
// any screen.
func (w Window) Validate() error {
	if w.AppID == "" {
		return fmt.Errorf("window has no app identifier")
	}
	if w.DisplayIndex < 0 {
		return fmt.Errorf("window %q: display index %d is negative", w.AppID, w.DisplayIndex)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"x", w.X}, {"y", w.Y}, {"width", w.Width}, {"height", w.Height},
	} {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("window %q: %s fraction %v out of [0,1]", w.AppID, f.name, f.value)
		}
	}
	if w.Width == 0 || w.Height == 0 {
		return fmt.Errorf("window %q: zero size", w.AppID)
	}
	return nil
}

// ConflictError reports a shortcut already claimed by another scene.
type ConflictError struct {
	Shortcut Shortcut
	Scene    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("shortcut (keycode %d, modifiers %#x) is already bound to scene %q",
		e.Shortcut.KeyCode, e.Shortcut.Modifiers, e.Scene)
}
