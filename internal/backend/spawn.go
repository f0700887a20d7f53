package backend

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/rs/zerolog"
)

// AppLauncher asks applications for new windows. The scripted path launches
// the app binary; when that is impossible it falls back to focusing an
// existing window of the app and injecting Ctrl+N through XTEST.
type AppLauncher struct {
	x   *X11
	log zerolog.Logger

	xtestReady bool
}

// NewAppLauncher builds a launcher over an X11 backend.
func NewAppLauncher(x *X11, log zerolog.Logger) *AppLauncher {
	ready := xtest.Init(x.xu.Conn()) == nil
	if !ready {
		log.Warn().Msg("XTEST extension unavailable; keyboard spawn fallback disabled")
	}
	return &AppLauncher{x: x, log: log, xtestReady: ready}
}

// SpawnNewWindow requests a new window for the app. Best effort: a nil
// return does not guarantee a window will appear, only that a request was
// issued. Callers poll window enumeration afterward.
func (l *AppLauncher) SpawnNewWindow(appID, appPath string) error {
	if appPath != "" {
		if err := startDetached(appPath); err == nil {
			l.log.Debug().Str("app", appID).Str("path", appPath).Msg("spawned via app path")
			return nil
		} else {
			l.log.Debug().Str("app", appID).Err(err).Msg("app path spawn failed")
		}
	}

	if path, err := exec.LookPath(appID); err == nil {
		if err := startDetached(path); err == nil {
			l.log.Debug().Str("app", appID).Msg("spawned via PATH lookup")
			return nil
		}
	}

	if err := l.sendNewWindowKeystroke(appID); err != nil {
		return fmt.Errorf("failed to spawn window for %q: %w", appID, err)
	}
	return nil
}

func startDetached(path string) error {
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Do not wait; app processes are long-lived.
	go cmd.Wait()
	return nil
}

// sendNewWindowKeystroke focuses an existing window of the app and injects
// Ctrl+N, the conventional new-window shortcut.
func (l *AppLauncher) sendNewWindowKeystroke(appID string) error {
	if !l.xtestReady {
		return fmt.Errorf("no launchable binary and XTEST unavailable")
	}

	windows, err := l.x.WindowsForApp(appID)
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return fmt.Errorf("no running window to receive a new-window keystroke")
	}

	if err := l.x.FocusWindow(windows[0]); err != nil {
		return fmt.Errorf("failed to focus app window: %w", err)
	}
	// Give the WM a beat to transfer focus before injecting input.
	time.Sleep(50 * time.Millisecond)

	ctrl, err := l.keycodeFor("Control_L")
	if err != nil {
		return err
	}
	n, err := l.keycodeFor("n")
	if err != nil {
		return err
	}

	conn := l.x.xu.Conn()
	for _, stroke := range []struct {
		kind byte
		code xproto.Keycode
	}{
		{xproto.KeyPress, ctrl},
		{xproto.KeyPress, n},
		{xproto.KeyRelease, n},
		{xproto.KeyRelease, ctrl},
	} {
		if err := xtest.FakeInputChecked(conn, stroke.kind, byte(stroke.code), 0, l.x.root, 0, 0, 0).Check(); err != nil {
			return fmt.Errorf("failed to inject keystroke: %w", err)
		}
	}
	l.log.Debug().Str("app", appID).Msg("injected Ctrl+N new-window keystroke")
	return nil
}

func (l *AppLauncher) keycodeFor(keysym string) (xproto.Keycode, error) {
	codes := keybind.StrToKeycodes(l.x.xu, keysym)
	if len(codes) == 0 {
		return 0, fmt.Errorf("no keycode mapped for %q", keysym)
	}
	return codes[0], nil
}
