package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/tachyon-app/tachyon/internal/backend"
	"github.com/tachyon-app/tachyon/internal/geometry"
	"github.com/tachyon-app/tachyon/internal/screens"
)

const defaultPollInterval = 150 * time.Millisecond

// FrameApplier places a window at a target frame with whatever verification
// the implementation carries.
type FrameApplier interface {
	ApplyFrame(win backend.Handle, target geometry.Rect) error
}

// SpawnTimeoutError reports that an app produced no new window within the
// activation deadline.
type SpawnTimeoutError struct {
	AppID   string
	Timeout time.Duration
}

func (e *SpawnTimeoutError) Error() string {
	return fmt.Sprintf("app %q produced no window within %s", e.AppID, e.Timeout)
}

// WindowResult records the outcome of placing one scene window.
type WindowResult struct {
	Window  Window
	Handle  backend.Handle
	Spawned bool
	Err     error
}

// Activator restores scene layouts against live windows.
type Activator struct {
	backend  backend.Backend
	source   backend.ScreenSource
	applier  FrameApplier
	launcher backend.Launcher
	log      zerolog.Logger

	mu           sync.Mutex
	spawnTimeout time.Duration
	pollInterval time.Duration
}

// NewActivator wires an activator. spawnTimeout bounds how long activation
// waits for a spawned app to produce a window.
func NewActivator(b backend.Backend, source backend.ScreenSource, applier FrameApplier,
	launcher backend.Launcher, spawnTimeout time.Duration, log zerolog.Logger) *Activator {
	return &Activator{
		backend:      b,
		source:       source,
		applier:      applier,
		launcher:     launcher,
		log:          log,
		spawnTimeout: spawnTimeout,
		pollInterval: defaultPollInterval,
	}
}

// SetSpawnTimeout updates the spawn deadline, for config reload.
func (a *Activator) SetSpawnTimeout(d time.Duration) {
	a.mu.Lock()
	a.spawnTimeout = d
	a.mu.Unlock()
}

func (a *Activator) currentSpawnTimeout() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spawnTimeout
}

// Activate places every window of a scene. Existing windows of the right
// app are claimed first, in enumeration order; the rest are spawned and
// awaited. One failed window never aborts the rest: every entry gets a
// result.
func (a *Activator) Activate(ctx context.Context, sc *Scene, windows []Window) []WindowResult {
	results := make([]WindowResult, len(windows))
	claimed := make(map[backend.Handle]bool)

	list, err := a.source.Screens()
	if err != nil {
		for i, w := range windows {
			results[i] = WindowResult{Window: w, Err: fmt.Errorf("failed to enumerate screens: %w", err)}
		}
		return results
	}
	// All displays gone (RandR can report zero CRTCs mid-reconfigure).
	// Nothing can be placed, so do not spawn anything either.
	if len(list) == 0 {
		for i, w := range windows {
			results[i] = WindowResult{Window: w, Err: fmt.Errorf("no screens available to place %q", w.AppID)}
		}
		return results
	}

	a.log.Info().Str("scene", sc.Name).Int("windows", len(windows)).Msg("activating scene")

	// Claim pass: bind saved windows to running ones before spawning
	// anything, so two entries for the same app never race for one window.
	for i, w := range windows {
		results[i] = WindowResult{Window: w}
		h, ok, err := a.claimExisting(w.AppID, claimed)
		if err != nil {
			results[i].Err = err
			continue
		}
		if ok {
			claimed[h] = true
			results[i].Handle = h
		}
	}

	// Spawn pass for the unbound entries.
	for i := range results {
		if results[i].Handle != 0 || results[i].Err != nil {
			continue
		}
		w := results[i].Window
		h, err := a.spawnAndWait(ctx, w, claimed)
		if err != nil {
			results[i].Err = err
			continue
		}
		claimed[h] = true
		results[i].Handle = h
		results[i].Spawned = true
	}

	for i := range results {
		if results[i].Err != nil || results[i].Handle == 0 {
			continue
		}
		target := targetFor(results[i].Window, list)
		if err := a.applier.ApplyFrame(results[i].Handle, target); err != nil {
			results[i].Err = fmt.Errorf("failed to place window for %q: %w", results[i].Window.AppID, err)
		}
	}

	failed := lo.CountBy(results, func(r WindowResult) bool { return r.Err != nil })
	a.log.Info().Str("scene", sc.Name).Int("placed", len(results)-failed).Int("failed", failed).
		Msg("scene activation finished")
	return results
}

// claimExisting returns the first running window of the app not yet bound
// to another scene entry.
func (a *Activator) claimExisting(appID string, claimed map[backend.Handle]bool) (backend.Handle, bool, error) {
	handles, err := a.backend.WindowsForApp(appID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to enumerate windows for %q: %w", appID, err)
	}
	for _, h := range handles {
		if !claimed[h] {
			return h, true, nil
		}
	}
	return 0, false, nil
}

// spawnAndWait asks the app for a new window and polls enumeration until
// an unclaimed one appears or the deadline passes.
func (a *Activator) spawnAndWait(ctx context.Context, w Window, claimed map[backend.Handle]bool) (backend.Handle, error) {
	if err := a.launcher.SpawnNewWindow(w.AppID, w.AppPath); err != nil {
		return 0, err
	}

	timeout := a.currentSpawnTimeout()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-deadline.C:
			return 0, &SpawnTimeoutError{AppID: w.AppID, Timeout: timeout}
		case <-ticker.C:
			h, ok, err := a.claimExisting(w.AppID, claimed)
			if err != nil {
				a.log.Debug().Str("app", w.AppID).Err(err).Msg("window poll failed")
				continue
			}
			if ok {
				return h, nil
			}
		}
	}
}

// targetFor maps a window's fractional geometry onto the usable frame of
// its saved display. A display index beyond the live screen count clamps
// to the last screen rather than failing the window.
func targetFor(w Window, list []screens.Screen) geometry.Rect {
	idx := w.DisplayIndex
	if idx >= len(list) {
		idx = len(list) - 1
	}
	usable := list[idx].Usable
	return geometry.Rect{
		X:      usable.X + w.X*usable.Width,
		Y:      usable.Y + w.Y*usable.Height,
		Width:  w.Width * usable.Width,
		Height: w.Height * usable.Height,
	}
}
