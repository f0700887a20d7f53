package snap

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tachyon-app/tachyon/internal/backend"
	"github.com/tachyon-app/tachyon/internal/geometry"
	"github.com/tachyon-app/tachyon/internal/screens"
)

const (
	// Set-frame verification: position/size writes are not atomic or
	// immediately observable, especially across displays.
	applyTolerance  = 20.0
	applyAttempts   = 3
	applyRetryDelay = 20 * time.Millisecond

	// Dock offsets above this are not a panel; something else moved the
	// window.
	dockOffsetMax = 100.0
)

// Engine executes window positioning actions against the frontmost window.
// One instance owns one dock-offset cache; supply a fresh engine per test.
type Engine struct {
	backend backend.Backend
	source  backend.ScreenSource
	log     zerolog.Logger

	mu               sync.Mutex
	dockOffsets      map[int]float64
	permissionWarned bool
}

// New builds a snap engine over a window backend and a screen source.
func New(b backend.Backend, source backend.ScreenSource, log zerolog.Logger) *Engine {
	return &Engine{
		backend:     b,
		source:      source,
		log:         log,
		dockOffsets: make(map[int]float64),
	}
}

// Execute runs a single action against the frontmost window.
func (e *Engine) Execute(action geometry.Action) error {
	if !e.backend.CheckPermission() {
		e.mu.Lock()
		warned := e.permissionWarned
		e.permissionWarned = true
		e.mu.Unlock()
		if !warned {
			e.log.Error().Msg("window control permission missing; all actions unavailable until granted")
		}
		return backend.ErrPermissionDenied
	}
	e.mu.Lock()
	e.permissionWarned = false
	e.mu.Unlock()

	if action.IsDisplayMove() {
		return e.moveToDisplay(action)
	}

	win, frame, topo, screen, err := e.resolveFrontmost()
	if err != nil {
		return err
	}

	e.learnDockOffset(screen, frame)
	adjusted := e.adjustedUsable(screen)

	if action.IsCycle() {
		return e.cycle(action, win, frame, adjusted)
	}

	// Traversal: repeating a left/right half snap on an already-snapped
	// window pushes it to the facing edge of the adjacent screen.
	if cur, ok := geometry.CurrentSnapPosition(frame, adjusted); ok && cur == action && topo.Count() > 1 {
		if target, ok := e.traversalTarget(action, frame, topo, screen); ok {
			e.log.Debug().Str("action", string(action)).Msg("traversing to adjacent screen")
			return e.ApplyFrame(win, target)
		}
	}

	target, err := geometry.TargetFrame(action, frame, adjusted)
	if err != nil {
		return err
	}
	return e.ApplyFrame(win, target)
}

func (e *Engine) resolveFrontmost() (backend.Handle, geometry.Rect, *screens.Topology, screens.Screen, error) {
	win, err := e.backend.FrontmostWindow()
	if err != nil {
		return 0, geometry.Rect{}, nil, screens.Screen{}, err
	}
	frame, err := e.backend.Frame(win)
	if err != nil {
		return 0, geometry.Rect{}, nil, screens.Screen{}, err
	}
	list, err := e.source.Screens()
	if err != nil {
		return 0, geometry.Rect{}, nil, screens.Screen{}, fmt.Errorf("failed to enumerate screens: %w", err)
	}
	topo := screens.NewTopology(list)
	screen, ok := topo.ScreenFor(frame)
	if !ok {
		return 0, geometry.Rect{}, nil, screens.Screen{}, fmt.Errorf("no screen owns window frame %+v", frame)
	}
	return win, frame, topo, screen, nil
}

func (e *Engine) traversalTarget(action geometry.Action, frame geometry.Rect, topo *screens.Topology, screen screens.Screen) (geometry.Rect, bool) {
	var dir screens.Direction
	var opposite geometry.Action
	switch action {
	case geometry.ActionLeftHalf:
		dir, opposite = screens.DirLeft, geometry.ActionRightHalf
	case geometry.ActionRightHalf:
		dir, opposite = screens.DirRight, geometry.ActionLeftHalf
	default:
		return geometry.Rect{}, false
	}

	next, ok := topo.NextScreen(screen, dir)
	if !ok {
		return geometry.Rect{}, false
	}
	target, err := geometry.TargetFrame(opposite, frame, next.Usable)
	if err != nil {
		return geometry.Rect{}, false
	}
	return target, true
}

func (e *Engine) cycle(action geometry.Action, win backend.Handle, frame, adjusted geometry.Rect) error {
	var current, count int
	var frameAt func(pos int, usable geometry.Rect) geometry.Rect

	switch action {
	case geometry.ActionCycleQuarters:
		current, count = geometry.CurrentQuarterPosition(frame, adjusted), 4
		frameAt = geometry.QuarterFrame
	case geometry.ActionCycleThirds:
		current, count = geometry.CurrentThirdPosition(frame, adjusted), 3
		frameAt = geometry.ThirdFrame
	case geometry.ActionCycleTwoThirds:
		current, count = geometry.CurrentTwoThirdsPosition(frame, adjusted), 2
		frameAt = geometry.TwoThirdsFrame
	case geometry.ActionCycleThreeQuarters:
		current, count = geometry.CurrentThreeQuartersPosition(frame, adjusted), 2
		frameAt = geometry.ThreeQuartersFrame
	default:
		return fmt.Errorf("not a cycle action: %q", action)
	}

	next := (current % count) + 1
	return e.ApplyFrame(win, frameAt(next, adjusted))
}

func (e *Engine) moveToDisplay(action geometry.Action) error {
	win, frame, topo, screen, err := e.resolveFrontmost()
	if err != nil {
		return err
	}

	horizontal := topo.ArrangementOrientation() == screens.Horizontal
	var dir screens.Direction
	if action == geometry.ActionNextDisplay {
		dir = screens.DirDown
		if horizontal {
			dir = screens.DirRight
		}
	} else {
		dir = screens.DirUp
		if horizontal {
			dir = screens.DirLeft
		}
	}

	next, ok := topo.NextScreen(screen, dir)
	if !ok {
		e.log.Debug().Str("action", string(action)).Msg("no adjacent screen; display move is a no-op")
		return nil
	}

	// Carry the window's proportional placement to the new screen.
	from, to := screen.Usable, next.Usable
	target := geometry.Rect{
		X:      to.X + (frame.X-from.X)/from.Width*to.Width,
		Y:      to.Y + (frame.Y-from.Y)/from.Height*to.Height,
		Width:  frame.Width / from.Width * to.Width,
		Height: frame.Height / from.Height * to.Height,
	}
	return e.ApplyFrame(win, target)
}

// ApplyFrame writes a frame and verifies the result, retrying a bounded
// number of times. A persistent mismatch is logged but still reported as
// success: some hosts apply soft size or aspect constraints the caller
// cannot override.
func (e *Engine) ApplyFrame(win backend.Handle, target geometry.Rect) error {
	var got geometry.Rect
	for attempt := 1; attempt <= applyAttempts; attempt++ {
		if err := e.backend.SetFrame(win, target); err != nil {
			return err
		}
		frame, err := e.backend.Frame(win)
		if err != nil {
			return err
		}
		got = frame
		if geometry.Within(got, target, applyTolerance) {
			return nil
		}
		if attempt < applyAttempts {
			time.Sleep(applyRetryDelay)
		}
	}

	e.log.Warn().
		Interface("target", target).
		Interface("got", got).
		Int("attempts", applyAttempts).
		Msg("frame did not settle at target; accepting host-adjusted frame")
	return nil
}

// learnDockOffset records the gap a persistent bottom panel leaves beneath
// full-width windows. The platform under-reports such panels in the usable
// frame, so the correction is learned from observed window placement.
func (e *Engine) learnDockOffset(screen screens.Screen, frame geometry.Rect) {
	usable := screen.Usable
	if !fullWidth(frame, usable) {
		return
	}
	gap := usable.MaxY() - frame.MaxY()
	if gap <= 0 || gap >= dockOffsetMax {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dockOffsets[screen.ID] != gap {
		e.log.Debug().Int("screen", screen.ID).Float64("offset", gap).Msg("learned dock offset")
		e.dockOffsets[screen.ID] = gap
	}
}

// adjustedUsable shifts the usable frame's y-origin up by the learned dock
// offset, height unchanged, so snapped windows clear the panel.
func (e *Engine) adjustedUsable(screen screens.Screen) geometry.Rect {
	e.mu.Lock()
	offset, ok := e.dockOffsets[screen.ID]
	e.mu.Unlock()

	usable := screen.Usable
	if ok {
		usable.Y -= offset
	}
	return usable
}

func fullWidth(frame, usable geometry.Rect) bool {
	d := frame.Width - usable.Width
	if d < 0 {
		d = -d
	}
	return d <= geometry.PositionTolerance
}
