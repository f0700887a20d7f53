package geometry

import "fmt"

// Action identifies a window positioning command.
type Action string

const (
	ActionLeftHalf   Action = "left-half"
	ActionRightHalf  Action = "right-half"
	ActionTopHalf    Action = "top-half"
	ActionBottomHalf Action = "bottom-half"

	ActionFirstQuarter  Action = "first-quarter"
	ActionSecondQuarter Action = "second-quarter"
	ActionThirdQuarter  Action = "third-quarter"
	ActionFourthQuarter Action = "fourth-quarter"

	ActionFirstThird  Action = "first-third"
	ActionCenterThird Action = "center-third"
	ActionLastThird   Action = "last-third"

	ActionFirstTwoThirds Action = "first-two-thirds"
	ActionLastTwoThirds  Action = "last-two-thirds"

	ActionFirstThreeQuarters Action = "first-three-quarters"
	ActionLastThreeQuarters  Action = "last-three-quarters"

	ActionCycleQuarters      Action = "cycle-quarters"
	ActionCycleThirds        Action = "cycle-thirds"
	ActionCycleTwoThirds     Action = "cycle-two-thirds"
	ActionCycleThreeQuarters Action = "cycle-three-quarters"

	ActionMaximize   Action = "maximize"
	ActionFullscreen Action = "fullscreen"
	ActionCenter     Action = "center"

	ActionNextDisplay     Action = "next-display"
	ActionPreviousDisplay Action = "previous-display"
)

var allActions = []Action{
	ActionLeftHalf, ActionRightHalf, ActionTopHalf, ActionBottomHalf,
	ActionFirstQuarter, ActionSecondQuarter, ActionThirdQuarter, ActionFourthQuarter,
	ActionFirstThird, ActionCenterThird, ActionLastThird,
	ActionFirstTwoThirds, ActionLastTwoThirds,
	ActionFirstThreeQuarters, ActionLastThreeQuarters,
	ActionCycleQuarters, ActionCycleThirds, ActionCycleTwoThirds, ActionCycleThreeQuarters,
	ActionMaximize, ActionFullscreen, ActionCenter,
	ActionNextDisplay, ActionPreviousDisplay,
}

// Actions returns every known action.
func Actions() []Action {
	out := make([]Action, len(allActions))
	copy(out, allActions)
	return out
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	for _, a := range allActions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// IsCycle reports whether the action cycles through a position family.
func (a Action) IsCycle() bool {
	switch a {
	case ActionCycleQuarters, ActionCycleThirds, ActionCycleTwoThirds, ActionCycleThreeQuarters:
		return true
	}
	return false
}

// IsDisplayMove reports whether the action moves the window between displays.
func (a Action) IsDisplayMove() bool {
	return a == ActionNextDisplay || a == ActionPreviousDisplay
}

// TargetFrame computes the target rectangle for a static action. Cycle and
// display-move actions need current-position context owned by the snap
// engine and are rejected here.
func TargetFrame(a Action, current, usable Rect) (Rect, error) {
	switch a {
	case ActionLeftHalf:
		return LeftHalfFrame(usable), nil
	case ActionRightHalf:
		return RightHalfFrame(usable), nil
	case ActionTopHalf:
		return TopHalfFrame(usable), nil
	case ActionBottomHalf:
		return BottomHalfFrame(usable), nil
	case ActionFirstQuarter, ActionSecondQuarter, ActionThirdQuarter, ActionFourthQuarter:
		return QuarterFrame(quarterIndex(a), usable), nil
	case ActionFirstThird, ActionCenterThird, ActionLastThird:
		return ThirdFrame(thirdIndex(a), usable), nil
	case ActionFirstTwoThirds, ActionLastTwoThirds:
		return TwoThirdsFrame(pairIndex(a, ActionFirstTwoThirds), usable), nil
	case ActionFirstThreeQuarters, ActionLastThreeQuarters:
		return ThreeQuartersFrame(pairIndex(a, ActionFirstThreeQuarters), usable), nil
	case ActionMaximize, ActionFullscreen:
		return usable, nil
	case ActionCenter:
		return CenterFrame(current, usable), nil
	}
	return Rect{}, fmt.Errorf("action %q has no static target frame", a)
}

func quarterIndex(a Action) int {
	switch a {
	case ActionSecondQuarter:
		return 2
	case ActionThirdQuarter:
		return 3
	case ActionFourthQuarter:
		return 4
	}
	return 1
}

func thirdIndex(a Action) int {
	switch a {
	case ActionCenterThird:
		return 2
	case ActionLastThird:
		return 3
	}
	return 1
}

func pairIndex(a, first Action) int {
	if a == first {
		return 1
	}
	return 2
}
