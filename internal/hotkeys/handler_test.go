package hotkeys

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestSequenceString(t *testing.T) {
	tests := []struct {
		mods   uint16
		keysym string
		want   string
	}{
		{0, "h", "h"},
		{xproto.ModMask4, "h", "mod4-h"},
		{xproto.ModMask4 | xproto.ModMaskShift, "h", "shift-mod4-h"},
		{xproto.ModMaskControl | xproto.ModMask1, "Return", "control-mod1-Return"},
	}
	for _, tt := range tests {
		if got := sequenceString(tt.mods, tt.keysym); got != tt.want {
			t.Errorf("sequenceString(%#x, %q) = %q, want %q", tt.mods, tt.keysym, got, tt.want)
		}
	}
}

func TestClaimReportsOwner(t *testing.T) {
	h := &Handler{owners: make(map[string]string)}

	if err := h.claim("snap:left-half", xproto.ModMask4, 43); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	err := h.claim("scene:coding", xproto.ModMask4, 43)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Owner != "snap:left-half" || conflict.Claimant != "scene:coding" {
		t.Errorf("conflict misattributed: %+v", conflict)
	}

	// Different modifiers on the same keycode are a distinct binding.
	if err := h.claim("scene:coding", xproto.ModMask4|xproto.ModMaskShift, 43); err != nil {
		t.Errorf("distinct binding rejected: %v", err)
	}

	h.release(xproto.ModMask4, 43)
	if err := h.claim("scene:coding", xproto.ModMask4, 43); err != nil {
		t.Errorf("claim after release failed: %v", err)
	}
}
