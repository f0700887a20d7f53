// Package hotkeys registers global key bindings on the X root window and
// tracks ownership so two features can never silently claim the same key.
package hotkeys

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"
)

// ConflictError names both claimants of a binding.
type ConflictError struct {
	Binding  string
	Owner    string
	Claimant string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("binding %s requested by %q is already owned by %q",
		e.Binding, e.Claimant, e.Owner)
}

// Handler manages global keyboard shortcuts.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	log  zerolog.Logger

	mu     sync.Mutex
	owners map[string]string // normalized "mods:keycode" -> owner
}

var ignoreModsOnce sync.Once

// NewHandler builds a handler over an X connection. keybind must already be
// initialized on the connection.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, log zerolog.Logger) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{
		xu:     xu,
		root:   root,
		log:    log,
		owners: make(map[string]string),
	}
}

// Bind registers a callback for a key sequence such as "Mod4-shift-h".
// A sequence already owned by another feature returns a ConflictError and
// leaves the existing binding in place.
func (h *Handler) Bind(owner, sequence string, callback func()) error {
	mods, keycodes, err := keybind.ParseString(h.xu, sequence)
	if err != nil {
		return fmt.Errorf("invalid key sequence %q: %w", sequence, err)
	}
	if len(keycodes) == 0 {
		return fmt.Errorf("key sequence %q maps to no keycode", sequence)
	}

	if err := h.claim(owner, mods, keycodes[0]); err != nil {
		return err
	}

	err = keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, sequence, true)
	if err != nil {
		h.release(mods, keycodes[0])
		return fmt.Errorf("failed to grab %q: %w", sequence, err)
	}

	h.log.Debug().Str("owner", owner).Str("binding", sequence).Msg("hotkey bound")
	return nil
}

// BindKeyCode registers a callback for a raw keycode and modifier mask, the
// form scene shortcuts are stored in. The pair is rendered back into a key
// sequence for the grab.
func (h *Handler) BindKeyCode(owner string, keyCode, modifiers uint32, callback func()) error {
	kc := xproto.Keycode(keyCode)
	mods := uint16(modifiers)

	keysym := keybind.LookupString(h.xu, 0, kc)
	if keysym == "" {
		return fmt.Errorf("keycode %d maps to no keysym", keyCode)
	}
	sequence := sequenceString(mods, keysym)

	if err := h.claim(owner, mods, kc); err != nil {
		return err
	}

	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, sequence, true)
	if err != nil {
		h.release(mods, kc)
		return fmt.Errorf("failed to grab keycode %d (mods %#x): %w", keyCode, modifiers, err)
	}

	h.log.Debug().Str("owner", owner).Str("binding", sequence).Msg("hotkey bound")
	return nil
}

// sequenceString renders a modifier mask and keysym in keybind's sequence
// syntax, e.g. "mod4-shift-h".
func sequenceString(mods uint16, keysym string) string {
	var out string
	for _, m := range []struct {
		mask uint16
		name string
	}{
		{xproto.ModMaskShift, "shift"},
		{xproto.ModMaskControl, "control"},
		{xproto.ModMask1, "mod1"},
		{xproto.ModMask2, "mod2"},
		{xproto.ModMask3, "mod3"},
		{xproto.ModMask4, "mod4"},
		{xproto.ModMask5, "mod5"},
	} {
		if mods&m.mask != 0 {
			out += m.name + "-"
		}
	}
	return out + keysym
}

// UnbindAll releases every grab this handler owns, for config reload.
func (h *Handler) UnbindAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	h.owners = make(map[string]string)
	h.log.Debug().Msg("all hotkeys released")
}

func (h *Handler) claim(owner string, mods uint16, kc xproto.Keycode) error {
	key := bindingKey(mods, kc)

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.owners[key]; ok {
		return &ConflictError{Binding: key, Owner: existing, Claimant: owner}
	}
	h.owners[key] = owner
	return nil
}

func (h *Handler) release(mods uint16, kc xproto.Keycode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.owners, bindingKey(mods, kc))
}

func bindingKey(mods uint16, kc xproto.Keycode) string {
	return fmt.Sprintf("%#x:%d", mods, kc)
}

// configureIgnoreMods makes grabs fire regardless of lock-key state.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
