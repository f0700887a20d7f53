package scene

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "scenes.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleWindows(sceneID int64) []Window {
	return []Window{
		{SceneID: sceneID, AppID: "firefox", DisplayIndex: 0, X: 0, Y: 0, Width: 0.5, Height: 1},
		{SceneID: sceneID, AppID: "alacritty", AppPath: "/usr/bin/alacritty", DisplayIndex: 1, X: 0.5, Y: 0, Width: 0.5, Height: 0.5},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	sc := &Scene{Name: "coding", Enabled: true, DisplayCount: 2,
		Shortcut: &Shortcut{KeyCode: 38, Modifiers: 0x40}}
	if err := s.Save(sc, sampleWindows(0)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if sc.ID == 0 {
		t.Fatal("save did not assign an id")
	}

	got, err := s.Get("coding")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.DisplayCount != 2 || !got.Enabled {
		t.Errorf("unexpected scene: %+v", got)
	}
	if got.Shortcut == nil || got.Shortcut.KeyCode != 38 || got.Shortcut.Modifiers != 0x40 {
		t.Errorf("unexpected shortcut: %+v", got.Shortcut)
	}

	windows, err := s.Windows(got.ID)
	if err != nil {
		t.Fatalf("windows failed: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].AppID != "firefox" || windows[1].AppID != "alacritty" {
		t.Errorf("saved order not preserved: %+v", windows)
	}
}

func TestStore_SaveReplacesWindowSet(t *testing.T) {
	s := newTestStore(t)

	sc := &Scene{Name: "coding", Enabled: true, DisplayCount: 1}
	if err := s.Save(sc, sampleWindows(0)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	replacement := []Window{{AppID: "emacs", X: 0, Y: 0, Width: 1, Height: 1}}
	if err := s.Save(sc, replacement); err != nil {
		t.Fatalf("resave failed: %v", err)
	}

	windows, err := s.Windows(sc.ID)
	if err != nil {
		t.Fatalf("windows failed: %v", err)
	}
	if len(windows) != 1 || windows[0].AppID != "emacs" {
		t.Errorf("window set was not replaced: %+v", windows)
	}
}

func TestStore_ShortcutConflict(t *testing.T) {
	s := newTestStore(t)

	shortcut := &Shortcut{KeyCode: 38, Modifiers: 0x40}
	first := &Scene{Name: "coding", Enabled: true, DisplayCount: 1, Shortcut: shortcut}
	if err := s.Save(first, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	second := &Scene{Name: "writing", Enabled: true, DisplayCount: 1, Shortcut: shortcut}
	err := s.Save(second, nil)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Scene != "coding" {
		t.Errorf("conflict names scene %q, want coding", conflict.Scene)
	}

	// Re-saving the owning scene with its own shortcut is not a conflict.
	if err := s.Save(first, nil); err != nil {
		t.Errorf("owner resave failed: %v", err)
	}
}

func TestStore_DisabledSceneShortcutIsReusable(t *testing.T) {
	s := newTestStore(t)

	shortcut := &Shortcut{KeyCode: 38, Modifiers: 0x40}
	first := &Scene{Name: "coding", Enabled: true, DisplayCount: 1, Shortcut: shortcut}
	if err := s.Save(first, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SetEnabled("coding", false); err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	// A disabled scene holds no binding; its shortcut is free for reuse.
	second := &Scene{Name: "writing", Enabled: true, DisplayCount: 1, Shortcut: shortcut}
	if err := s.Save(second, nil); err != nil {
		t.Fatalf("disabled scene's shortcut blocked reuse: %v", err)
	}

	// Re-enabling the first scene would duplicate the live binding.
	err := s.SetEnabled("coding", true)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on re-enable, got %v", err)
	}
	if conflict.Scene != "writing" {
		t.Errorf("conflict names scene %q, want writing", conflict.Scene)
	}

	got, err := s.Get("coding")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Enabled {
		t.Error("rejected re-enable must not flip the enabled flag")
	}
}

func TestStore_RejectsInvalidWindow(t *testing.T) {
	s := newTestStore(t)

	bad := []Window{{AppID: "firefox", X: 1.5, Y: 0, Width: 0.5, Height: 1}}
	if err := s.Save(&Scene{Name: "broken", DisplayCount: 1}, bad); err == nil {
		t.Fatal("expected validation error for x fraction > 1")
	}

	zero := []Window{{AppID: "firefox", X: 0, Y: 0, Width: 0, Height: 1}}
	if err := s.Save(&Scene{Name: "broken", DisplayCount: 1}, zero); err == nil {
		t.Fatal("expected validation error for zero width")
	}
}

func TestStore_DeleteCascades(t *testing.T) {
	s := newTestStore(t)

	sc := &Scene{Name: "coding", Enabled: true, DisplayCount: 1}
	if err := s.Save(sc, sampleWindows(0)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Delete("coding"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := s.Get("coding"); err == nil {
		t.Error("scene still present after delete")
	}
	windows, err := s.Windows(sc.ID)
	if err != nil {
		t.Fatalf("windows failed: %v", err)
	}
	if len(windows) != 0 {
		t.Errorf("windows survived cascade: %+v", windows)
	}

	if err := s.Delete("coding"); err == nil {
		t.Error("deleting a missing scene should fail")
	}
}

func TestStore_ListOrdersByName(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"writing", "coding", "media"} {
		if err := s.Save(&Scene{Name: name, Enabled: true, DisplayCount: 1}, nil); err != nil {
			t.Fatalf("save %q failed: %v", name, err)
		}
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var names []string
	for _, sc := range list {
		names = append(names, sc.Name)
	}
	want := []string{"coding", "media", "writing"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got order %v, want %v", names, want)
		}
	}
}

func TestStore_SetEnabled(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(&Scene{Name: "coding", Enabled: true, DisplayCount: 1}, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SetEnabled("coding", false); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	got, err := s.Get("coding")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Enabled {
		t.Error("scene still enabled")
	}
}
