package scene

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Store persists scenes in a local SQLite database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS scenes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL UNIQUE,
	enabled       INTEGER NOT NULL DEFAULT 1,
	display_count INTEGER NOT NULL DEFAULT 1,
	key_code      INTEGER,
	modifiers     INTEGER
);

CREATE TABLE IF NOT EXISTS scene_windows (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	scene_id      INTEGER NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	app_id        TEXT NOT NULL,
	app_path      TEXT NOT NULL DEFAULT '',
	display_index INTEGER NOT NULL DEFAULT 0,
	x             REAL NOT NULL,
	y             REAL NOT NULL,
	width         REAL NOT NULL,
	height        REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scene_windows_scene ON scene_windows(scene_id, position);
`

// OpenStore opens (creating if needed) the scene database at path.
func OpenStore(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open scene database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize scene schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("scene store opened")
	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save writes a scene and its full window set in one transaction. An
// existing scene with the same ID has its windows replaced wholesale;
// there is no per-window merge.
func (s *Store) Save(sc *Scene, windows []Window) error {
	for _, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	if sc.Shortcut != nil {
		if err := s.ValidateShortcut(*sc.Shortcut, sc.ID); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var keyCode, modifiers interface{}
	if sc.Shortcut != nil {
		keyCode, modifiers = sc.Shortcut.KeyCode, sc.Shortcut.Modifiers
	}

	if sc.ID == 0 {
		res, err := tx.Exec(
			`INSERT INTO scenes (name, enabled, display_count, key_code, modifiers) VALUES (?, ?, ?, ?, ?)`,
			sc.Name, sc.Enabled, sc.DisplayCount, keyCode, modifiers)
		if err != nil {
			return fmt.Errorf("failed to insert scene: %w", err)
		}
		sc.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read scene id: %w", err)
		}
	} else {
		_, err := tx.Exec(
			`UPDATE scenes SET name = ?, enabled = ?, display_count = ?, key_code = ?, modifiers = ? WHERE id = ?`,
			sc.Name, sc.Enabled, sc.DisplayCount, keyCode, modifiers, sc.ID)
		if err != nil {
			return fmt.Errorf("failed to update scene: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM scene_windows WHERE scene_id = ?`, sc.ID); err != nil {
			return fmt.Errorf("failed to clear scene windows: %w", err)
		}
	}

	for i, w := range windows {
		_, err := tx.Exec(
			`INSERT INTO scene_windows (scene_id, position, app_id, app_path, display_index, x, y, width, height)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sc.ID, i, w.AppID, w.AppPath, w.DisplayIndex, w.X, w.Y, w.Width, w.Height)
		if err != nil {
			return fmt.Errorf("failed to insert scene window: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scene: %w", err)
	}
	s.log.Info().Str("scene", sc.Name).Int("windows", len(windows)).Msg("scene saved")
	return nil
}

// ValidateShortcut reports a ConflictError when another enabled scene
// already owns the shortcut. Disabled scenes hold no binding, so their
// shortcuts are free for reuse. excludeID skips the scene being edited.
func (s *Store) ValidateShortcut(sc Shortcut, excludeID int64) error {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM scenes WHERE key_code = ? AND modifiers = ? AND enabled = 1 AND id != ?`,
		sc.KeyCode, sc.Modifiers, excludeID).Scan(&name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check shortcut: %w", err)
	}
	return &ConflictError{Shortcut: sc, Scene: name}
}

// Get returns a scene by name.
func (s *Store) Get(name string) (*Scene, error) {
	row := s.db.QueryRow(
		`SELECT id, name, enabled, display_count, key_code, modifiers FROM scenes WHERE name = ?`, name)
	sc, err := scanScene(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scene %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	return sc, nil
}

// List returns all scenes ordered by name.
func (s *Store) List() ([]*Scene, error) {
	rows, err := s.db.Query(
		`SELECT id, name, enabled, display_count, key_code, modifiers FROM scenes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	defer rows.Close()

	var out []*Scene
	for rows.Next() {
		sc, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Windows returns a scene's windows in saved order.
func (s *Store) Windows(sceneID int64) ([]Window, error) {
	rows, err := s.db.Query(
		`SELECT id, scene_id, app_id, app_path, display_index, x, y, width, height
		 FROM scene_windows WHERE scene_id = ? ORDER BY position`, sceneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene windows: %w", err)
	}
	defer rows.Close()

	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.SceneID, &w.AppID, &w.AppPath,
			&w.DisplayIndex, &w.X, &w.Y, &w.Width, &w.Height); err != nil {
			return nil, fmt.Errorf("failed to scan scene window: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Delete removes a scene and, via the cascade, its windows.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM scenes WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete scene: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("scene %q not found", name)
	}
	s.log.Info().Str("scene", name).Msg("scene deleted")
	return nil
}

// SetEnabled toggles whether a scene's shortcut is registered. Enabling
// re-validates the shortcut: another scene may have taken it while this
// one was disabled.
func (s *Store) SetEnabled(name string, enabled bool) error {
	sc, err := s.Get(name)
	if err != nil {
		return err
	}
	if enabled && sc.Shortcut != nil {
		if err := s.ValidateShortcut(*sc.Shortcut, sc.ID); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(`UPDATE scenes SET enabled = ? WHERE name = ?`, enabled, name); err != nil {
		return fmt.Errorf("failed to update scene: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScene(row rowScanner) (*Scene, error) {
	var sc Scene
	var keyCode, modifiers sql.NullInt64
	if err := row.Scan(&sc.ID, &sc.Name, &sc.Enabled, &sc.DisplayCount, &keyCode, &modifiers); err != nil {
		return nil, err
	}
	if keyCode.Valid {
		sc.Shortcut = &Shortcut{KeyCode: uint32(keyCode.Int64), Modifiers: uint32(modifiers.Int64)}
	}
	return &sc, nil
}
