// Package daemon wires the backend, engines, hotkeys and IPC server into
// a long-running process.
package daemon

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tachyon-app/tachyon/internal/backend"
	"github.com/tachyon-app/tachyon/internal/config"
	"github.com/tachyon-app/tachyon/internal/geometry"
	"github.com/tachyon-app/tachyon/internal/hotkeys"
	"github.com/tachyon-app/tachyon/internal/ipc"
	"github.com/tachyon-app/tachyon/internal/runtimepath"
	"github.com/tachyon-app/tachyon/internal/scene"
	"github.com/tachyon-app/tachyon/internal/snap"
)

// Daemon owns the long-lived components of the process.
type Daemon struct {
	log zerolog.Logger

	x11       *backend.X11
	store     *scene.Store
	engine    *snap.Engine
	activator *scene.Activator
	hotkeys   *hotkeys.Handler
	server    *ipc.Server

	cfg        *config.Config
	reloadChan chan struct{}
}

// New builds a daemon from the loaded configuration.
func New(cfg *config.Config, log zerolog.Logger) (*Daemon, error) {
	x11, err := backend.NewX11()
	if err != nil {
		return nil, err
	}
	if !x11.CheckPermission() {
		log.Warn().Msg("cannot control windows; check the X connection")
	}

	dataDir, err := runtimepath.DataDir()
	if err != nil {
		x11.Close()
		return nil, err
	}
	store, err := scene.OpenStore(filepath.Join(dataDir, "scenes.db"), log)
	if err != nil {
		x11.Close()
		return nil, err
	}

	engine := snap.New(x11, x11, log)
	launcher := backend.NewAppLauncher(x11, log)
	activator := scene.NewActivator(x11, x11, engine, launcher,
		time.Duration(cfg.SpawnTimeoutSeconds)*time.Second, log)

	d := &Daemon{
		log:        log,
		x11:        x11,
		store:      store,
		engine:     engine,
		activator:  activator,
		hotkeys:    hotkeys.NewHandler(x11.XUtil(), x11.RootWindow(), log),
		cfg:        cfg,
		reloadChan: make(chan struct{}, 1),
	}

	d.server, err = ipc.NewServer(engine, store, activator, x11, x11, d.reloadChan, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Run binds hotkeys, starts the IPC server and the config watcher, then
// blocks in the X event loop until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.bindAll()

	if err := d.server.Start(); err != nil {
		return err
	}

	cfgPath, err := config.DefaultPath()
	if err == nil {
		err = config.Watch(ctx, cfgPath, func() {
			select {
			case d.reloadChan <- struct{}{}:
			default:
			}
		}, d.log)
	}
	if err != nil {
		d.log.Warn().Err(err).Msg("config watcher unavailable; use the reload command")
	}

	go d.reloadLoop(ctx)

	d.log.Info().Msg("daemon running")
	d.x11.EventLoop()
	return nil
}

// Close releases the daemon's resources.
func (d *Daemon) Close() {
	if d.server != nil {
		d.server.Stop()
	}
	if d.store != nil {
		d.store.Close()
	}
	if d.x11 != nil {
		d.x11.Close()
	}
}

func (d *Daemon) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.reloadChan:
			if err := d.reload(); err != nil {
				d.log.Error().Err(err).Msg("reload failed; keeping previous configuration")
			}
		}
	}
}

func (d *Daemon) reload() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d.cfg = cfg
	d.activator.SetSpawnTimeout(time.Duration(cfg.SpawnTimeoutSeconds) * time.Second)

	d.hotkeys.UnbindAll()
	d.bindAll()
	d.log.Info().Msg("configuration reloaded")
	return nil
}

// bindAll registers the snap bindings from config and the shortcuts of
// every enabled scene. Conflicts are logged and skipped, never fatal.
func (d *Daemon) bindAll() {
	for action, sequence := range d.cfg.Bindings {
		action := action
		err := d.hotkeys.Bind("snap:"+action, sequence, func() {
			a, err := geometry.ParseAction(action)
			if err != nil {
				return
			}
			if err := d.engine.Execute(a); err != nil {
				d.log.Warn().Str("action", action).Err(err).Msg("snap failed")
			}
		})
		if err != nil {
			d.log.Warn().Str("action", action).Str("binding", sequence).Err(err).
				Msg("snap binding skipped")
		}
	}

	scenes, err := d.store.List()
	if err != nil {
		d.log.Warn().Err(err).Msg("failed to load scenes for shortcut binding")
		return
	}
	for _, sc := range scenes {
		if !sc.Enabled || sc.Shortcut == nil {
			continue
		}
		sc := sc
		err := d.hotkeys.BindKeyCode("scene:"+sc.Name, sc.Shortcut.KeyCode, sc.Shortcut.Modifiers, func() {
			d.activateScene(sc.Name)
		})
		if err != nil {
			d.log.Warn().Str("scene", sc.Name).Err(err).Msg("scene shortcut skipped")
		}
	}
}

func (d *Daemon) activateScene(name string) {
	sc, err := d.store.Get(name)
	if err != nil {
		d.log.Warn().Str("scene", name).Err(err).Msg("scene lookup failed")
		return
	}
	windows, err := d.store.Windows(sc.ID)
	if err != nil {
		d.log.Warn().Str("scene", name).Err(err).Msg("scene window load failed")
		return
	}

	results := d.activator.Activate(context.Background(), sc, windows)
	for _, r := range results {
		if r.Err != nil {
			d.log.Warn().Str("scene", name).Str("app", r.Window.AppID).Err(r.Err).
				Msg("scene window failed")
		}
	}
}
