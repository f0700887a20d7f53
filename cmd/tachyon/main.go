package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tachyon-app/tachyon/internal/config"
	"github.com/tachyon-app/tachyon/internal/daemon"
	"github.com/tachyon-app/tachyon/internal/geometry"
	"github.com/tachyon-app/tachyon/internal/ipc"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tachyon",
		Short: "Window snapping and scene restore for X11",
	}
	rootCmd.AddCommand(
		newDaemonCmd(),
		newSnapCmd(),
		newSceneCmd(),
		newStatusCmd(),
		newScreensCmd(),
		newReloadCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the hotkey and IPC daemon",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)

			d, err := daemon.New(cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				log.Info().Msg("shutting down")
				d.Close()
				os.Exit(0)
			}()

			return d.Run(ctx)
		},
	}
}

func newSnapCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "snap <action>",
		Short:     "Snap the frontmost window",
		Long:      "Snap the frontmost window.\n\nActions:\n  " + strings.Join(actionNames(), "\n  "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: actionNames(),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := geometry.ParseAction(args[0]); err != nil {
				return err
			}
			return ipc.NewClient().Snap(args[0])
		},
	}
}

func newSceneCmd() *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Manage saved window scenes",
	}

	sceneCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved scenes",
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := ipc.NewClient().ListScenes()
			if err != nil {
				return err
			}
			if len(data.Scenes) == 0 {
				fmt.Println("No scenes saved.")
				return nil
			}
			for _, sc := range data.Scenes {
				state := "enabled"
				if !sc.Enabled {
					state = "disabled"
				}
				shortcut := ""
				if sc.HasShortcut {
					shortcut = ", shortcut"
				}
				fmt.Printf("%-20s %d windows, %d displays (%s%s)\n",
					sc.Name, sc.WindowCount, sc.DisplayCount, state, shortcut)
			}
			return nil
		},
	})

	sceneCmd.AddCommand(&cobra.Command{
		Use:   "activate <name>",
		Short: "Restore a scene's window layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := ipc.NewClient().ActivateScene(args[0])
			if err != nil {
				return err
			}
			failed := 0
			for _, w := range data.Windows {
				if w.Error != "" {
					failed++
					fmt.Printf("  %s: %s\n", w.AppID, w.Error)
					continue
				}
				verb := "placed"
				if w.Spawned {
					verb = "spawned"
				}
				fmt.Printf("  %s: %s\n", w.AppID, verb)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d windows failed", failed, len(data.Windows))
			}
			return nil
		},
	})

	sceneCmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return ipc.NewClient().DeleteScene(args[0])
		},
	})

	sceneCmd.AddCommand(&cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a scene's shortcut",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return ipc.NewClient().EnableScene(args[0], true)
		},
	})

	sceneCmd.AddCommand(&cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a scene's shortcut",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return ipc.NewClient().EnableScene(args[0], false)
		},
	})

	return sceneCmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(_ *cobra.Command, _ []string) error {
			status, err := ipc.NewClient().GetStatus()
			if err != nil {
				return err
			}
			fmt.Printf("Daemon running: uptime %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
			fmt.Printf("Screens: %d\n", status.ScreenCount)
			fmt.Printf("Scenes: %d\n", status.SceneCount)
			if !status.HasPermission {
				fmt.Println("Warning: no window control permission")
			}
			return nil
		},
	}
}

func newScreensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "Show detected screens",
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := ipc.NewClient().GetScreens()
			if err != nil {
				return err
			}
			for _, s := range data.Screens {
				fmt.Printf("%d: %s %gx%g at (%g,%g), usable %gx%g at (%g,%g)\n",
					s.ID, s.Name, s.Width, s.Height, s.X, s.Y,
					s.UsableWidth, s.UsableHeight, s.UsableX, s.UsableY)
			}
			return nil
		},
	}
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload daemon configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			return ipc.NewClient().Reload()
		},
	}
}

func actionNames() []string {
	actions := geometry.Actions()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	sort.Strings(names)
	return names
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()
}
