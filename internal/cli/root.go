// Package cli is the aurora command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iburimskiy/aurora/internal/assets"
	"github.com/iburimskiy/aurora/internal/audio"
	"github.com/iburimskiy/aurora/internal/avatar"
	"github.com/iburimskiy/aurora/internal/config"
	"github.com/iburimskiy/aurora/internal/game"
	"github.com/iburimskiy/aurora/internal/logging"
	"github.com/iburimskiy/aurora/internal/status"
)

// flag name -> config key
var flagKeys = map[string]string{
	"status":        "paths.status",
	"faces":         "paths.faces",
	"sounds":        "paths.sounds",
	"sound":         "sound.enabled",
	"log-level":     "logging.level",
	"debug-overlay": "window.debug_overlay",
}

// NewRootCommand builds the aurora command.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile    string
		windowed   bool
		pickStatus bool
	)

	cmd := &cobra.Command{
		Use:   "aurora",
		Short: "Floating eyes that react to an assistant's status file",
		Long: `Aurora shows a full-screen pair of eyes that wander idly and react to a
status file written by another process: a spinner while it is processing,
a face per emotion, a waiting face, and the latest output text.

Press Escape to quit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, v, err := loadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}
			if windowed {
				cfg.Window.Fullscreen = false
			}

			log, err := logging.New(cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if pickStatus {
				path, err := pickStatusFile()
				if err != nil {
					return err
				}
				if path != "" {
					cfg.Paths.Status = path
				}
			}

			return run(cmd.Context(), cfg, log, v)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/aurora/config.yaml)")
	f.String("status", "", "status file to watch (default api.py)")
	f.String("faces", "", "directory of face images (default src/eyes)")
	f.String("sounds", "", "directory of sound cues (default src/sounds)")
	f.Bool("sound", false, "play a sound cue on face changes")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.Bool("debug-overlay", false, "print TPS, face and status revision on screen")
	f.BoolVar(&windowed, "windowed", false, "run in a window instead of full screen")
	f.BoolVar(&pickStatus, "pick-status", false, "choose the status file with a file dialog")

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig layers flags over environment, config file and defaults.
func loadConfig(cmd *cobra.Command, cfgFile string) (*config.Config, *viper.Viper, error) {
	v := config.NewViper(cfgFile)
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, nil, fmt.Errorf("bind --%s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v, cfgFile != "")
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, v *viper.Viper) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("starting",
		zap.String("config", v.ConfigFileUsed()),
		zap.String("status", cfg.Paths.Status),
		zap.String("faces", cfg.Paths.Faces),
		zap.Bool("fullscreen", cfg.Window.Fullscreen),
	)

	faces := assets.NewLibrary(cfg.Paths.Faces, config.FaceSize, log)
	go func() {
		if err := faces.Watch(ctx); err != nil {
			log.Warn("face images will not reload on change", zap.Error(err))
		}
	}()

	opts := game.Options{
		Motion:         motionParams(cfg.Motion),
		MotionInterval: cfg.Motion.Interval(),
		PollInterval:   cfg.Poll.Interval(),
		DebugOverlay:   cfg.Window.DebugOverlay,
		Poller:         status.NewPoller(status.NewFileProvider(cfg.Paths.Status), log),
		Faces:          faces,
	}
	if cfg.Sound.Enabled {
		opts.Cue = audio.NewPlayer(cfg.Paths.Sounds, log).Cue
	}

	g, err := game.New(opts, log)
	if err != nil {
		return err
	}

	err = game.Run(g, game.WindowOptions{
		Title:          cfg.Window.Title,
		Fullscreen:     cfg.Window.Fullscreen,
		MotionInterval: cfg.Motion.Interval(),
	})
	log.Info("stopped")
	return err
}

func motionParams(m config.MotionConfig) avatar.Params {
	p := avatar.DefaultParams()
	p.Friction = m.Friction
	p.Acceleration = m.Acceleration
	p.MinSpeed = m.MinSpeed
	p.EdgeMargin = m.EdgeMargin
	p.Radius = m.Radius
	return p
}

// pickStatusFile asks for a status file. Cancelling returns "".
func pickStatusFile() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Choose Status File"),
		zenity.FileFilters{
			{Name: "Status", Patterns: []string{"*.py", "*.yaml", "*.yml", "*.json"}},
			{Name: "All files", Patterns: []string{"*"}},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", nil
		}
		return "", fmt.Errorf("status file dialog: %w", err)
	}
	return filename, nil
}
