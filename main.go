package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scheerer/sunset/internal/backlight"
	"github.com/scheerer/sunset/internal/config"
	"github.com/scheerer/sunset/internal/display"
	"github.com/scheerer/sunset/internal/lights"
	"github.com/scheerer/sunset/internal/lights/lifx"
	"github.com/scheerer/sunset/internal/logging"
	"github.com/scheerer/sunset/internal/metrics"
	"github.com/scheerer/sunset/internal/redshift"
	"github.com/scheerer/sunset/internal/server"
)

var logger = logging.New("main")

func main() {
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var listen, logLevel, logFile string

	cmd := &cobra.Command{
		Use:   "sunset",
		Short: "HTTP control for screen brightness and color temperature",
		Long: "sunset serves /get, /set?brightness=<10-200>, /brighter and /darker.\n" +
			"Values above 100 drive the backlight through `light`, values at or below 100\n" +
			"dim the screen through `redshift`.",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			c, err := config.Load()
			if err != nil {
				logger.With(zap.Error(err)).Fatal("Failed to load configuration")
			}

			flags := cmd.Flags()
			if flags.Changed("listen") {
				c.ListenAddr = listen
			}
			if flags.Changed("log-level") {
				c.LogLevel = logLevel
			}
			if flags.Changed("log-file") {
				c.LogFile = logFile
			}
			if err := c.Validate(); err != nil {
				logger.With(zap.Error(err)).Fatal("Invalid configuration")
			}

			Run(c)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides LISTEN_ADDR)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "log file path, empty to disable (overrides LOG_FILE)")

	return cmd
}

func Run(c config.Config) {
	setupLogging(c)

	logger.With(zap.Any("config", c)).Info("Starting sunset")
	logger.Info("Adjust LIGHT_PATH and REDSHIFT_PATH if the tools are not on PATH.")
	logger.Info("Adjust REDSHIFT_METHOD to match your display server (wayland, randr, vidmode).")
	logger.Info("Set LIFX_GROUP to mirror the backlight level onto a group of LIFX lights.")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rs := redshift.New(redshift.Config{
		Path:        c.RedshiftPath,
		Method:      c.RedshiftMethod,
		Temperature: c.ColorTemperature,
	})
	colorTemp := display.ColorTemperatureFunc(func(factor float64) (display.Daemon, error) {
		p, err := rs.Start(factor)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	recorder := metrics.New()
	opts := []display.Option{display.WithObserver(recorder)}

	mirrors := startMirrors(ctx, c)
	if len(mirrors) > 0 {
		opts = append(opts, display.WithMirrors(mirrors...))
	}

	state, err := display.NewState(ctx, backlight.New(backlight.Config{Path: c.LightPath}), colorTemp, opts...)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Could not initialize brightness")
	}

	srv := server.New(server.Config{ListenAddr: c.ListenAddr}, state, recorder.Handler())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		state.Close()
		logger.With(zap.Error(err), zap.String("addr", c.ListenAddr)).Fatal("Could not run web server")
	case <-shutdown:
	}

	logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.With(zap.Error(err)).Warn("HTTP server did not shut down cleanly")
	}

	state.Close()
	for _, m := range mirrors {
		if err := m.Close(); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to close light mirror")
		}
	}
	cancel()
}

func setupLogging(c config.Config) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		logger.With(zap.String("level", c.LogLevel), zap.Error(err)).Warn("Unknown log level, keeping info")
		level = zapcore.InfoLevel
	}
	logging.GetLeveler().SetAll(level)

	if err := logging.SetFile(c.LogFile, c.LogMaxSizeMB, c.LogMaxBackups); err != nil {
		logger.With(zap.String("file", c.LogFile), zap.Error(err)).Fatal("Could not set up log file")
	}
}

func startMirrors(ctx context.Context, c config.Config) []lights.Mirror {
	if c.LifxGroup == "" {
		return nil
	}

	l, err := lifx.NewLifx(ctx, lifx.Config{
		GroupName:     c.LifxGroup,
		Kelvin:        c.ColorTemperature,
		MinBrightness: c.LifxMinBrightness,
		MaxBrightness: c.LifxMaxBrightness,
	})
	if err != nil {
		logger.With(zap.String("group", c.LifxGroup), zap.Error(err)).Warn("Failed to create LIFX light mirror")
		return nil
	}
	return []lights.Mirror{l}
}
