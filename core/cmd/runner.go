package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/weatherbot/core/bootstrap"
	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/service"
)

// Options describe how to load configuration, bootstrap the app, and run it.
type Options struct {
	// ConfigEnvVar names the variable holding an optional YAML path; default CONFIG_PATH.
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (*coreconfig.Config, error)
	Bootstrap  func(cfg *coreconfig.Config) (*bootstrap.Result, error)
	// Services composes the service group from the loaded config and infrastructure.
	Services func(cfg *coreconfig.Config, infra *bootstrap.Result) (*service.Group, error)

	// Signals stop the group; default SIGINT and SIGTERM.
	Signals []os.Signal
}

// Run loads configuration, bootstraps infrastructure and runs the service
// group until a stop signal arrives or the foreground service ends.
func Run(opts Options) error {
	if opts.Services == nil {
		return fmt.Errorf("cmd: Services is required")
	}
	load := opts.LoadConfig
	if load == nil {
		load = coreconfig.Load
	}
	boot := opts.Bootstrap
	if boot == nil {
		boot = func(cfg *coreconfig.Config) (*bootstrap.Result, error) {
			return bootstrap.Run(bootstrap.Options{Config: cfg})
		}
	}

	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}

	cfg, err := load(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	startedAt := time.Now()
	infra, err := boot(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer func() {
		if err := infra.Logger.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "logger shutdown error: %v\n", err)
		}
	}()
	appLog := infra.Logger.Component("app")

	group, err := opts.Services(cfg, infra)
	if err != nil {
		appLog.Error("service composition failed",
			slog.String("event", "wire"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("cmd: services build failed: %w", err)
	}
	if group.Log == nil {
		group.Log = appLog
	}

	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := signal.NotifyContext(context.Background(), signals...)
	defer cancel()
	ctx = logger.WithLogger(ctx, appLog)

	appLog.Info("app ready",
		slog.String("event", "ready"),
		slog.Duration("startup_duration", logger.Took(startedAt)),
	)
	runErr := group.Run(ctx)
	appLog.Info("shutting down...",
		slog.String("event", "shutdown"),
		slog.String("status", logger.Status(runErr)),
	)
	return runErr
}
