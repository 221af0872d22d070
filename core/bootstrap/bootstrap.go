package bootstrap

import (
	"fmt"

	"github.com/m3rciful/weatherbot/core/buildinfo"
	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/metrics"
)

// Options control the generic bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit  func(logger.Options) (*logger.Logger, error)
	MetricsInit func() *metrics.Metrics
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Run initializes the logger and the metrics registry.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.New
	}
	lg, err := loggerInit(logger.FromConfig(opts.Config))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	lg.LogStartup(opts.Config.Logging.Profile)

	metricsInit := opts.MetricsInit
	if metricsInit == nil {
		metricsInit = metrics.New
	}
	m := metricsInit()
	m.SetBuildInfo(buildinfo.Version, buildinfo.Commit)

	return &Result{Logger: lg, Metrics: m}, nil
}
