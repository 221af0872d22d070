package bootstrap

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/logger"
)

func TestRunNilConfig(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunInitializesLoggerAndMetrics(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &coreconfig.Config{}
	cfg.Logging.Format = "kv"

	res, err := Run(Options{
		Config: cfg,
		LoggerInit: func(opts logger.Options) (*logger.Logger, error) {
			opts.Output = buf
			return logger.New(opts)
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Metrics == nil || res.Metrics.Registry() == nil {
		t.Fatal("metrics not initialized")
	}
	if err := res.Logger.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "event=startup") {
		t.Fatalf("startup line missing: %s", buf.String())
	}
}

func TestRunLoggerFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(logger.Options) (*logger.Logger, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
