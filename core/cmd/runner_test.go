package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/weatherbot/core/bootstrap"
	coreconfig "github.com/m3rciful/weatherbot/core/config"
	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/core/service"
)

type oneShot struct{ err error }

func (o oneShot) Name() string                { return "oneshot" }
func (o oneShot) Start(context.Context) error { return o.err }
func (o oneShot) Stop(context.Context) error  { return nil }

func bootInto(buf *bytes.Buffer) func(*coreconfig.Config) (*bootstrap.Result, error) {
	return func(cfg *coreconfig.Config) (*bootstrap.Result, error) {
		lg, err := logger.New(logger.Options{Format: "kv", Output: buf})
		if err != nil {
			return nil, err
		}
		return &bootstrap.Result{Logger: lg}, nil
	}
}

func TestRunConfigErrorStopsEarly(t *testing.T) {
	missing := errors.New("API_KEY is not set in the environment (.env)")
	booted := false
	err := Run(Options{
		LoadConfig: func(string) (*coreconfig.Config, error) { return nil, missing },
		Bootstrap: func(*coreconfig.Config) (*bootstrap.Result, error) {
			booted = true
			return nil, nil
		},
		Services: func(*coreconfig.Config, *bootstrap.Result) (*service.Group, error) { return nil, nil },
	})
	if !errors.Is(err, missing) {
		t.Fatalf("err = %v", err)
	}
	if booted {
		t.Fatal("bootstrap must not run after a config error")
	}
}

func TestRunReturnsForegroundError(t *testing.T) {
	buf := &bytes.Buffer{}
	boom := errors.New("unauthorized")
	t.Setenv("CONFIG_PATH", "custom.yaml")

	var gotPath string
	err := Run(Options{
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			gotPath = path
			return &coreconfig.Config{}, nil
		},
		Bootstrap: bootInto(buf),
		Services: func(*coreconfig.Config, *bootstrap.Result) (*service.Group, error) {
			return &service.Group{Foreground: oneShot{err: boom}}, nil
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if gotPath != "custom.yaml" {
		t.Fatalf("config path = %q", gotPath)
	}
	for _, want := range []string{"event=ready", "event=shutdown", "status=fail"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %s in %s", want, buf.String())
		}
	}
}

func TestRunRequiresServices(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error")
	}
}
