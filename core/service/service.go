// Package service defines the start/stop contract shared by the long-running
// parts of the bot and a group runner that composes them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
)

// Service is a long-running component.
//
// Start blocks until the service stops. A stop requested through Stop or
// through ctx cancellation returns nil. Stop asks a started service to finish
// and waits at most until ctx is done.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// DefaultStopTimeout bounds the graceful shutdown of each service.
const DefaultStopTimeout = 10 * time.Second

// Group runs one foreground service and any number of background services.
// The group ends when the foreground service returns or ctx is cancelled.
// Background failures are logged and never end the group.
type Group struct {
	Foreground  Service
	Background  []Service
	StopTimeout time.Duration
	Log         *slog.Logger
}

// Run starts every service and blocks until the group ends. All services are
// stopped before Run returns. Cancellation is not reported as an error.
func (g *Group) Run(ctx context.Context) error {
	if g.Foreground == nil {
		return fmt.Errorf("service: foreground service is required")
	}
	log := g.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}

	var wg sync.WaitGroup
	for _, svc := range g.Background {
		if svc == nil {
			continue
		}
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()
			if err := svc.Start(ctx); err != nil {
				logger.LogEvent(ctx, log, slog.LevelError, "service.failed",
					slog.String("service", svc.Name()),
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			}
		}(svc)
	}

	fgDone := make(chan error, 1)
	go func() { fgDone <- g.Foreground.Start(ctx) }()

	var runErr error
	fgStopped := false
	select {
	case runErr = <-fgDone:
		fgStopped = true
	case <-ctx.Done():
	}

	timeout := g.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stopErrs []error
	if !fgStopped {
		stopErrs = append(stopErrs, stopService(stopCtx, log, g.Foreground))
		select {
		case runErr = <-fgDone:
		case <-stopCtx.Done():
			runErr = fmt.Errorf("service %s: %w", g.Foreground.Name(), stopCtx.Err())
		}
	}
	for i := len(g.Background) - 1; i >= 0; i-- {
		if g.Background[i] != nil {
			stopErrs = append(stopErrs, stopService(stopCtx, log, g.Background[i]))
		}
	}
	wg.Wait()

	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	return errors.Join(append([]error{runErr}, stopErrs...)...)
}

func stopService(ctx context.Context, log *slog.Logger, svc Service) error {
	start := time.Now()
	err := svc.Stop(ctx)
	attrs := []slog.Attr{
		slog.String("service", svc.Name()),
		slog.String("status", logger.Status(err)),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.LogEvent(ctx, log, slog.LevelWarn, "service.stop", attrs...)
		return fmt.Errorf("service %s: stop: %w", svc.Name(), err)
	}
	logger.LogEvent(ctx, log, slog.LevelInfo, "service.stop", attrs...)
	return nil
}
