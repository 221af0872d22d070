package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	stop     chan struct{}
	stopped  atomic.Bool
	started  chan struct{}
}

func newFake(name string, startErr error) *fakeService {
	return &fakeService{name: name, startErr: startErr, stop: make(chan struct{}), started: make(chan struct{})}
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stop
	return nil
}

func (f *fakeService) Stop(context.Context) error {
	if f.stopped.CompareAndSwap(false, true) {
		close(f.stop)
	}
	return nil
}

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGroupStopsAllOnCancel(t *testing.T) {
	fg := newFake("bot", nil)
	bg := newFake("health", nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	g := &Group{Foreground: fg, Background: []Service{bg}, Log: quietLog()}
	go func() { done <- g.Run(ctx) }()

	<-fg.started
	<-bg.started
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("group did not stop")
	}
	if !fg.stopped.Load() || !bg.stopped.Load() {
		t.Fatal("expected both services stopped")
	}
}

func TestGroupBackgroundFailureKeepsForeground(t *testing.T) {
	fg := newFake("bot", nil)
	bg := newFake("health", errors.New("address in use"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	g := &Group{Foreground: fg, Background: []Service{bg}, Log: quietLog()}
	go func() { done <- g.Run(ctx) }()

	<-bg.started
	select {
	case <-done:
		t.Fatal("group ended after background failure")
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestGroupForegroundErrorEndsGroup(t *testing.T) {
	boom := errors.New("unauthorized")
	fg := newFake("bot", boom)
	bg := newFake("health", nil)

	g := &Group{Foreground: fg, Background: []Service{bg}, Log: quietLog()}
	err := g.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
	if !bg.stopped.Load() {
		t.Fatal("background service not stopped")
	}
}

func TestGroupRequiresForeground(t *testing.T) {
	if err := (&Group{}).Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestHTTPServerLifecycle(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	srv := NewHTTPServer("health", "127.0.0.1:0", h, quietLog())

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("start returned %v after stop", err)
	}
}
