//go:build !windows

package cli

import (
	"context"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"fintrack/internal/log"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("debug", log.ComponentWorker)
	if logger.Component() != log.ComponentWorker {
		t.Errorf("component = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
	if slog.Default().Handler() != logger.Handler() {
		t.Error("logger not installed as default")
	}
}

func TestNotifyShutdownOnSignal(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx, stop := NotifyShutdown(context.Background(), SetupLogger("error", log.ComponentApp))
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send signal: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}

func TestNotifyShutdownStop(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx, stop := NotifyShutdown(context.Background(), SetupLogger("error", log.ComponentApp))
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("stop should cancel the context")
	}
}
