package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherNotifiesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := NewConfigWatcher(path, LoadDeviceConfig, logger,
		WithDebounce[DeviceConfig](50*time.Millisecond))

	reloads := make(chan DeviceConfig, 4)
	w.OnReload(func(cfg DeviceConfig) { reloads <- cfg })

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloads:
		if cfg.Logging.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", cfg.Logging.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for a reload notification")
	}
}

func TestWatcherUnsubscribeStopsNotifications(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := NewConfigWatcher(path, LoadDeviceConfig, logger,
		WithDebounce[DeviceConfig](20*time.Millisecond))

	called := make(chan struct{}, 4)
	unsubscribe := w.OnReload(func(DeviceConfig) { called <- struct{}{} })
	unsubscribe()

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[air]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
		t.Error("Expected no notification after unsubscribe")
	case <-time.After(300 * time.Millisecond):
	}
}
