package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/teleroom/teleroom/pkg/config"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load(newTestLogger(), "no-such-config")
	if err != nil {
		t.Fatalf("Load failed without a config file: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("Unexpected default address: %s", cfg.Server.Address)
	}
	if cfg.Chat.DefaultRoom != "1" {
		t.Errorf("Unexpected default room: %s", cfg.Chat.DefaultRoom)
	}
	if cfg.Transport.PingInterval != 25*time.Second {
		t.Errorf("Unexpected default ping interval: %s", cfg.Transport.PingInterval)
	}
	if cfg.Transport.ReadTimeout <= cfg.Transport.PingInterval {
		t.Error("Default read timeout must exceed the ping interval")
	}
	if cfg.Store.RedisAddr != "" {
		t.Errorf("Expected in-memory store by default, got redis addr %q", cfg.Store.RedisAddr)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	body := []byte("server:\n  address: \":9090\"\nchat:\n  defaultRoom: lobby\n  historyLimit: 10\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to enter temp dir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := config.Load(newTestLogger(), "config")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("Expected address from file, got %s", cfg.Server.Address)
	}
	if cfg.Chat.DefaultRoom != "lobby" {
		t.Errorf("Expected room from file, got %s", cfg.Chat.DefaultRoom)
	}
	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("Expected history limit from file, got %d", cfg.Chat.HistoryLimit)
	}
	// Values absent from the file keep their defaults.
	if cfg.Transport.SendQueueSize != 256 {
		t.Errorf("Expected default send queue size, got %d", cfg.Transport.SendQueueSize)
	}
}
