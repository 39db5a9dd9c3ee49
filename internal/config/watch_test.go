package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("link:\n  port: /dev/ttyACM0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan struct{})
	go func() {
		if err := Watch(ctx, path, func(c *Config) { reloaded <- c }); err != nil {
			t.Errorf("Watch: %v", err)
		}
		close(done)
	}()
	time.Sleep(300 * time.Millisecond) // let the watcher attach

	if err := os.WriteFile(path, []byte("link:\n  port: COM9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		if cfg.Link.Port != "COM9" {
			t.Errorf("reloaded port: got %q, want COM9", cfg.Link.Port)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after config write")
	}

	cancel()
	<-done
}

func TestWatch_KeepsPreviousConfigOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("link:\n  port: /dev/ttyACM0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, path, func(c *Config) { reloaded <- c })
		close(done)
	}()
	time.Sleep(300 * time.Millisecond)

	// Invalid YAML must not reach the callback.
	if err := os.WriteFile(path, []byte("link: [broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		t.Fatalf("callback fired for invalid config: %+v", cfg)
	case <-time.After(800 * time.Millisecond):
	}

	// A following valid write still reloads: the watcher survived the error.
	if err := os.WriteFile(path, []byte("link:\n  port: COM3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		if cfg.Link.Port != "COM3" {
			t.Errorf("reloaded port: got %q, want COM3", cfg.Link.Port)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after recovering from invalid config")
	}

	cancel()
	<-done
}
