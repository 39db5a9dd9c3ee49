package link

import (
	"bytes"
	"errors"
	"testing"
)

func TestDispatcher_SendsNewlineTerminatedCommands(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(&buf)

	steps := []struct {
		name string
		call func() error
		want string
	}{
		{"start", d.Start, "START\n"},
		{"stop", d.Stop, "STOP\n"},
		{"up", d.Up, "UP\n"},
		{"down", d.Down, "DOWN\n"},
		{"tare", d.Tare, "TARE\n"},
		{"force", d.Force, "FORCE\n"},
		{"reset", d.Reset, "RESET\n"},
		{"status", d.Status, "STATUS\n"},
	}
	for _, s := range steps {
		buf.Reset()
		if err := s.call(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got := buf.String(); got != s.want {
			t.Errorf("%s: got %q, want %q", s.name, got, s.want)
		}
	}
}

func TestDispatcher_SetSpeed(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(&buf)

	if err := d.SetSpeed(5); err != nil {
		t.Fatalf("SetSpeed(5): %v", err)
	}
	if got := buf.String(); got != "SET_SPEED:5\n" {
		t.Errorf("got %q, want SET_SPEED:5\\n", got)
	}

	buf.Reset()
	if err := d.SetSpeed(2.5); err != nil {
		t.Fatalf("SetSpeed(2.5): %v", err)
	}
	if got := buf.String(); got != "SET_SPEED:2.5\n" {
		t.Errorf("got %q, want SET_SPEED:2.5\\n", got)
	}

	if err := d.SetSpeed(0); err == nil {
		t.Error("SetSpeed(0): expected error")
	}
	if err := d.SetSpeed(-1); err == nil {
		t.Error("SetSpeed(-1): expected error")
	}
}

func TestDispatcher_SetDirection(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(&buf)

	if err := d.SetDirection(1); err != nil {
		t.Fatalf("SetDirection(1): %v", err)
	}
	if err := d.SetDirection(-1); err != nil {
		t.Fatalf("SetDirection(-1): %v", err)
	}
	if got := buf.String(); got != "SET_DIR:1\nSET_DIR:-1\n" {
		t.Errorf("got %q", got)
	}

	if err := d.SetDirection(0); err == nil {
		t.Error("SetDirection(0): expected error")
	}
	if err := d.SetDirection(2); err == nil {
		t.Error("SetDirection(2): expected error")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("port gone") }

func TestDispatcher_WriteErrorWrapped(t *testing.T) {
	d := NewDispatcher(failingWriter{})
	err := d.Start()
	if err == nil {
		t.Fatal("Start on dead port: expected error")
	}
}
