package renderer

import (
	"context"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestExpandArgs(t *testing.T) {
	template := []string{"--motion", "{motion}", "--audio={audio}", "--camera={camera}", "--fullscreen"}

	tests := []struct {
		name     string
		camera   string
		expected []string
	}{
		{
			name:     "With Camera",
			camera:   "file:///c.vmd",
			expected: []string{"--motion", "file:///m.vmd", "--audio=file:///a.wav", "--camera=file:///c.vmd", "--fullscreen"},
		},
		{
			name:     "Without Camera Drops Camera Argument",
			camera:   "",
			expected: []string{"--motion", "file:///m.vmd", "--audio=file:///a.wav", "--fullscreen"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandArgs(template, "file:///m.vmd", "file:///a.wav", tt.camera)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("want %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewCommandEngine_ConfiguredArgv(t *testing.T) {
	eng, err := NewCommandEngine(zap.NewNop(), []string{"viewer", "{motion}", "{audio}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.command.Binary != "viewer" || len(eng.command.Args) != 2 {
		t.Errorf("unexpected command: %+v", eng.command)
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandEngine_NaturalExitFiresOnFinished(t *testing.T) {
	requireShell(t)

	eng, err := NewCommandEngine(zap.NewNop(), []string{"sh", "-c", "exit 0", "viewer", "{motion}", "{audio}"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished := make(chan struct{}, 2)
	if err := eng.Play(context.Background(), "m", "a", "", func() { finished <- struct{}{} }); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout: onFinished was not called")
	}

	select {
	case <-finished:
		t.Error("onFinished called more than once")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCommandEngine_StopDoesNotFireOnFinished(t *testing.T) {
	requireShell(t)

	eng, err := NewCommandEngine(zap.NewNop(), []string{"sh", "-c", "sleep 10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	finished := make(chan struct{}, 1)
	if err := eng.Play(context.Background(), "m", "a", "", func() { finished <- struct{}{} }); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := eng.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	select {
	case <-finished:
		t.Error("onFinished must not be called on stop")
	case <-time.After(200 * time.Millisecond):
	}

	// Stopping an idle engine is a no-op
	if err := eng.Stop(ctx); err != nil {
		t.Errorf("second stop failed: %v", err)
	}
}

func TestCommandEngine_PlayReplacesSession(t *testing.T) {
	requireShell(t)

	eng, err := NewCommandEngine(zap.NewNop(), []string{"sh", "-c", "sleep 10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := make(chan struct{}, 1)
	if err := eng.Play(context.Background(), "m1", "a1", "", func() { first <- struct{}{} }); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if err := eng.Play(context.Background(), "m2", "a2", "c2", func() {}); err != nil {
		t.Fatalf("second play failed: %v", err)
	}

	select {
	case <-first:
		t.Error("replaced session must not report completion")
	case <-time.After(200 * time.Millisecond):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := eng.Stop(ctx); err != nil {
		t.Errorf("stop failed: %v", err)
	}
}

func TestCommandEngine_StartFailure(t *testing.T) {
	eng, err := NewCommandEngine(zap.NewNop(), []string{"/nonexistent/dance-viewer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = eng.Play(context.Background(), "m", "a", "", func() {})
	if err == nil || !strings.Contains(err.Error(), "failed to start") {
		t.Errorf("expected start failure, got %v", err)
	}
}
