package renderer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	placeholderMotion = "{motion}"
	placeholderAudio  = "{audio}"
	placeholderCamera = "{camera}"
)

// ViewerCommand describes an external dance viewer launched per session
type ViewerCommand struct {
	Name   string
	Binary string
	Args   []string // placeholders are replaced with resource locators
}

var (
	// Ordered list of viewers to try when none is configured (highest priority first)
	viewerCommands = []ViewerCommand{
		{Name: "dancedeck-viewer", Binary: "dancedeck-viewer", Args: []string{"--motion", "{motion}", "--audio", "{audio}", "--camera={camera}"}},
		{Name: "saba-viewer", Binary: "saba-viewer", Args: []string{"-vmd", "{motion}", "-wav", "{audio}", "-camera={camera}"}},
	}
)

// CommandEngine plays each session as an external viewer process.
// The process exiting on its own ends the session naturally.
type CommandEngine struct {
	logger  *zap.Logger
	command ViewerCommand

	mu      sync.Mutex
	session *commandSession
}

type commandSession struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandEngine creates an engine from an argv template, or detects a
// known viewer when argv is empty
func NewCommandEngine(logger *zap.Logger, argv []string) (*CommandEngine, error) {
	var cmd ViewerCommand
	if len(argv) > 0 {
		cmd = ViewerCommand{Name: argv[0], Binary: argv[0], Args: argv[1:]}
	} else {
		cmd = detectCommand(logger)
		if cmd.Binary == "" {
			return nil, fmt.Errorf("no supported dance viewer found on this system")
		}
	}

	logger.Info("Dance viewer configured",
		zap.String("name", cmd.Name),
		zap.String("binary", cmd.Binary))

	return &CommandEngine{
		logger:  logger,
		command: cmd,
	}, nil
}

// detectCommand returns the first known viewer found on PATH
func detectCommand(logger *zap.Logger) ViewerCommand {
	for _, cmd := range viewerCommands {
		if path, err := exec.LookPath(cmd.Binary); err == nil {
			logger.Debug("Found dance viewer", zap.String("name", cmd.Name), zap.String("path", path))
			return cmd
		}
	}
	return ViewerCommand{}
}

// expandArgs substitutes locators into the template.
// Arguments referring to an absent camera are dropped.
func expandArgs(template []string, motionURL, audioURL, cameraURL string) []string {
	args := make([]string, 0, len(template))
	for _, arg := range template {
		if strings.Contains(arg, placeholderCamera) && cameraURL == "" {
			continue
		}
		arg = strings.ReplaceAll(arg, placeholderMotion, motionURL)
		arg = strings.ReplaceAll(arg, placeholderAudio, audioURL)
		arg = strings.ReplaceAll(arg, placeholderCamera, cameraURL)
		args = append(args, arg)
	}
	return args
}

// Play launches the viewer, replacing any running session
func (e *CommandEngine) Play(ctx context.Context, motionURL, audioURL, cameraURL string, onFinished func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	// The session outlives the request context; Stop ends it
	procCtx, cancel := context.WithCancel(context.Background())
	args := expandArgs(e.command.Args, motionURL, audioURL, cameraURL)
	cmd := exec.CommandContext(procCtx, e.command.Binary, args...)

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", e.command.Name, err)
	}

	s := &commandSession{cmd: cmd, cancel: cancel, done: make(chan struct{})}
	e.session = s

	e.logger.Info("Viewer started",
		zap.String("name", e.command.Name),
		zap.Int("pid", cmd.Process.Pid),
		zap.Strings("args", args))

	go e.wait(s, onFinished)
	return nil
}

// wait reaps the process and reports a natural end
func (e *CommandEngine) wait(s *commandSession, onFinished func()) {
	err := s.cmd.Wait()
	close(s.done)

	e.mu.Lock()
	natural := e.session == s
	if natural {
		e.session = nil
	}
	e.mu.Unlock()

	s.cancel()

	if !natural {
		e.logger.Debug("Viewer session ended by stop or replacement")
		return
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		e.logger.Warn("Viewer wait failed", zap.Error(err))
	} else if err != nil {
		e.logger.Warn("Viewer exited with error", zap.Error(err))
	} else {
		e.logger.Info("Viewer finished")
	}

	if onFinished != nil {
		onFinished()
	}
}

// Stop kills the running viewer without reporting completion
func (e *CommandEngine) Stop(ctx context.Context) error {
	e.mu.Lock()
	s := e.stopLocked()
	e.mu.Unlock()

	if s == nil {
		return nil
	}

	select {
	case <-s.done:
		e.logger.Info("Viewer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for viewer to exit: %w", ctx.Err())
	}
}

// stopLocked detaches and kills the current session, returning it
func (e *CommandEngine) stopLocked() *commandSession {
	s := e.session
	if s == nil {
		return nil
	}
	e.session = nil
	s.cancel()
	return s
}
