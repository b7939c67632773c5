package renderer

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	mprisPath            = "/org/mpris/MediaPlayer2"
	mprisPlayerInterface = "org.mpris.MediaPlayer2.Player"
	propertiesChanged    = "org.freedesktop.DBus.Properties.PropertiesChanged"
	nameOwnerChanged     = "org.freedesktop.DBus.NameOwnerChanged"
)

// DanceURI encodes the locators of one session as a single URI for OpenUri
func DanceURI(motionURL, audioURL, cameraURL string) string {
	q := url.Values{}
	q.Set("motion", motionURL)
	q.Set("audio", audioURL)
	if cameraURL != "" {
		q.Set("camera", cameraURL)
	}
	return (&url.URL{Scheme: "dance", Host: "play", RawQuery: q.Encode()}).String()
}

type mprisSession struct {
	onFinished func()
	started    bool // viewer reported Playing for this session
}

// MprisEngine drives a dance viewer exposing the MPRIS D-Bus interface.
// A PlaybackStatus of "Stopped" after "Playing" ends the session naturally.
type MprisEngine struct {
	logger *zap.Logger
	player string
	conn   DBusClient

	mu      sync.Mutex
	owner   string // unique bus name of the player
	session *mprisSession
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewMprisEngine creates an engine talking to player over conn
func NewMprisEngine(logger *zap.Logger, player string, conn DBusClient) *MprisEngine {
	return &MprisEngine{
		logger: logger.With(zap.String("player", player)),
		player: player,
		conn:   conn,
	}
}

// Start subscribes to the viewer's signals. It returns immediately.
func (e *MprisEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	watchCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mu.Unlock()

	if err := e.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(mprisPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		cancel()
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		return fmt.Errorf("failed to add match signal: %w", err)
	}

	// Track viewer restarts so status signals can be attributed
	if err := e.conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, e.player),
	); err != nil {
		e.logger.Warn("Failed to add NameOwnerChanged match signal", zap.Error(err))
	}

	if owner, err := e.conn.GetNameOwner(e.player); err == nil {
		e.mu.Lock()
		e.owner = owner
		e.mu.Unlock()
		e.logger.Info("Viewer found on session bus", zap.String("unique", owner))
	} else {
		e.logger.Warn("Viewer not on the session bus yet", zap.Error(err))
	}

	signals := make(chan *dbus.Signal, 10)
	e.conn.Signal(signals)

	e.wg.Add(1)
	go e.monitorSignals(watchCtx, signals)

	e.logger.Info("MPRIS renderer started")
	return nil
}

// Close stops watching signals and closes the bus connection
func (e *MprisEngine) Close() error {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.running = false
	e.mu.Unlock()

	e.wg.Wait()

	if err := e.conn.Close(); err != nil {
		return fmt.Errorf("failed to close D-Bus connection: %w", err)
	}
	e.logger.Info("MPRIS renderer closed")
	return nil
}

// Play opens the dance on the viewer, replacing any running session
func (e *MprisEngine) Play(ctx context.Context, motionURL, audioURL, cameraURL string, onFinished func()) error {
	s := &mprisSession{onFinished: onFinished}

	e.mu.Lock()
	e.session = s
	e.mu.Unlock()

	uri := DanceURI(motionURL, audioURL, cameraURL)
	if err := e.conn.CallMethod(e.player, mprisPath, mprisPlayerInterface+".OpenUri", uri); err != nil {
		e.mu.Lock()
		if e.session == s {
			e.session = nil
		}
		e.mu.Unlock()
		return fmt.Errorf("mpris OpenUri failed: %w", err)
	}

	e.logger.Info("Dance sent to viewer", zap.String("uri", uri))
	return nil
}

// Stop detaches the session before stopping the viewer so the resulting
// "Stopped" status is not reported as a natural end
func (e *MprisEngine) Stop(ctx context.Context) error {
	e.mu.Lock()
	e.session = nil
	e.mu.Unlock()

	if err := e.conn.CallMethod(e.player, mprisPath, mprisPlayerInterface+".Stop"); err != nil {
		return fmt.Errorf("mpris Stop failed: %w", err)
	}
	e.logger.Info("Viewer stopped")
	return nil
}

// monitorSignals listens for D-Bus signals and processes them
func (e *MprisEngine) monitorSignals(ctx context.Context, signals <-chan *dbus.Signal) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("Signal monitoring goroutine stopped")
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig == nil {
				continue
			}
			if sig.Name == nameOwnerChanged {
				e.handleNameOwnerChanged(sig)
			} else {
				e.handleSignal(sig)
			}
		}
	}
}

// handleNameOwnerChanged follows the viewer across restarts
func (e *MprisEngine) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}
	name, ok := sig.Body[0].(string)
	if !ok || name != e.player {
		return
	}
	newOwner, _ := sig.Body[2].(string)

	e.mu.Lock()
	e.owner = newOwner
	e.mu.Unlock()

	e.logger.Info("Viewer owner changed", zap.String("unique", newOwner))
}

// handleSignal processes a PropertiesChanged signal from the viewer
func (e *MprisEngine) handleSignal(sig *dbus.Signal) {
	// PropertiesChanged signal has 3 arguments:
	// 1. Interface name (string)
	// 2. Changed properties (map[string]Variant)
	// 3. Invalidated properties ([]string)
	if sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != mprisPlayerInterface {
		return
	}

	changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	statusVariant, ok := changedProps["PlaybackStatus"]
	if !ok {
		return
	}
	status, ok := statusVariant.Value().(string)
	if !ok {
		e.logger.Warn("Invalid playback status format in signal, ignoring")
		return
	}

	e.mu.Lock()
	if e.owner != "" && sig.Sender != e.owner {
		e.mu.Unlock()
		return // another player on the bus
	}

	s := e.session
	var finished func()
	switch status {
	case "Playing":
		if s != nil {
			s.started = true
		}
	case "Stopped":
		if s != nil && s.started {
			e.session = nil
			finished = s.onFinished
		}
	}
	e.mu.Unlock()

	e.logger.Debug("Viewer status changed", zap.String("status", status))

	if finished != nil {
		e.logger.Info("Dance finished on viewer")
		finished()
	}
}
