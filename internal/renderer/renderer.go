// Package renderer provides the rendering engines dances are handed to once
// all of their resources are resolved.
package renderer

import (
	"context"
	"fmt"

	"github.com/genricoloni/dancedeck/internal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// KindCommand launches an external viewer process per session
	KindCommand = "command"
	// KindMpris drives a viewer over the MPRIS D-Bus interface
	KindMpris = "mpris"
	// KindNone disables rendering
	KindNone = "none"
)

// New builds the configured rendering engine.
// It returns a nil engine when rendering is disabled.
func New(lc fx.Lifecycle, logger *zap.Logger, cfg domain.Config) (domain.RenderingEngine, error) {
	switch cfg.GetRenderer() {
	case KindCommand:
		eng, err := NewCommandEngine(logger, cfg.GetRenderCommand())
		if err != nil {
			return nil, err
		}
		return eng, nil

	case KindMpris:
		conn, err := NewStdDBusClient()
		if err != nil {
			return nil, fmt.Errorf("session bus connection failed: %w", err)
		}
		eng := NewMprisEngine(logger, cfg.GetMprisPlayer(), conn)
		lc.Append(fx.Hook{
			OnStart: eng.Start,
			OnStop: func(ctx context.Context) error {
				return eng.Close()
			},
		})
		return eng, nil

	case KindNone, "":
		logger.Warn("Rendering disabled")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.GetRenderer())
	}
}
