package loader

import (
	"github.com/genricoloni/dancedeck/internal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Set groups the loaders of the three resource roles
type Set struct {
	Motion domain.ResourceLoader
	Audio  domain.ResourceLoader
	Camera domain.ResourceLoader
}

// For returns the loader serving role, or nil
func (s Set) For(role domain.ResourceRole) domain.ResourceLoader {
	switch role {
	case domain.RoleMotion:
		return s.Motion
	case domain.RoleAudio:
		return s.Audio
	case domain.RoleCamera:
		return s.Camera
	default:
		return nil
	}
}

// SetParams is filled by Fx from the named role loaders
type SetParams struct {
	fx.In

	Motion domain.ResourceLoader `name:"motion"`
	Audio  domain.ResourceLoader `name:"audio"`
	Camera domain.ResourceLoader `name:"camera"`
}

// NewSet assembles the role loaders provided to the container
func NewSet(p SetParams) Set {
	return Set{Motion: p.Motion, Audio: p.Audio, Camera: p.Camera}
}

// Module provides one loader per role plus the assembled Set
func Module() fx.Option {
	provide := func(role domain.ResourceRole) fx.Option {
		return fx.Provide(fx.Annotate(
			func(logger *zap.Logger, fetcher domain.Fetcher, cfg domain.Config) domain.ResourceLoader {
				return NewLoader(logger, role, fetcher, cfg.GetCacheDir())
			},
			fx.ResultTags(`name:"`+string(role)+`"`),
		))
	}

	return fx.Options(
		provide(domain.RoleMotion),
		provide(domain.RoleAudio),
		provide(domain.RoleCamera),
		fx.Provide(NewSet),
	)
}
