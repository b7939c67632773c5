package domain

import (
	"context"
	"io"
	"time"
)

// ResourceLoader resolves one resource role of a dance item into a locator
// the rendering engine can open.
//
//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/dancedeck/internal/domain ResourceLoader,RenderingEngine
type ResourceLoader interface {
	// Role returns the resource role this loader serves
	Role() ResourceRole

	// Fetch resolves ref for the given item.
	// An empty locator or a non-nil error both mean the resource is unusable.
	Fetch(ctx context.Context, itemID Identifier, ref string) (string, error)

	// Progress returns the load state of the item's slot
	Progress(itemID Identifier) LoadProgress
}

// RenderingEngine plays a fully resolved dance
type RenderingEngine interface {
	// Play starts a session, replacing any running one.
	// cameraURL is empty when the dance has no camera track.
	// onFinished is invoked exactly once when the session ends on its own,
	// never on Stop and never from inside Play.
	Play(ctx context.Context, motionURL, audioURL, cameraURL string, onFinished func()) error

	// Stop ends the running session and returns to the idle pose
	Stop(ctx context.Context) error
}

// IntentSource emits user intents addressed to the collection
type IntentSource interface {
	// Events returns a read-only channel of intents.
	// The channel is closed when the source is exhausted.
	Events() <-chan Intent
}

// ProgressFunc reports streamed bytes against the expected total (-1 if unknown)
type ProgressFunc func(read, total int64)

// Fetcher retrieves remote resource data
type Fetcher interface {
	// Fetch streams the content at url into dst, reporting progress along the way.
	// Returns the number of bytes written.
	Fetch(ctx context.Context, url string, dst io.Writer, progress ProgressFunc) (int64, error)
}

// Config defines the interface for application configuration
type Config interface {
	// GetCatalogPath returns the path of the dance catalog file
	GetCatalogPath() string

	// GetCacheDir returns the directory downloaded resources are written to
	GetCacheDir() string

	// GetRenderer returns the rendering engine kind (command, mpris, none)
	GetRenderer() string

	// GetRenderCommand returns the viewer argv template, or nil to detect one
	GetRenderCommand() []string

	// GetMprisPlayer returns the bus name of the MPRIS viewer
	GetMprisPlayer() string

	// GetMaxResourceSize returns the per-resource download cap in bytes
	GetMaxResourceSize() int64

	// GetFetchTimeout returns the HTTP client timeout
	GetFetchTimeout() time.Duration
}
