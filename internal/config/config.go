package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCatalogPath   = "~/.config/dancedeck/dances.yaml"
	defaultCacheDir      = "/tmp/dancedeck"
	defaultRenderer      = "none"
	defaultMprisPlayer   = "org.mpris.MediaPlayer2.dancedeck"
	defaultMaxResourceMB = 200
	defaultFetchTimeout  = 60 * time.Second

	// maxResourceMB keeps the byte cap within int64
	maxResourceMB = math.MaxInt64 >> 20
)

// AppConfig holds application configuration
type AppConfig struct {
	logger          *zap.Logger
	catalogPath     string
	cacheDir        string
	renderer        string
	renderCommand   []string
	mprisPlayer     string
	maxResourceSize int64
	fetchTimeout    time.Duration
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger) *AppConfig {
	// Read from environment variables or use defaults
	catalogPath := expandPath(envOr("DANCEDECK_CATALOG", defaultCatalogPath))
	cacheDir := expandPath(envOr("DANCEDECK_CACHE_DIR", defaultCacheDir))
	renderer := strings.ToLower(envOr("DANCEDECK_RENDERER", defaultRenderer))
	mprisPlayer := envOr("DANCEDECK_MPRIS_PLAYER", defaultMprisPlayer)

	var renderCommand []string
	if raw := os.Getenv("DANCEDECK_RENDER_CMD"); raw != "" {
		renderCommand = strings.Fields(raw)
	}

	maxMB := int64(defaultMaxResourceMB)
	if raw := os.Getenv("DANCEDECK_MAX_RESOURCE_MB"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 && v <= maxResourceMB {
			maxMB = v
		} else {
			logger.Warn("Invalid DANCEDECK_MAX_RESOURCE_MB, using default",
				zap.String("value", raw),
				zap.Int64("default", maxMB))
		}
	}

	timeout := defaultFetchTimeout
	if raw := os.Getenv("DANCEDECK_FETCH_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		} else {
			logger.Warn("Invalid DANCEDECK_FETCH_TIMEOUT, using default",
				zap.String("value", raw),
				zap.Duration("default", timeout))
		}
	}

	logger.Info("Configuration loaded",
		zap.String("catalog", catalogPath),
		zap.String("cacheDir", cacheDir),
		zap.String("renderer", renderer),
		zap.Strings("renderCommand", renderCommand),
		zap.String("mprisPlayer", mprisPlayer),
		zap.Int64("maxResourceMB", maxMB),
		zap.Duration("fetchTimeout", timeout))

	return &AppConfig{
		logger:          logger,
		catalogPath:     catalogPath,
		cacheDir:        cacheDir,
		renderer:        renderer,
		renderCommand:   renderCommand,
		mprisPlayer:     mprisPlayer,
		maxResourceSize: maxMB << 20,
		fetchTimeout:    timeout,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// expandPath resolves environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// GetCatalogPath returns the path of the dance catalog file
func (c *AppConfig) GetCatalogPath() string {
	return c.catalogPath
}

// GetCacheDir returns the directory downloaded resources are written to
func (c *AppConfig) GetCacheDir() string {
	return c.cacheDir
}

// GetRenderer returns the rendering engine kind
func (c *AppConfig) GetRenderer() string {
	return c.renderer
}

// GetRenderCommand returns the viewer argv template
func (c *AppConfig) GetRenderCommand() []string {
	return c.renderCommand
}

// GetMprisPlayer returns the bus name of the MPRIS viewer
func (c *AppConfig) GetMprisPlayer() string {
	return c.mprisPlayer
}

// GetMaxResourceSize returns the per-resource download cap in bytes
func (c *AppConfig) GetMaxResourceSize() int64 {
	return c.maxResourceSize
}

// GetFetchTimeout returns the HTTP client timeout
func (c *AppConfig) GetFetchTimeout() time.Duration {
	return c.fetchTimeout
}
