// Package loader resolves dance resources into locators a rendering engine
// can open, tracking download progress per item.
package loader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/genricoloni/dancedeck/internal/domain"
	"go.uber.org/zap"
)

// slot is the progress state of one fetch. The latest fetch of an item owns
// the item's visible slot; an older fetch settling never touches it.
type slot struct {
	downloading bool
	percent     float64
}

// Loader resolves one resource role
type Loader struct {
	logger   *zap.Logger
	role     domain.ResourceRole
	fetcher  domain.Fetcher
	cacheDir string

	mu    sync.RWMutex
	slots map[domain.Identifier]*slot
}

// NewLoader creates a loader for role, downloading remote refs under cacheDir
func NewLoader(logger *zap.Logger, role domain.ResourceRole, fetcher domain.Fetcher, cacheDir string) *Loader {
	return &Loader{
		logger:   logger.With(zap.String("role", string(role))),
		role:     role,
		fetcher:  fetcher,
		cacheDir: cacheDir,
		slots:    make(map[domain.Identifier]*slot),
	}
}

// Role returns the resource role this loader serves
func (l *Loader) Role() domain.ResourceRole {
	return l.role
}

// Progress returns the load state of the item's slot
func (l *Loader) Progress(itemID domain.Identifier) domain.LoadProgress {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.slots[itemID]
	if !ok {
		return domain.LoadProgress{}
	}
	return domain.LoadProgress{Downloading: s.downloading, Percent: s.percent}
}

// Fetch resolves ref into a file:// locator.
// Local paths are checked for existence; http(s) refs are downloaded.
func (l *Loader) Fetch(ctx context.Context, itemID domain.Identifier, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty %s reference", l.role)
	}

	s := l.begin(itemID)
	defer l.settle(s)

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid %s reference %q: %w", l.role, ref, err)
	}

	var locator string
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		locator, err = l.download(ctx, s, itemID, ref, u)
	case "file":
		locator, err = l.local(u.Path)
	case "":
		locator, err = l.local(ref)
	default:
		err = fmt.Errorf("unsupported %s reference scheme %q", l.role, u.Scheme)
	}
	if err != nil {
		l.logger.Warn("Resource resolution failed",
			zap.String("item", string(itemID)),
			zap.String("ref", ref),
			zap.Error(err))
		return "", err
	}

	l.report(s, 100)
	l.logger.Debug("Resource resolved",
		zap.String("item", string(itemID)),
		zap.String("locator", locator))
	return locator, nil
}

func (l *Loader) local(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("resource not found: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("resource is a directory: %s", abs)
	}
	return fileURL(abs), nil
}

func (l *Loader) download(ctx context.Context, s *slot, itemID domain.Identifier, ref string, u *url.URL) (string, error) {
	dir := filepath.Join(l.cacheDir, sanitize(string(itemID)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Each fetch writes its own temp file; only complete downloads are renamed into place
	ext := path.Ext(u.Path)
	f, err := os.CreateTemp(dir, string(l.role)+"-*"+ext+".part")
	if err != nil {
		return "", fmt.Errorf("failed to create resource file: %w", err)
	}
	tmp := f.Name()

	_, err = l.fetcher.Fetch(ctx, ref, f, func(read, total int64) {
		if total > 0 {
			l.report(s, float64(read)/float64(total)*100)
		}
	})
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}

	target := filepath.Join(dir, string(l.role)+ext)
	if err == nil {
		if err = os.Rename(tmp, target); err != nil {
			err = fmt.Errorf("failed to store resource file: %w", err)
		}
	}
	if err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			l.logger.Warn("Failed to remove partial download",
				zap.String("path", tmp),
				zap.Error(rmErr))
		}
		return "", err
	}

	return fileURL(target), nil
}

// begin installs a fresh slot for the item and returns it
func (l *Loader) begin(itemID domain.Identifier) *slot {
	s := &slot{downloading: true}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots[itemID] = s
	return s
}

func (l *Loader) settle(s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.downloading = false
}

// report raises the slot's percent; it never moves backwards
func (l *Loader) report(s *slot, percent float64) {
	if percent > 100 {
		percent = 100
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if percent > s.percent {
		s.percent = percent
	}
}

func fileURL(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}

// sanitize keeps item ids usable as a single path element
func sanitize(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, id)
}
